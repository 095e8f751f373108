package telemetry

import (
	"fmt"

	"github.com/ezcellular/ezcellular-go/pkg/attr"
)

// Signal is a technology-tagged signal quality record.
//
// Fields the service did not report are absent from the bag; use the
// typed accessors for required reads and the bag's GetOrDefault for
// optional ones.
type Signal struct {
	tech  Technology
	attrs *attr.Bag
}

// Tech returns the technology this record was decoded for.
func (s *Signal) Tech() Technology {
	return s.tech
}

// Attrs returns the underlying attribute bag.
func (s *Signal) Attrs() *attr.Bag {
	return s.attrs
}

// RSRP returns the Reference Signal Received Power in dBm.
func (s *Signal) RSRP() (float64, error) {
	return attr.Get[float64](s.attrs, "rsrp")
}

// RSRQ returns the Reference Signal Received Quality in dB.
func (s *Signal) RSRQ() (float64, error) {
	return attr.Get[float64](s.attrs, "rsrq")
}

// RSSI returns the Received Signal Strength Indication in dBm.
// Only reported for LTE.
func (s *Signal) RSSI() (float64, error) {
	return attr.Get[float64](s.attrs, "rssi")
}

// SINR returns the Signal to Interference plus Noise Ratio in dB.
func (s *Signal) SINR() (float64, error) {
	return attr.Get[float64](s.attrs, "sinr")
}

// DecodeSignal decodes a raw signal map into a Signal record for the
// given technology. Only LTE and NR5G are supported; any other
// technology fails with ErrUnsupportedTechnology.
func DecodeSignal(tech Technology, raw Raw) (*Signal, error) {
	b := attr.New()
	switch tech {
	case TechnologyLTE:
		insertFloat(b, raw, "rsrp")
		insertFloat(b, raw, "rsrq")
		insertFloat(b, raw, "rssi")
		insertFloatAs(b, raw, "snr", "sinr")
	case TechnologyNR5G:
		insertFloat(b, raw, "rsrp")
		insertFloat(b, raw, "rsrq")
		insertFloatAs(b, raw, "snr", "sinr")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTechnology, tech)
	}
	return &Signal{tech: tech, attrs: b}, nil
}
