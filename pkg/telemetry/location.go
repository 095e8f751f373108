package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ezcellular/ezcellular-go/pkg/attr"
)

// ErrMalformedLocation is returned by ParseLocation3GPP when the combined
// location string does not yield the four required fields.
var ErrMalformedLocation = errors.New("malformed 3GPP location string")

// Location is a technology-tagged cell location record.
//
// NR5G shares the complete LTE field set; only the technology tag differs.
type Location struct {
	tech  Technology
	attrs *attr.Bag
}

// Tech returns the technology this record was decoded for.
func (l *Location) Tech() Technology {
	return l.tech
}

// Attrs returns the underlying attribute bag.
func (l *Location) Attrs() *attr.Bag {
	return l.attrs
}

// MCC returns the Mobile Country Code, e.g. "262".
func (l *Location) MCC() (string, error) {
	return attr.Get[string](l.attrs, "mcc")
}

// MNC returns the Mobile Network Code, e.g. "01".
func (l *Location) MNC() (string, error) {
	return attr.Get[string](l.attrs, "mnc")
}

// CI returns the cell identity.
func (l *Location) CI() (uint32, error) {
	return attr.Get[uint32](l.attrs, "ci")
}

// TAC returns the tracking area code (24 bits).
func (l *Location) TAC() (uint32, error) {
	return attr.Get[uint32](l.attrs, "tac")
}

// locationTech validates the technology for location decoding.
// NR5G reuses the LTE field set, so both pass through unchanged.
func locationTech(tech Technology) (Technology, error) {
	switch tech {
	case TechnologyLTE, TechnologyNR5G:
		return tech, nil
	default:
		return TechnologyUnknown, fmt.Errorf("%w: %s", ErrUnsupportedTechnology, tech)
	}
}

// DecodeLocation decodes a raw location map into a Location record.
// Recognized keys: "operator-id" (PLMN string, split into mcc/mnc),
// "ci" and "tac" (hex strings). Missing or malformed fields are absent.
func DecodeLocation(tech Technology, raw Raw) (*Location, error) {
	tech, err := locationTech(tech)
	if err != nil {
		return nil, err
	}

	b := attr.New()
	if plmn, ok := raw["operator-id"].(string); ok {
		mcc, mnc := SplitPLMN(plmn)
		_ = b.Insert("mcc", mcc)
		_ = b.Insert("mnc", mnc)
	}
	insertHex(b, raw, "ci")
	insertHex(b, raw, "tac")
	return &Location{tech: tech, attrs: b}, nil
}

// ParseLocation3GPP parses the combined location string reported by the
// 3GPP LAC/CI source, of the form "<mcc>,<mnc>,<lac-hex>,<ci-hex>,<tac-hex>".
//
// Exactly four fields are required to parse: MCC (1-3 digits), MNC
// (1-3 digits), CI and TAC (both hex); the LAC field is ignored. Anything
// less fails with ErrMalformedLocation.
func ParseLocation3GPP(tech Technology, s string) (*Location, error) {
	tech, err := locationTech(tech)
	if err != nil {
		return nil, err
	}

	fields := strings.Split(s, ",")
	if len(fields) < 5 {
		return nil, fmt.Errorf("%w: %d fields", ErrMalformedLocation, len(fields))
	}

	mcc, err := parseDigits(fields[0])
	if err != nil {
		return nil, err
	}
	mnc, err := parseDigits(fields[1])
	if err != nil {
		return nil, err
	}
	ci, err := strconv.ParseUint(fields[3], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad cell identity %q", ErrMalformedLocation, fields[3])
	}
	tac, err := strconv.ParseUint(fields[4], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad tracking area code %q", ErrMalformedLocation, fields[4])
	}

	b := attr.New()
	_ = b.Insert("mcc", mcc)
	_ = b.Insert("mnc", mnc)
	_ = b.Insert("ci", uint32(ci))
	_ = b.Insert("tac", uint32(tac))
	return &Location{tech: tech, attrs: b}, nil
}

// parseDigits validates a 1-3 digit decimal field (MCC or MNC).
func parseDigits(s string) (string, error) {
	if len(s) < 1 || len(s) > 3 {
		return "", fmt.Errorf("%w: bad code %q", ErrMalformedLocation, s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: bad code %q", ErrMalformedLocation, s)
		}
	}
	return s, nil
}
