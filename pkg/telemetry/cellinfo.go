package telemetry

import (
	"fmt"

	"github.com/ezcellular/ezcellular-go/pkg/attr"
)

// CellInfo describes one serving or neighboring cell.
//
// A cell record embeds a Signal and a Location decoded from the same raw
// map; both may be only partially populated, since neighboring cells
// rarely report all fields.
type CellInfo struct {
	tech     Technology
	attrs    *attr.Bag
	signal   *Signal
	location *Location
}

// Tech returns the technology this record was decoded for.
func (c *CellInfo) Tech() Technology {
	return c.tech
}

// Attrs returns the underlying attribute bag.
func (c *CellInfo) Attrs() *attr.Bag {
	return c.attrs
}

// Serving reports whether this is the serving cell. Defaults to false
// when the service did not report the flag.
func (c *CellInfo) Serving() bool {
	return attr.GetOrDefault(c.attrs, "serving", false)
}

// CI returns the cell identity. Typically absent for non-serving cells.
func (c *CellInfo) CI() (uint32, error) {
	return attr.Get[uint32](c.attrs, "ci")
}

// PCI returns the physical cell identity.
func (c *CellInfo) PCI() (uint32, error) {
	return attr.Get[uint32](c.attrs, "pci")
}

// EARFCN returns the LTE channel number.
func (c *CellInfo) EARFCN() (uint32, error) {
	return attr.Get[uint32](c.attrs, "earfcn")
}

// NRARFCN returns the NR5G channel number.
func (c *CellInfo) NRARFCN() (uint32, error) {
	return attr.Get[uint32](c.attrs, "nrarfcn")
}

// Signal returns the embedded signal quality sub-record.
func (c *CellInfo) Signal() *Signal {
	return c.signal
}

// Location returns the embedded location sub-record.
func (c *CellInfo) Location() *Location {
	return c.location
}

// DecodeCellInfo decodes one raw cell entry for the given technology.
// The same raw map feeds the embedded Signal and Location sub-records.
func DecodeCellInfo(tech Technology, raw Raw) (*CellInfo, error) {
	b := attr.New()
	switch tech {
	case TechnologyLTE:
		insertUint32(b, raw, "earfcn")
	case TechnologyNR5G:
		insertUint32(b, raw, "nrarfcn")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTechnology, tech)
	}
	insertBool(b, raw, "serving")
	insertHex(b, raw, "ci")
	insertHexAs(b, raw, "physical-ci", "pci")

	signal, err := DecodeSignal(tech, raw)
	if err != nil {
		return nil, err
	}
	location, err := DecodeLocation(tech, raw)
	if err != nil {
		return nil, err
	}

	return &CellInfo{tech: tech, attrs: b, signal: signal, location: location}, nil
}

// DecodeCellInfoList decodes a list of raw cell entries, partitioning on
// each entry's "cell-type" code. Entries with an unrecognized cell type
// contribute nothing to the result; they are dropped, never an error.
func DecodeCellInfoList(raws []Raw) []*CellInfo {
	var cells []*CellInfo
	for _, raw := range raws {
		cellType, ok := raw["cell-type"].(uint32)
		if !ok {
			continue
		}

		var tech Technology
		switch cellType {
		case CellTypeLTE:
			tech = TechnologyLTE
		case CellTypeNR5G:
			tech = TechnologyNR5G
		default:
			continue
		}

		cell, err := DecodeCellInfo(tech, raw)
		if err != nil {
			continue
		}
		cells = append(cells, cell)
	}
	return cells
}
