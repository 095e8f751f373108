package telemetry

import "errors"

// ErrUnsupportedTechnology is returned when decoding is attempted for a
// radio technology that has no typed record decoder.
var ErrUnsupportedTechnology = errors.New("unsupported radio technology")

// Technology is the coarse radio technology tag carried by every
// telemetry record. Values are bit flags so callers can build masks.
type Technology uint8

const (
	// TechnologyUnknown means the technology was not recognized.
	TechnologyUnknown Technology = 0

	// TechnologyGSM covers 2G (GSM, GPRS, EDGE).
	TechnologyGSM Technology = 1 << 0

	// TechnologyUMTS covers 3G (UMTS, HSPA variants).
	TechnologyUMTS Technology = 1 << 1

	// TechnologyLTE covers 4G (LTE, LTE-A).
	TechnologyLTE Technology = 1 << 2

	// TechnologyNR5G covers 5G (NR).
	TechnologyNR5G Technology = 1 << 3
)

// String returns the technology name.
func (t Technology) String() string {
	switch t {
	case TechnologyGSM:
		return "GSM"
	case TechnologyUMTS:
		return "UMTS"
	case TechnologyLTE:
		return "LTE"
	case TechnologyNR5G:
		return "NR5G"
	default:
		return "UNKNOWN"
	}
}

// Access-technology codes reported by the management service
// (MMModemAccessTechnology bit values).
const (
	accessGSM        uint32 = 1 << 1
	accessGSMCompact uint32 = 1 << 2
	accessGPRS       uint32 = 1 << 3
	accessEDGE       uint32 = 1 << 4
	accessUMTS       uint32 = 1 << 5
	accessHSDPA      uint32 = 1 << 6
	accessHSUPA      uint32 = 1 << 7
	accessHSPA       uint32 = 1 << 8
	accessHSPAPlus   uint32 = 1 << 9
	accessLTE        uint32 = 1 << 14
	access5GNR       uint32 = 1 << 15
)

// accessTechnologies maps raw access-technology codes to the coarse tag.
var accessTechnologies = map[uint32]Technology{
	accessGSM:        TechnologyGSM,
	accessGSMCompact: TechnologyGSM,
	accessGPRS:       TechnologyGSM,
	accessEDGE:       TechnologyGSM,
	accessUMTS:       TechnologyUMTS,
	accessHSDPA:      TechnologyUMTS,
	accessHSUPA:      TechnologyUMTS,
	accessHSPA:       TechnologyUMTS,
	accessHSPAPlus:   TechnologyUMTS,
	accessLTE:        TechnologyLTE,
	access5GNR:       TechnologyNR5G,
}

// TechnologyFromAccess maps a raw access-technology code to a Technology.
// Unmapped codes yield TechnologyUnknown.
func TechnologyFromAccess(code uint32) Technology {
	return accessTechnologies[code]
}

// Cell-type codes used in raw cell-info entries (MMCellType values).
const (
	// CellTypeLTE marks an LTE cell entry.
	CellTypeLTE uint32 = 5

	// CellTypeNR5G marks a 5G/NR cell entry.
	CellTypeNR5G uint32 = 6
)
