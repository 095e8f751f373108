package eventlog

import (
	"time"

	"github.com/google/uuid"

	"github.com/ezcellular/ezcellular-go/pkg/attr"
	"github.com/ezcellular/ezcellular-go/pkg/telemetry"
)

// Event is one telemetry capture record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the monitoring session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// ModemPath is the bus path of the modem the event belongs to.
	ModemPath string `cbor:"4,keyasint,omitempty"`

	// IMEI is the modem's equipment identity, when known.
	IMEI string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"`
	Signal      *SignalEvent      `cbor:"11,keyasint,omitempty"`
	Location    *LocationEvent    `cbor:"12,keyasint,omitempty"`
	Cells       *CellListEvent    `cbor:"13,keyasint,omitempty"`
	Traffic     *TrafficEvent     `cbor:"14,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"15,keyasint,omitempty"`
}

// NewSessionID returns a fresh monitoring session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a modem state transition.
	CategoryState Category = 0
	// CategorySignal indicates a signal quality sample.
	CategorySignal Category = 1
	// CategoryLocation indicates a cell location update.
	CategoryLocation Category = 2
	// CategoryCells indicates a cell environment snapshot.
	CategoryCells Category = 3
	// CategoryTraffic indicates a traffic counter update.
	CategoryTraffic Category = 4
	// CategoryError indicates an error event.
	CategoryError Category = 5
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategorySignal:
		return "SIGNAL"
	case CategoryLocation:
		return "LOCATION"
	case CategoryCells:
		return "CELLS"
	case CategoryTraffic:
		return "TRAFFIC"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a modem lifecycle transition.
type StateChangeEvent struct {
	// OldState is the previous state name (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state name.
	NewState string `cbor:"2,keyasint"`
}

// SignalEvent captures one signal quality sample. Metrics the modem did
// not report are nil.
type SignalEvent struct {
	// Technology is the radio technology name (LTE, NR5G).
	Technology string `cbor:"1,keyasint"`

	// RSRP in dBm.
	RSRP *float64 `cbor:"2,keyasint,omitempty"`

	// RSRQ in dB.
	RSRQ *float64 `cbor:"3,keyasint,omitempty"`

	// RSSI in dBm (LTE only).
	RSSI *float64 `cbor:"4,keyasint,omitempty"`

	// SINR in dB.
	SINR *float64 `cbor:"5,keyasint,omitempty"`
}

// NewSignalEvent converts a decoded signal record into its capture form.
func NewSignalEvent(s *telemetry.Signal) *SignalEvent {
	b := s.Attrs()
	return &SignalEvent{
		Technology: s.Tech().String(),
		RSRP:       optionalFloat(b, "rsrp"),
		RSRQ:       optionalFloat(b, "rsrq"),
		RSSI:       optionalFloat(b, "rssi"),
		SINR:       optionalFloat(b, "sinr"),
	}
}

func optionalFloat(b *attr.Bag, key string) *float64 {
	v, err := attr.Get[float64](b, key)
	if err != nil {
		return nil
	}
	return &v
}

// LocationEvent captures a cell location update.
type LocationEvent struct {
	// MCC is the mobile country code, as reported.
	MCC string `cbor:"1,keyasint,omitempty"`

	// MNC is the mobile network code, as reported.
	MNC string `cbor:"2,keyasint,omitempty"`

	// CI is the cell identifier.
	CI uint32 `cbor:"3,keyasint,omitempty"`

	// TAC is the tracking area code.
	TAC uint32 `cbor:"4,keyasint,omitempty"`
}

// NewLocationEvent converts a decoded location record into its capture form.
func NewLocationEvent(l *telemetry.Location) *LocationEvent {
	e := &LocationEvent{}
	if mcc, err := l.MCC(); err == nil {
		e.MCC = mcc
	}
	if mnc, err := l.MNC(); err == nil {
		e.MNC = mnc
	}
	if ci, err := l.CI(); err == nil {
		e.CI = ci
	}
	if tac, err := l.TAC(); err == nil {
		e.TAC = tac
	}
	return e
}

// CellListEvent captures a snapshot of the visible cell environment.
type CellListEvent struct {
	// Cells holds one entry per visible cell.
	Cells []CellEvent `cbor:"1,keyasint"`
}

// CellEvent is one visible cell in a snapshot.
type CellEvent struct {
	// Technology is the radio technology name.
	Technology string `cbor:"1,keyasint"`

	// Serving marks the cell the modem is camped on.
	Serving bool `cbor:"2,keyasint,omitempty"`

	// CI is the cell identifier, 0 when not reported.
	CI uint32 `cbor:"3,keyasint,omitempty"`

	// PCI is the physical cell identifier, 0 when not reported.
	PCI uint32 `cbor:"4,keyasint,omitempty"`
}

// NewCellListEvent converts a decoded cell list into its capture form.
func NewCellListEvent(cells []*telemetry.CellInfo) *CellListEvent {
	e := &CellListEvent{Cells: make([]CellEvent, 0, len(cells))}
	for _, c := range cells {
		entry := CellEvent{
			Technology: c.Tech().String(),
			Serving:    c.Serving(),
		}
		if ci, err := c.CI(); err == nil {
			entry.CI = ci
		}
		if pci, err := c.PCI(); err == nil {
			entry.PCI = pci
		}
		e.Cells = append(e.Cells, entry)
	}
	return e
}

// TrafficEvent captures cumulative traffic counters in bytes.
type TrafficEvent struct {
	// RxBytes received since the interface came up.
	RxBytes uint64 `cbor:"1,keyasint"`

	// TxBytes sent since the interface came up.
	TxBytes uint64 `cbor:"2,keyasint"`
}

// ErrorEventData captures a monitoring failure.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
