package eventlog

import (
	"testing"
	"time"

	"github.com/ezcellular/ezcellular-go/pkg/telemetry"
)

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{CategoryState, "STATE"},
		{CategorySignal, "SIGNAL"},
		{CategoryLocation, "LOCATION"},
		{CategoryCells, "CELLS"},
		{CategoryTraffic, "TRAFFIC"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.cat.String()
		if got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.cat, got, tt.want)
		}
	}
}

func TestNewSessionIDUnique(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	if a == "" || a == b {
		t.Errorf("session IDs not unique: %q, %q", a, b)
	}
}

func TestNewSignalEvent(t *testing.T) {
	signal, err := telemetry.DecodeSignal(telemetry.TechnologyLTE, telemetry.Raw{
		"rsrp": -98.0,
		"rsrq": -11.0,
		"snr":  8.5,
		// rssi not reported
	})
	if err != nil {
		t.Fatalf("DecodeSignal failed: %v", err)
	}

	e := NewSignalEvent(signal)
	if e.Technology != "LTE" {
		t.Errorf("Technology = %q, want %q", e.Technology, "LTE")
	}
	if e.RSRP == nil || *e.RSRP != -98.0 {
		t.Errorf("RSRP = %v, want -98", e.RSRP)
	}
	if e.SINR == nil || *e.SINR != 8.5 {
		t.Errorf("SINR = %v, want 8.5", e.SINR)
	}
	if e.RSSI != nil {
		t.Errorf("RSSI = %v, want nil", e.RSSI)
	}
}

func TestNewLocationEvent(t *testing.T) {
	loc, err := telemetry.ParseLocation3GPP(telemetry.TechnologyLTE,
		"262,01,1A2B,0000A1B2,00112233")
	if err != nil {
		t.Fatalf("ParseLocation3GPP failed: %v", err)
	}

	e := NewLocationEvent(loc)
	if e.MCC != "262" || e.MNC != "01" {
		t.Errorf("PLMN = %s/%s, want 262/01", e.MCC, e.MNC)
	}
	if e.CI != 0xA1B2 {
		t.Errorf("CI = %#x, want 0xA1B2", e.CI)
	}
	if e.TAC != 0x112233 {
		t.Errorf("TAC = %#x, want 0x112233", e.TAC)
	}
}

func TestNewCellListEvent(t *testing.T) {
	cells := telemetry.DecodeCellInfoList([]telemetry.Raw{
		{
			"cell-type": telemetry.CellTypeLTE,
			"serving":   true,
			"ci":        "0000A1B2",
		},
		{
			"cell-type":   telemetry.CellTypeNR5G,
			"physical-ci": "01F4",
		},
	})

	e := NewCellListEvent(cells)
	if len(e.Cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(e.Cells))
	}
	if !e.Cells[0].Serving || e.Cells[0].Technology != "LTE" {
		t.Errorf("first cell = %+v, want serving LTE", e.Cells[0])
	}
	if e.Cells[0].CI != 0xA1B2 {
		t.Errorf("first cell CI = %#x, want 0xA1B2", e.Cells[0].CI)
	}
	if e.Cells[1].PCI != 0x1F4 {
		t.Errorf("second cell PCI = %#x, want 0x1F4", e.Cells[1].PCI)
	}
}

func TestEventRoundTrip(t *testing.T) {
	rsrp := -101.5
	event := Event{
		Timestamp: time.Now().UTC(),
		SessionID: NewSessionID(),
		Category:  CategorySignal,
		ModemPath: "/org/freedesktop/ModemManager1/Modem/0",
		IMEI:      "861364040000000",
		Signal: &SignalEvent{
			Technology: "LTE",
			RSRP:       &rsrp,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.SessionID != event.SessionID {
		t.Errorf("SessionID = %q, want %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Category != CategorySignal {
		t.Errorf("Category = %v, want %v", decoded.Category, CategorySignal)
	}
	if decoded.Signal == nil || decoded.Signal.RSRP == nil || *decoded.Signal.RSRP != rsrp {
		t.Errorf("Signal = %+v, want RSRP %v", decoded.Signal, rsrp)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}
