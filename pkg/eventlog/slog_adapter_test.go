package eventlog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSlogAdapterWritesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	adapter := NewSlogAdapter(logger)

	rsrp := -98.0
	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "session-1",
		Category:  CategorySignal,
		IMEI:      "861364040000000",
		Signal:    &SignalEvent{Technology: "LTE", RSRP: &rsrp},
	})

	out := buf.String()
	for _, want := range []string{"session-1", "SIGNAL", "861364040000000", "LTE", "rsrp=-98"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapterStateChange(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	adapter := NewSlogAdapter(logger)

	adapter.Log(Event{
		Timestamp:   time.Now(),
		SessionID:   "session-2",
		Category:    CategoryState,
		StateChange: &StateChangeEvent{OldState: "SEARCHING", NewState: "REGISTERED"},
	})

	out := buf.String()
	if !strings.Contains(out, "SEARCHING") || !strings.Contains(out, "REGISTERED") {
		t.Errorf("output missing state transition: %s", out)
	}
}
