package eventlog

import (
	"testing"
	"time"
)

type countingLogger struct {
	events []Event
}

func (c *countingLogger) Log(event Event) {
	c.events = append(c.events, event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	first := &countingLogger{}
	second := &countingLogger{}
	multi := NewMultiLogger(first, second)

	event := Event{Timestamp: time.Now(), SessionID: "s", Category: CategoryState}
	multi.Log(event)

	if len(first.events) != 1 || len(second.events) != 1 {
		t.Errorf("got %d/%d events, want 1/1", len(first.events), len(second.events))
	}
	if first.events[0].SessionID != "s" {
		t.Errorf("SessionID = %q, want %q", first.events[0].SessionID, "s")
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	multi := NewMultiLogger()
	// Must not panic with no targets.
	multi.Log(Event{Timestamp: time.Now(), SessionID: "s", Category: CategoryState})
}
