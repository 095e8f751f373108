package eventlog

import (
	"context"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger.
// Useful for development when you want to see telemetry in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("category", event.Category.String()),
	}

	if event.ModemPath != "" {
		attrs = append(attrs, slog.String("modem", event.ModemPath))
	}
	if event.IMEI != "" {
		attrs = append(attrs, slog.String("imei", event.IMEI))
	}

	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
	case event.Signal != nil:
		attrs = append(attrs, slog.String("technology", event.Signal.Technology))
		if event.Signal.RSRP != nil {
			attrs = append(attrs, slog.Float64("rsrp", *event.Signal.RSRP))
		}
		if event.Signal.RSRQ != nil {
			attrs = append(attrs, slog.Float64("rsrq", *event.Signal.RSRQ))
		}
		if event.Signal.RSSI != nil {
			attrs = append(attrs, slog.Float64("rssi", *event.Signal.RSSI))
		}
		if event.Signal.SINR != nil {
			attrs = append(attrs, slog.Float64("sinr", *event.Signal.SINR))
		}
	case event.Location != nil:
		attrs = append(attrs,
			slog.String("mcc", event.Location.MCC),
			slog.String("mnc", event.Location.MNC),
			slog.Uint64("ci", uint64(event.Location.CI)),
			slog.Uint64("tac", uint64(event.Location.TAC)),
		)
	case event.Cells != nil:
		attrs = append(attrs, slog.Int("cells", len(event.Cells.Cells)))
	case event.Traffic != nil:
		attrs = append(attrs,
			slog.Uint64("rx_bytes", event.Traffic.RxBytes),
			slog.Uint64("tx_bytes", event.Traffic.TxBytes),
		)
	case event.Error != nil:
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "telemetry", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
