// Package eventlog provides structured telemetry capture for cellular
// monitoring.
//
// This package defines the Logger interface and Event types for recording
// modem telemetry (state transitions, signal samples, cell locations,
// traffic counters) as a machine-readable trace. It is separate from
// operational logging (slog) - a capture file is a complete replayable
// record of what a modem reported over a monitoring session.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	logger := eventlog.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	logger, _ := eventlog.NewFileLogger("/var/log/cellular/modem.clog")
//
//	// Both: use MultiLogger
//	logger := eventlog.NewMultiLogger(
//	    eventlog.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Capture files use CBOR encoding with integer keys and the .clog
// extension. Reader streams events back out, optionally filtered by
// session, category or time range.
package eventlog
