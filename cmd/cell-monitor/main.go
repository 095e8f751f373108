// Command cell-monitor records cellular telemetry to a capture file.
//
// It attaches to one modem managed by ModemManager and follows it until
// interrupted: lifecycle state transitions, signal quality samples, cell
// location updates, periodic cell environment snapshots and, while a
// data connection is active, traffic counters. Everything is written as
// CBOR capture events; the same events can be mirrored to the console.
//
// Usage:
//
//	cell-monitor [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-capture string    Capture file path (overrides config)
//	-imei string       Attach to the modem with this IMEI (default: first modem)
//	-wait              Wait for the modem to appear instead of failing
//	-cells duration    Cell snapshot interval, 0 disables (default 1m)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-console           Mirror capture events to the console
//
// Examples:
//
//	# Record the first modem to modem.clog
//	cell-monitor -capture modem.clog
//
//	# Record a specific modem, waiting for it to be plugged in
//	cell-monitor -imei 861364040000000 -wait -capture modem.clog
//
//	# Console-only monitoring with debug logging
//	cell-monitor -console -log-level debug
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ezcellular/ezcellular-go/pkg/cellular"
	"github.com/ezcellular/ezcellular-go/pkg/config"
	"github.com/ezcellular/ezcellular-go/pkg/eventlog"
	"github.com/ezcellular/ezcellular-go/pkg/telemetry"
)

var flags struct {
	configFile string
	capture    string
	imei       string
	wait       bool
	cells      time.Duration
	logLevel   string
	console    bool
}

func init() {
	flag.StringVar(&flags.configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&flags.capture, "capture", "", "Capture file path (overrides config)")
	flag.StringVar(&flags.imei, "imei", "", "Attach to the modem with this IMEI (default: first modem)")
	flag.BoolVar(&flags.wait, "wait", false, "Wait for the modem to appear instead of failing")
	flag.DurationVar(&flags.cells, "cells", time.Minute, "Cell snapshot interval, 0 disables")
	flag.StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&flags.console, "console", false, "Mirror capture events to the console")
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cell-monitor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.Load(flags.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.capture != "" {
		cfg.CaptureFile = flags.capture
	}

	logger := newLogger(cfg.LogLevel)

	capture, closeCapture, err := newCapture(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCapture()

	manager, err := cellular.NewManager(logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	modem, err := selectModem(manager)
	if err != nil {
		return err
	}
	logger.Info("attached to modem", "path", modem.Path())

	mon := &monitor{
		manager: manager,
		modem:   modem,
		cfg:     cfg,
		capture: capture,
		logger:  logger,
		session: eventlog.NewSessionID(),
	}
	if err := mon.start(); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	if flags.cells > 0 {
		ticker := time.NewTicker(flags.cells)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mon.snapshotCells()
			case <-stop:
				logger.Info("shutting down")
				return nil
			}
		}
	}

	<-stop
	logger.Info("shutting down")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newCapture assembles the event logger from the configuration: a file
// logger, a console mirror, both, or neither.
func newCapture(cfg *config.Config, logger *slog.Logger) (eventlog.Logger, func(), error) {
	var targets []eventlog.Logger
	closer := func() {}

	if cfg.CaptureFile != "" {
		file, err := eventlog.NewFileLogger(cfg.CaptureFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open capture file: %w", err)
		}
		targets = append(targets, file)
		closer = func() { file.Close() }
	}
	if flags.console {
		targets = append(targets, eventlog.NewSlogAdapter(logger))
	}

	switch len(targets) {
	case 0:
		return eventlog.NoopLogger{}, closer, nil
	case 1:
		return targets[0], closer, nil
	default:
		return eventlog.NewMultiLogger(targets...), closer, nil
	}
}

func selectModem(manager *cellular.Manager) (*cellular.Modem, error) {
	if flags.imei != "" {
		if modem := manager.ModemByIMEI(flags.imei); modem != nil {
			return modem, nil
		}
		if !flags.wait {
			return nil, fmt.Errorf("no modem with IMEI %s", flags.imei)
		}
		return manager.AwaitModem(flags.imei).Wait()
	}

	if modem := manager.AnyModem(); modem != nil {
		return modem, nil
	}
	if !flags.wait {
		return nil, fmt.Errorf("no modem available")
	}
	return manager.AwaitModem(cellular.AnyIMEI).Wait()
}

// monitor wires modem observers to the capture logger.
type monitor struct {
	manager *cellular.Manager
	modem   *cellular.Modem
	cfg     *config.Config
	capture eventlog.Logger
	logger  *slog.Logger
	session string
	imei    string
}

func (m *monitor) start() error {
	// The IMEI may be unreadable on a locked modem; events then carry
	// only the path.
	if imei, err := m.modem.IMEI(); err == nil {
		m.imei = imei
	}

	if err := m.modem.ObserveModemState(m.onStateChange); err != nil {
		return fmt.Errorf("observe state: %w", err)
	}

	// Telemetry observers need a registered modem; on a modem that is
	// not there yet they are retried after each state transition.
	m.tryObserveTelemetry()
	m.snapshotCells()
	return nil
}

func (m *monitor) tryObserveTelemetry() {
	if err := m.modem.ObserveSignal(m.onSignal, m.cfg.SignalRateSeconds); err != nil {
		m.logger.Debug("signal observer not installed", "error", err)
	}
	if err := m.modem.ObserveLocation(m.onLocation); err != nil {
		m.logger.Debug("location observer not installed", "error", err)
	}
	m.tryObserveTraffic()
}

func (m *monitor) tryObserveTraffic() {
	conn, err := m.modem.ActiveConnection()
	if err != nil || conn == nil {
		return
	}
	if err := conn.ObserveTrafficStats(m.onTraffic, m.cfg.TrafficRateMs); err != nil {
		m.logger.Debug("traffic observer not installed", "error", err)
	}
}

func (m *monitor) event(category eventlog.Category) eventlog.Event {
	return eventlog.Event{
		Timestamp: time.Now(),
		SessionID: m.session,
		Category:  category,
		ModemPath: string(m.modem.Path()),
		IMEI:      m.imei,
	}
}

func (m *monitor) onStateChange(oldState, newState cellular.ModemState) {
	e := m.event(eventlog.CategoryState)
	e.StateChange = &eventlog.StateChangeEvent{
		OldState: oldState.String(),
		NewState: newState.String(),
	}
	m.capture.Log(e)

	// Crossing into registered is the moment telemetry becomes
	// available.
	if oldState < cellular.ModemStateRegistered && newState >= cellular.ModemStateRegistered {
		m.tryObserveTelemetry()
	}
	if newState == cellular.ModemStateConnected {
		m.tryObserveTraffic()
	}
}

func (m *monitor) onSignal(s *telemetry.Signal) {
	e := m.event(eventlog.CategorySignal)
	e.Signal = eventlog.NewSignalEvent(s)
	m.capture.Log(e)
}

func (m *monitor) onLocation(l *telemetry.Location) {
	e := m.event(eventlog.CategoryLocation)
	e.Location = eventlog.NewLocationEvent(l)
	m.capture.Log(e)
}

func (m *monitor) onTraffic(rx, tx uint64) {
	e := m.event(eventlog.CategoryTraffic)
	e.Traffic = &eventlog.TrafficEvent{RxBytes: rx, TxBytes: tx}
	m.capture.Log(e)
}

func (m *monitor) snapshotCells() {
	cells, err := m.modem.CellInfo()
	if err != nil {
		m.logger.Debug("cell snapshot skipped", "error", err)
		return
	}
	e := m.event(eventlog.CategoryCells)
	e.Cells = eventlog.NewCellListEvent(cells)
	m.capture.Log(e)
}
