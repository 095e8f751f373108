// Command cell-shell is an interactive console for cellular modems.
//
// It connects to ModemManager over the system bus and offers commands
// for inspecting and driving a modem: identity, state, SIM unlocking,
// power control, data connections, signal quality, cell environment and
// live watches.
//
// Usage:
//
//	cell-shell [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-log-level string  Log level: debug, info, warn, error (default "warn")
//
// Examples:
//
//	# Start the shell
//	cell-shell
//
//	# Start with named APNs from a config file
//	cell-shell -config /etc/cellular/config.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ezcellular/ezcellular-go/cmd/cell-shell/interactive"
	"github.com/ezcellular/ezcellular-go/pkg/cellular"
	"github.com/ezcellular/ezcellular-go/pkg/config"
)

func main() {
	configFile := flag.String("config", "", "Configuration file path (YAML)")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	if err := run(*configFile, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "cell-shell: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, logLevel string) error {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	manager, err := cellular.NewManager(logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	shell, err := interactive.New(manager, cfg)
	if err != nil {
		return err
	}
	return shell.Run()
}
