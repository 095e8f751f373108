// Package interactive provides the interactive command-line interface
// for cell-shell.
package interactive

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/ezcellular/ezcellular-go/pkg/cellular"
	"github.com/ezcellular/ezcellular-go/pkg/config"
	"github.com/ezcellular/ezcellular-go/pkg/telemetry"
)

// Shell handles interactive mode for cell-shell.
type Shell struct {
	manager *cellular.Manager
	cfg     *config.Config
	rl      *readline.Instance

	// Current modem selection. Commands that need a modem resolve it
	// lazily so the shell can start with no hardware present.
	modem *cellular.Modem
}

// New creates a new interactive shell.
func New(manager *cellular.Manager, cfg *config.Config) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "cell> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{manager: manager, cfg: cfg, rl: rl}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run starts the interactive command loop. It returns when the user
// exits or input is closed.
func (s *Shell) Run() error {
	defer s.rl.Close()

	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "modems", "m":
			s.cmdModems()

		case "use":
			s.cmdUse(args)

		case "status", "st":
			s.cmdStatus()

		case "info", "i":
			s.cmdInfo()

		case "sim":
			s.cmdSIM()

		case "unlock":
			s.cmdUnlock(args)

		case "puk":
			s.cmdPUK(args)

		case "enable":
			s.cmdEnable(true)

		case "disable":
			s.cmdEnable(false)

		case "power":
			s.cmdPower(args)

		case "connect", "c":
			s.cmdConnect(args)

		case "disconnect", "dc":
			s.cmdDisconnect()

		case "signal", "s":
			s.cmdSignal()

		case "cells":
			s.cmdCells()

		case "location", "loc":
			s.cmdLocation()

		case "time":
			s.cmdTime()

		case "traffic", "t":
			s.cmdTraffic()

		case "watch", "w":
			s.cmdWatch(args)

		case "reset":
			s.cmdReset()

		case "exit", "quit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return nil

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.rl.Stdout(), `Commands:
  modems, m             List available modems
  use <index>           Select the modem to operate on
  status, st            Show modem state
  info, i               Show modem identity
  sim                   Show SIM card details
  unlock <pin>          Unlock the SIM with its PIN
  puk <puk> <new-pin>   Unlock a blocked SIM and set a new PIN
  enable / disable      Start or stop the modem
  power <on|low|off>    Change the power state (modem must be disabled)
  connect, c <apn> [v4|v6|v4v6]
                        Create and activate a data connection; a name
                        from the config's apns list is resolved first
  disconnect, dc        Tear down the active connection
  signal, s             Show current signal quality
  cells                 Show the visible cell environment
  location, loc         Show the current cell location
  time                  Show the network time
  traffic, t            Show traffic counters
  watch, w <state|signal|location|traffic> [seconds]
                        Stream updates until Enter is pressed
  reset                 Reset the modem and reattach
  exit, quit, q         Exit the shell
`)
}

// current resolves the selected modem, falling back to the first one.
func (s *Shell) current() *cellular.Modem {
	if s.modem != nil {
		return s.modem
	}
	s.modem = s.manager.AnyModem()
	if s.modem == nil {
		fmt.Fprintln(s.rl.Stdout(), "No modem available")
	}
	return s.modem
}

func (s *Shell) cmdModems() {
	modems := s.manager.AvailableModems()
	if len(modems) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No modems found")
		return
	}
	for i, m := range modems {
		marker := " "
		if s.modem != nil && m.Path() == s.modem.Path() {
			marker = "*"
		}
		state, err := m.State()
		stateName := "?"
		if err == nil {
			stateName = state.String()
		}
		imei, _ := m.IMEI()
		fmt.Fprintf(s.rl.Stdout(), "%s [%d] %s  state=%s imei=%s\n",
			marker, i, m.Path(), stateName, imei)
	}
}

func (s *Shell) cmdUse(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: use <index>")
		return
	}
	index, err := strconv.Atoi(args[0])
	modems := s.manager.AvailableModems()
	if err != nil || index < 0 || index >= len(modems) {
		fmt.Fprintf(s.rl.Stdout(), "No modem at index %s\n", args[0])
		return
	}
	s.modem = modems[index]
	fmt.Fprintf(s.rl.Stdout(), "Using %s\n", s.modem.Path())
}

func (s *Shell) cmdStatus() {
	m := s.current()
	if m == nil {
		return
	}
	state, err := m.State()
	if err != nil {
		s.printError(err)
		return
	}
	power, _ := m.PowerState()
	lock, _ := m.LockState()
	tech, _ := m.Technology()
	fmt.Fprintf(s.rl.Stdout(), "State:      %s\n", state)
	fmt.Fprintf(s.rl.Stdout(), "Power:      %s\n", power)
	fmt.Fprintf(s.rl.Stdout(), "Lock:       %s\n", lock)
	fmt.Fprintf(s.rl.Stdout(), "Technology: %s\n", tech)

	if plmn, err := m.OperatorPLMN(); err == nil && plmn != "" {
		name, _ := m.OperatorName()
		fmt.Fprintf(s.rl.Stdout(), "Operator:   %s (%s)\n", name, plmn)
	}
}

func (s *Shell) cmdInfo() {
	m := s.current()
	if m == nil {
		return
	}
	print := func(label string, value string, err error) {
		if err != nil {
			value = "?"
		}
		fmt.Fprintf(s.rl.Stdout(), "%-13s %s\n", label+":", value)
	}
	manufacturer, err := m.Manufacturer()
	print("Manufacturer", manufacturer, err)
	model, err := m.Model()
	print("Model", model, err)
	firmware, err := m.FirmwareVersion()
	print("Firmware", firmware, err)
	imei, err := m.IMEI()
	print("IMEI", imei, err)
	if number, ok, err := m.PhoneNumber(); err == nil && ok {
		print("Number", number, nil)
	}
}

func (s *Shell) cmdSIM() {
	m := s.current()
	if m == nil {
		return
	}
	sim, err := m.ActiveSIM()
	if err != nil {
		s.printError(err)
		return
	}
	if sim == nil {
		fmt.Fprintln(s.rl.Stdout(), "No SIM card present")
		return
	}
	iccid, _ := sim.ICCID()
	imsi, _ := sim.IMSI()
	name, _ := sim.OperatorName()
	plmn, _ := sim.HomePLMN()
	fmt.Fprintf(s.rl.Stdout(), "ICCID:    %s\n", iccid)
	fmt.Fprintf(s.rl.Stdout(), "IMSI:     %s\n", imsi)
	fmt.Fprintf(s.rl.Stdout(), "Operator: %s (%s)\n", name, plmn)
}

func (s *Shell) cmdUnlock(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: unlock <pin>")
		return
	}
	m := s.current()
	if m == nil {
		return
	}
	sim, err := m.ActiveSIM()
	if err != nil || sim == nil {
		fmt.Fprintln(s.rl.Stdout(), "No SIM card present")
		return
	}
	if err := sim.SendPIN(args[0]); err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "SIM unlocked")
}

func (s *Shell) cmdPUK(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: puk <puk> <new-pin>")
		return
	}
	m := s.current()
	if m == nil {
		return
	}
	sim, err := m.ActiveSIM()
	if err != nil || sim == nil {
		fmt.Fprintln(s.rl.Stdout(), "No SIM card present")
		return
	}
	if err := sim.SendPUK(args[0], args[1]); err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "SIM unlocked, new PIN set")
}

func (s *Shell) cmdEnable(enable bool) {
	m := s.current()
	if m == nil {
		return
	}
	if err := m.Enable(enable); err != nil {
		s.printError(err)
		return
	}
	if enable {
		fmt.Fprintln(s.rl.Stdout(), "Modem enabling...")
	} else {
		fmt.Fprintln(s.rl.Stdout(), "Modem disabling...")
	}
}

func (s *Shell) cmdPower(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: power <on|low|off>")
		return
	}
	m := s.current()
	if m == nil {
		return
	}
	var err error
	switch args[0] {
	case "on":
		err = m.PowerOn()
	case "low":
		err = m.PowerLow()
	case "off":
		err = m.PowerOff()
	default:
		fmt.Fprintln(s.rl.Stdout(), "Usage: power <on|low|off>")
		return
	}
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Power state set to %s\n", args[0])
}

// resolveAPN turns a connect argument into an APN and IP family, first
// through the config's named entries, then as a literal APN.
func (s *Shell) resolveAPN(args []string) (string, cellular.IPType, error) {
	if entry := s.cfg.APNByName(args[0]); entry != nil {
		ipType, err := entry.ResolveIPType()
		return entry.APN, ipType, err
	}

	ipType := cellular.IPTypeIPv4
	if len(args) > 1 {
		switch args[1] {
		case "v4":
			ipType = cellular.IPTypeIPv4
		case "v6":
			ipType = cellular.IPTypeIPv6
		case "v4v6":
			ipType = cellular.IPTypeIPv4v6
		default:
			return "", cellular.IPTypeUnknown, fmt.Errorf("invalid IP type %q", args[1])
		}
	}
	return args[0], ipType, nil
}

func (s *Shell) cmdConnect(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: connect <apn> [v4|v6|v4v6]")
		return
	}
	m := s.current()
	if m == nil {
		return
	}
	apn, ipType, err := s.resolveAPN(args)
	if err != nil {
		s.printError(err)
		return
	}

	fmt.Fprintf(s.rl.Stdout(), "Connecting to %s (%s)...\n", apn, ipType)
	conn, err := m.Connect(apn, ipType)
	if err != nil {
		s.printError(err)
		return
	}

	iface, _ := conn.LinuxInterface()
	fmt.Fprintf(s.rl.Stdout(), "Connected on %s\n", iface)
	if v4, err := conn.IPv4Config(); err == nil && v4 != nil {
		fmt.Fprintf(s.rl.Stdout(), "  IPv4: %s/%d gw %s\n", v4.Address, v4.Prefix, v4.Gateway)
	}
	if v6, err := conn.IPv6Config(); err == nil && v6 != nil {
		fmt.Fprintf(s.rl.Stdout(), "  IPv6: %s/%d\n", v6.Address, v6.Prefix)
	}
}

func (s *Shell) cmdDisconnect() {
	m := s.current()
	if m == nil {
		return
	}
	conn, err := m.ActiveConnection()
	if err != nil {
		s.printError(err)
		return
	}
	if conn == nil {
		fmt.Fprintln(s.rl.Stdout(), "No active connection")
		return
	}
	if err := conn.Disconnect(); err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "Disconnected")
}

func (s *Shell) cmdSignal() {
	m := s.current()
	if m == nil {
		return
	}
	signal, err := m.Signal()
	if err != nil {
		s.printError(err)
		return
	}
	s.printSignal(signal)
}

func (s *Shell) printSignal(signal *telemetry.Signal) {
	fmt.Fprintf(s.rl.Stdout(), "Technology: %s\n", signal.Tech())
	if rsrp, err := signal.RSRP(); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "  RSRP: %6.1f dBm\n", rsrp)
	}
	if rsrq, err := signal.RSRQ(); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "  RSRQ: %6.1f dB\n", rsrq)
	}
	if rssi, err := signal.RSSI(); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "  RSSI: %6.1f dBm\n", rssi)
	}
	if sinr, err := signal.SINR(); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "  SINR: %6.1f dB\n", sinr)
	}
}

func (s *Shell) cmdCells() {
	m := s.current()
	if m == nil {
		return
	}
	cells, err := m.CellInfo()
	if err != nil {
		s.printError(err)
		return
	}
	if len(cells) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No cells reported")
		return
	}
	for _, cell := range cells {
		marker := " "
		if cell.Serving() {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-5s", marker, cell.Tech())
		if ci, err := cell.CI(); err == nil {
			line += fmt.Sprintf(" ci=%d", ci)
		}
		if pci, err := cell.PCI(); err == nil {
			line += fmt.Sprintf(" pci=%d", pci)
		}
		fmt.Fprintln(s.rl.Stdout(), line)
	}
}

func (s *Shell) cmdLocation() {
	m := s.current()
	if m == nil {
		return
	}
	loc, err := m.Location()
	if err != nil {
		s.printError(err)
		return
	}
	mcc, _ := loc.MCC()
	mnc, _ := loc.MNC()
	fmt.Fprintf(s.rl.Stdout(), "PLMN: %s/%s\n", mcc, mnc)
	if ci, err := loc.CI(); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "CI:   %d\n", ci)
	}
	if tac, err := loc.TAC(); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "TAC:  %d\n", tac)
	}
}

func (s *Shell) cmdTime() {
	m := s.current()
	if m == nil {
		return
	}
	networkTime, err := m.NetworkTime()
	if err != nil {
		s.printError(err)
		return
	}
	epoch, _ := m.NetworkTimeEpoch()
	fmt.Fprintf(s.rl.Stdout(), "Network time: %s (epoch %d)\n", networkTime, epoch)
}

func (s *Shell) cmdTraffic() {
	m := s.current()
	if m == nil {
		return
	}
	conn, err := m.ActiveConnection()
	if err != nil {
		s.printError(err)
		return
	}
	if conn == nil {
		fmt.Fprintln(s.rl.Stdout(), "No active connection")
		return
	}
	rx, tx, err := conn.TrafficStats()
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "RX: %d bytes  TX: %d bytes\n", rx, tx)
}

func (s *Shell) cmdWatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: watch <state|signal|location|traffic> [seconds]")
		return
	}
	m := s.current()
	if m == nil {
		return
	}

	interval := s.cfg.SignalRateSeconds
	if len(args) > 1 {
		parsed, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil || parsed == 0 {
			fmt.Fprintf(s.rl.Stdout(), "Invalid interval %q\n", args[1])
			return
		}
		interval = uint32(parsed)
	}

	var err error
	switch args[0] {
	case "state":
		err = m.ObserveModemState(func(oldState, newState cellular.ModemState) {
			fmt.Fprintf(s.rl.Stdout(), "[state] %s -> %s\n", oldState, newState)
		})
	case "signal":
		err = m.ObserveSignal(func(signal *telemetry.Signal) {
			if rsrp, rerr := signal.RSRP(); rerr == nil {
				fmt.Fprintf(s.rl.Stdout(), "[signal] %s rsrp=%.1f\n", signal.Tech(), rsrp)
			}
		}, interval)
	case "location":
		err = m.ObserveLocation(func(loc *telemetry.Location) {
			mcc, _ := loc.MCC()
			mnc, _ := loc.MNC()
			ci, _ := loc.CI()
			fmt.Fprintf(s.rl.Stdout(), "[location] plmn=%s/%s ci=%d\n", mcc, mnc, ci)
		})
	case "traffic":
		err = s.watchTraffic(m)
	default:
		fmt.Fprintln(s.rl.Stdout(), "Usage: watch <state|signal|location|traffic> [seconds]")
		return
	}
	if err != nil {
		s.printError(err)
		return
	}

	fmt.Fprintln(s.rl.Stdout(), "Watching, press Enter to stop...")
	s.rl.Readline()
	s.stopWatch(m, args[0])
}

func (s *Shell) watchTraffic(m *cellular.Modem) error {
	conn, err := m.ActiveConnection()
	if err != nil {
		return err
	}
	if conn == nil {
		return fmt.Errorf("no active connection")
	}
	return conn.ObserveTrafficStats(func(rx, tx uint64) {
		fmt.Fprintf(s.rl.Stdout(), "[traffic] rx=%d tx=%d\n", rx, tx)
	}, s.cfg.TrafficRateMs)
}

// stopWatch replaces the observer with one that discards updates.
func (s *Shell) stopWatch(m *cellular.Modem, what string) {
	switch what {
	case "state":
		m.ObserveModemState(func(cellular.ModemState, cellular.ModemState) {})
	case "signal":
		m.ObserveSignal(func(*telemetry.Signal) {}, s.cfg.SignalRateSeconds)
	case "location":
		m.ObserveLocation(func(*telemetry.Location) {})
	case "traffic":
		if conn, err := m.ActiveConnection(); err == nil && conn != nil {
			conn.ObserveTrafficStats(func(uint64, uint64) {}, s.cfg.TrafficRateMs)
		}
	}
}

func (s *Shell) cmdReset() {
	m := s.current()
	if m == nil {
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "Resetting, waiting for the modem to come back...")

	done := make(chan struct{})
	var replacement *cellular.Modem
	var resetErr error
	go func() {
		replacement, resetErr = s.manager.ResetModem(m)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Minute):
		s.printError(fmt.Errorf("timed out waiting for the modem"))
		return
	}
	if resetErr != nil {
		s.printError(resetErr)
		return
	}
	s.modem = replacement
	fmt.Fprintf(s.rl.Stdout(), "Modem back at %s\n", replacement.Path())
}

func (s *Shell) printError(err error) {
	fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
}
