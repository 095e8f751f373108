package cellular

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/ezcellular/ezcellular-go/pkg/mmdbus"
	"github.com/ezcellular/ezcellular-go/pkg/telemetry"
)

// defaultSignalRate is the refresh rate (seconds) configured on the
// signal interface when none is set yet.
const defaultSignalRate uint32 = 5

// networkTimeLayout is the ISO-8601 prefix the network time string is
// parsed with. Any trailing timezone suffix is ignored; epoch time is UTC.
const networkTimeLayout = "2006-01-02T15:04:05"

// Observer callback types. All observers run on the manager's dispatch
// goroutine; see the package comment.
type (
	// StateObserver receives modem state transitions.
	StateObserver func(oldState, newState ModemState)

	// SignalObserver receives decoded signal quality updates.
	SignalObserver func(*telemetry.Signal)

	// LocationObserver receives decoded cell location updates.
	LocationObserver func(*telemetry.Location)
)

// Modem is the typed facade over one remote modem object.
//
// Obtain instances from a Manager. A Modem becomes invalid when the
// service removes the underlying object, e.g. after a reset; use
// Manager.ResetModem to get the replacement instance.
type Modem struct {
	conn   mmdbus.Conn
	obj    dbus.BusObject
	path   dbus.ObjectPath
	logger *slog.Logger

	mu               sync.Mutex
	signals          chan *dbus.Signal
	stateObserver    StateObserver
	signalObserver   SignalObserver
	locationObserver LocationObserver
}

func newModem(conn mmdbus.Conn, path dbus.ObjectPath, logger *slog.Logger) *Modem {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Modem{
		conn:   conn,
		obj:    conn.Object(mmdbus.ModemManagerService, path),
		path:   path,
		logger: logger,
	}
}

// Path returns the modem's object path, its identity in the registry.
func (m *Modem) Path() dbus.ObjectPath {
	return m.path
}

// --- identity properties ---

// Manufacturer returns the modem's manufacturer name.
func (m *Modem) Manufacturer() (string, error) {
	return mmdbus.GetString(m.obj, mmdbus.ModemInterface, "Manufacturer")
}

// Model returns the modem's model name.
func (m *Modem) Model() (string, error) {
	return mmdbus.GetString(m.obj, mmdbus.ModemInterface, "Model")
}

// FirmwareVersion returns the modem's firmware revision.
func (m *Modem) FirmwareVersion() (string, error) {
	return mmdbus.GetString(m.obj, mmdbus.ModemInterface, "Revision")
}

// IMEI returns the modem's equipment identity.
func (m *Modem) IMEI() (string, error) {
	return mmdbus.GetString(m.obj, mmdbus.Modem3GPPInterface, "Imei")
}

// PhoneNumber returns the subscriber number (MSISDN). The service
// reports a list of own numbers; the first entry is returned. ok is
// false when the list is empty, which is common for locked modems.
func (m *Modem) PhoneNumber() (number string, ok bool, err error) {
	numbers, err := mmdbus.GetStrings(m.obj, mmdbus.ModemInterface, "OwnNumbers")
	if err != nil {
		return "", false, err
	}
	if len(numbers) == 0 {
		return "", false, nil
	}
	return numbers[0], true, nil
}

// OperatorPLMN returns the registered network operator's PLMN (MCC+MNC).
func (m *Modem) OperatorPLMN() (string, error) {
	return mmdbus.GetString(m.obj, mmdbus.Modem3GPPInterface, "OperatorCode")
}

// OperatorName returns the registered network operator's name.
func (m *Modem) OperatorName() (string, error) {
	return mmdbus.GetString(m.obj, mmdbus.Modem3GPPInterface, "OperatorName")
}

// --- modem state ---

// State returns the current lifecycle state.
func (m *Modem) State() (ModemState, error) {
	s, err := mmdbus.GetInt32(m.obj, mmdbus.ModemInterface, "State")
	if err != nil {
		return ModemStateUnknown, err
	}
	return ModemState(s), nil
}

// Enabled reports whether the modem is enabled (state >= ENABLED).
func (m *Modem) Enabled() (bool, error) {
	s, err := m.State()
	return s >= ModemStateEnabled, err
}

// Registered reports whether the modem is registered with a network
// (state >= REGISTERED).
func (m *Modem) Registered() (bool, error) {
	s, err := m.State()
	return s >= ModemStateRegistered, err
}

// Connected reports whether a packet data connection is active
// (state == CONNECTED).
func (m *Modem) Connected() (bool, error) {
	s, err := m.State()
	return s == ModemStateConnected, err
}

// Locked reports whether the modem is locked. A modem waiting for PIN2
// counts as unlocked, since normal operation is possible.
func (m *Modem) Locked() (bool, error) {
	s, err := m.LockState()
	if err != nil {
		return false, err
	}
	return s != LockStateUnlocked && s != LockStatePin2Required, nil
}

// requireState rejects op with a StateError when the modem has not
// reached the required state. The check is purely client-side.
func (m *Modem) requireState(op string, required ModemState) error {
	actual, err := m.State()
	if err != nil {
		return err
	}
	if actual < required {
		return &StateError{Op: op, Required: required, Actual: actual}
	}
	return nil
}

// ObserveModemState registers a callback for state transitions.
// Registering a new observer replaces the previous one; a dispatch
// already in flight may still deliver to the old callback.
func (m *Modem) ObserveModemState(observer StateObserver) error {
	if err := m.ensureDispatch(); err != nil {
		return err
	}
	m.mu.Lock()
	m.stateObserver = observer
	m.mu.Unlock()
	return nil
}

// Enable starts (or stops, with enable=false) the modem's registration
// process. The service is authoritative for the resulting state
// transitions; no client-side guard applies.
func (m *Modem) Enable(enable bool) error {
	if call := m.obj.Call(mmdbus.ModemInterface+".Enable", 0, enable); call.Err != nil {
		return fmt.Errorf("enable modem: %w", call.Err)
	}
	return nil
}

// Reset power-cycles the modem.
//
// The service drops and re-announces the modem object, so this instance
// and any SIM or Connection derived from it become invalid. Use
// Manager.ResetModem to obtain the replacement instance.
func (m *Modem) Reset() error {
	if call := m.obj.Call(mmdbus.ModemInterface+".Reset", 0); call.Err != nil {
		return fmt.Errorf("reset modem: %w", call.Err)
	}
	return nil
}

// --- power ---

// PowerState returns the modem's current power state.
func (m *Modem) PowerState() (PowerState, error) {
	s, err := mmdbus.GetUint32(m.obj, mmdbus.ModemInterface, "PowerState")
	return PowerState(s), err
}

// setPowerState guards and issues a power state change.
// The service only accepts power changes while the modem is DISABLED.
func (m *Modem) setPowerState(state PowerState) error {
	if err := m.requireState("change power state", ModemStateDisabled); err != nil {
		return err
	}
	if call := m.obj.Call(mmdbus.ModemInterface+".SetPowerState", 0, uint32(state)); call.Err != nil {
		return fmt.Errorf("set power state: %w", call.Err)
	}
	return nil
}

// PowerOff turns the modem off. Not supported by all hardware.
func (m *Modem) PowerOff() error {
	return m.setPowerState(PowerStateOff)
}

// PowerLow puts the modem into a low-power state (radio off).
func (m *Modem) PowerLow() error {
	return m.setPowerState(PowerStateLow)
}

// PowerOn puts the modem into the full-power state.
func (m *Modem) PowerOn() error {
	return m.setPowerState(PowerStateOn)
}

// --- SIM ---

// LockState returns the reason the modem is locked, if it is.
func (m *Modem) LockState() (LockState, error) {
	s, err := mmdbus.GetUint32(m.obj, mmdbus.ModemInterface, "UnlockRequired")
	return LockState(s), err
}

// ActiveSIM returns the currently active SIM card, or nil when no SIM
// is present.
func (m *Modem) ActiveSIM() (*SIM, error) {
	path, err := mmdbus.GetObjectPath(m.obj, mmdbus.ModemInterface, "Sim")
	if err != nil {
		return nil, err
	}
	if path == "/" {
		return nil, nil
	}
	return newSIM(m.conn, path), nil
}

// --- connections ---

// Connections returns all bearers configured on this modem, active or not.
func (m *Modem) Connections() ([]*Connection, error) {
	paths, err := mmdbus.GetObjectPaths(m.obj, mmdbus.ModemInterface, "Bearers")
	if err != nil {
		return nil, err
	}
	conns := make([]*Connection, 0, len(paths))
	for _, p := range paths {
		conns = append(conns, newConnection(m.conn, p, m.logger))
	}
	return conns, nil
}

// ActiveConnection returns the first active bearer, or nil when none is.
func (m *Modem) ActiveConnection() (*Connection, error) {
	conns, err := m.Connections()
	if err != nil {
		return nil, err
	}
	for _, c := range conns {
		active, err := c.Active()
		if err != nil {
			return nil, err
		}
		if active {
			return c, nil
		}
	}
	return nil, nil
}

// Connect creates a bearer for the given APN and IP family and activates
// it. This is a two-step sequence with no compensating action: when
// activation fails, the created bearer is left behind and the error is
// returned as-is. Callers that care can clean up via Connections.
func (m *Modem) Connect(apn string, ipType IPType) (*Connection, error) {
	props := map[string]dbus.Variant{
		"apn":     dbus.MakeVariant(apn),
		"ip-type": dbus.MakeVariant(uint32(ipType)),
	}

	var bearerPath dbus.ObjectPath
	call := m.obj.Call(mmdbus.ModemInterface+".CreateBearer", 0, props)
	if call.Err != nil {
		return nil, fmt.Errorf("create bearer: %w", call.Err)
	}
	if err := call.Store(&bearerPath); err != nil {
		return nil, fmt.Errorf("create bearer: %w", err)
	}

	bearer := m.conn.Object(mmdbus.ModemManagerService, bearerPath)
	if call := bearer.Call(mmdbus.BearerInterface+".Connect", 0); call.Err != nil {
		return nil, fmt.Errorf("activate bearer: %w", call.Err)
	}

	return newConnection(m.conn, bearerPath, m.logger), nil
}

// --- technology, signal, cells, location ---

// Technology returns the current coarse radio technology.
func (m *Modem) Technology() (telemetry.Technology, error) {
	code, err := mmdbus.GetUint32(m.obj, mmdbus.ModemInterface, "AccessTechnologies")
	if err != nil {
		return telemetry.TechnologyUnknown, err
	}
	return telemetry.TechnologyFromAccess(code), nil
}

// Signal returns the current signal quality for the active technology.
//
// The service only fills signal properties when a refresh rate is
// configured; when the rate is still zero, a default rate is set up
// first. Only LTE and NR5G yield records; other technologies fail with
// ErrUnsupportedTechnology.
func (m *Modem) Signal() (*telemetry.Signal, error) {
	if err := m.requireState("access signal quality", ModemStateRegistered); err != nil {
		return nil, err
	}

	rate, err := mmdbus.GetUint32(m.obj, mmdbus.ModemSignalInterface, "Rate")
	if err != nil {
		return nil, err
	}
	if rate == 0 {
		if call := m.obj.Call(mmdbus.ModemSignalInterface+".Setup", 0, defaultSignalRate); call.Err != nil {
			return nil, fmt.Errorf("set up signal refresh: %w", call.Err)
		}
	}

	tech, err := m.Technology()
	if err != nil {
		return nil, err
	}
	prop, err := signalProperty(tech)
	if err != nil {
		return nil, err
	}
	raw, err := mmdbus.GetVariantMap(m.obj, mmdbus.ModemSignalInterface, prop)
	if err != nil {
		return nil, err
	}
	return telemetry.DecodeSignal(tech, raw)
}

// signalProperty maps a technology to its signal property name.
func signalProperty(tech telemetry.Technology) (string, error) {
	switch tech {
	case telemetry.TechnologyLTE:
		return "Lte", nil
	case telemetry.TechnologyNR5G:
		return "Nr5g", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedTechnology, tech)
	}
}

// ObserveSignal registers a callback for periodic signal quality updates
// at the given interval. Registering a new observer replaces the
// previous one.
func (m *Modem) ObserveSignal(observer SignalObserver, intervalSec uint32) error {
	if err := m.requireState("observe signal quality", ModemStateRegistered); err != nil {
		return err
	}
	m.obj.Call(mmdbus.ModemSignalInterface+".Setup", dbus.FlagNoReplyExpected, intervalSec)
	if err := m.ensureDispatch(); err != nil {
		return err
	}
	m.mu.Lock()
	m.signalObserver = observer
	m.mu.Unlock()
	return nil
}

// CellInfo returns the cells the modem currently sees, serving and
// neighboring. Entries with an unsupported radio technology are dropped
// from the result.
func (m *Modem) CellInfo() ([]*telemetry.CellInfo, error) {
	if err := m.requireState("access cell information", ModemStateRegistered); err != nil {
		return nil, err
	}

	var raws []map[string]dbus.Variant
	call := m.obj.Call(mmdbus.ModemInterface+".GetCellInfo", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("get cell info: %w", call.Err)
	}
	if err := call.Store(&raws); err != nil {
		return nil, fmt.Errorf("get cell info: %w", err)
	}
	return telemetry.DecodeCellInfoList(mmdbus.UnwrapVariantMaps(raws)), nil
}

// Location returns the current cell location identifiers.
func (m *Modem) Location() (*telemetry.Location, error) {
	if err := m.requireState("access cell location", ModemStateRegistered); err != nil {
		return nil, err
	}

	var dict map[uint32]dbus.Variant
	call := m.obj.Call(mmdbus.ModemLocationInterface+".GetLocation", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("get location: %w", call.Err)
	}
	if err := call.Store(&dict); err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return m.decodeLocationDict(dict)
}

// decodeLocationDict extracts and parses the 3GPP LAC/CI entry from a
// location dictionary keyed by source.
func (m *Modem) decodeLocationDict(dict map[uint32]dbus.Variant) (*telemetry.Location, error) {
	v, ok := dict[mmdbus.LocationSource3GPPLacCi]
	if !ok {
		return nil, ErrNoLocation
	}
	s, ok := v.Value().(string)
	if !ok {
		return nil, ErrNoLocation
	}
	tech, err := m.Technology()
	if err != nil {
		return nil, err
	}
	return telemetry.ParseLocation3GPP(tech, s)
}

// ObserveLocation registers a callback for cell location updates.
// The 3GPP LAC/CI location source is enabled on the service first.
// Registering a new observer replaces the previous one.
func (m *Modem) ObserveLocation(observer LocationObserver) error {
	if err := m.requireState("observe cell location", ModemStateRegistered); err != nil {
		return err
	}
	call := m.obj.Call(mmdbus.ModemLocationInterface+".Setup", 0,
		mmdbus.LocationSource3GPPLacCi, true)
	if call.Err != nil {
		return fmt.Errorf("set up location source: %w", call.Err)
	}
	if err := m.ensureDispatch(); err != nil {
		return err
	}
	m.mu.Lock()
	m.locationObserver = observer
	m.mu.Unlock()
	return nil
}

// --- network time ---

// NetworkTime returns the modem's time, usually the network's, as an
// ISO-8601 formatted string.
func (m *Modem) NetworkTime() (string, error) {
	if err := m.requireState("get network time", ModemStateEnabled); err != nil {
		return "", err
	}
	var s string
	call := m.obj.Call(mmdbus.ModemTimeInterface+".GetNetworkTime", 0)
	if call.Err != nil {
		return "", fmt.Errorf("get network time: %w", call.Err)
	}
	if err := call.Store(&s); err != nil {
		return "", fmt.Errorf("get network time: %w", err)
	}
	return s, nil
}

// NetworkTimeEpoch returns the network time as a Unix timestamp.
// The time string is parsed as UTC; any timezone suffix is ignored.
// A string that does not parse yields 0, not an error.
func (m *Modem) NetworkTimeEpoch() (int64, error) {
	s, err := m.NetworkTime()
	if err != nil {
		return 0, err
	}
	return parseNetworkTime(s), nil
}

func parseNetworkTime(s string) int64 {
	if len(s) < len(networkTimeLayout) {
		return 0
	}
	t, err := time.Parse(networkTimeLayout, s[:len(networkTimeLayout)])
	if err != nil {
		return 0
	}
	return t.Unix()
}

// --- signal dispatch ---

// ensureDispatch installs the match rules for this modem's signals and
// starts the dispatch goroutine, once.
func (m *Modem) ensureDispatch() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.signals != nil {
		return nil
	}

	err := m.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(m.path),
		dbus.WithMatchInterface(mmdbus.PropertiesInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	)
	if err != nil {
		return fmt.Errorf("match properties changes: %w", err)
	}
	err = m.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(m.path),
		dbus.WithMatchInterface(mmdbus.ModemInterface),
		dbus.WithMatchMember("StateChanged"),
	)
	if err != nil {
		return fmt.Errorf("match state changes: %w", err)
	}

	ch := make(chan *dbus.Signal, 16)
	m.conn.Signal(ch)
	m.signals = ch
	go m.dispatch(ch)
	return nil
}

// dispatch consumes bus signals until the channel is closed (when the
// bus connection shuts down). Observer callbacks run here.
func (m *Modem) dispatch(ch <-chan *dbus.Signal) {
	for sig := range ch {
		if sig.Path != m.path {
			continue
		}
		switch sig.Name {
		case mmdbus.SignalModemStateChanged:
			m.handleStateChanged(sig)
		case mmdbus.SignalPropertiesChanged:
			m.handlePropertiesChanged(sig)
		}
	}
}

func (m *Modem) handleStateChanged(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	oldRaw, ok := sig.Body[0].(int32)
	if !ok {
		return
	}
	newRaw, ok := sig.Body[1].(int32)
	if !ok {
		return
	}

	m.mu.Lock()
	observer := m.stateObserver
	m.mu.Unlock()
	if observer != nil {
		observer(ModemState(oldRaw), ModemState(newRaw))
	}
}

func (m *Modem) handlePropertiesChanged(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	iface, ok := sig.Body[0].(string)
	if !ok {
		return
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	switch iface {
	case mmdbus.ModemSignalInterface:
		m.deliverSignal(changed)
	case mmdbus.ModemLocationInterface:
		m.deliverLocation(changed)
	}
}

func (m *Modem) deliverSignal(changed map[string]dbus.Variant) {
	m.mu.Lock()
	observer := m.signalObserver
	m.mu.Unlock()
	if observer == nil {
		return
	}

	for prop, tech := range map[string]telemetry.Technology{
		"Lte":  telemetry.TechnologyLTE,
		"Nr5g": telemetry.TechnologyNR5G,
	} {
		v, ok := changed[prop]
		if !ok {
			continue
		}
		raw, ok := v.Value().(map[string]dbus.Variant)
		if !ok {
			continue
		}
		signal, err := telemetry.DecodeSignal(tech, mmdbus.UnwrapVariantMap(raw))
		if err != nil {
			m.logger.Debug("dropping signal update", "path", m.path, "error", err)
			continue
		}
		observer(signal)
		return
	}
}

func (m *Modem) deliverLocation(changed map[string]dbus.Variant) {
	m.mu.Lock()
	observer := m.locationObserver
	m.mu.Unlock()
	if observer == nil {
		return
	}

	v, ok := changed["Location"]
	if !ok {
		return
	}
	dict, ok := v.Value().(map[uint32]dbus.Variant)
	if !ok {
		return
	}
	loc, err := m.decodeLocationDict(dict)
	if err != nil {
		m.logger.Debug("dropping location update", "path", m.path, "error", err)
		return
	}
	observer(loc)
}
