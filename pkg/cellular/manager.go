package cellular

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/ezcellular/ezcellular-go/pkg/mmdbus"
)

// AnyIMEI matches the first modem that appears, regardless of identity.
const AnyIMEI = "any"

// ModemFuture resolves to a modem announced after an await was armed.
// Wait is single-use: it consumes the result.
type ModemFuture struct {
	ch chan awaitResult
}

type awaitResult struct {
	modem *Modem
	err   error
}

// Wait blocks until the awaited modem appears, the await is preempted by
// a newer one (ErrAwaitCancelled), or the manager closes (ErrConnectionLost).
func (f *ModemFuture) Wait() (*Modem, error) {
	res := <-f.ch
	return res.modem, res.err
}

type pendingAwait struct {
	imei string
	ch   chan awaitResult
}

func (p *pendingAwait) resolve(modem *Modem, err error) {
	p.ch <- awaitResult{modem: modem, err: err}
}

// Manager tracks the modems exposed by the management service and hands
// out Modem sessions. It keeps its registry current by following the
// service's object announcements, so modems appearing or disappearing at
// runtime (USB replug, reset) are reflected without polling.
type Manager struct {
	conn   mmdbus.Conn
	logger *slog.Logger

	mu      sync.Mutex
	modems  map[dbus.ObjectPath]*Modem
	pending *pendingAwait
	closed  bool

	signals chan *dbus.Signal
}

// NewManager connects to the system bus and builds a manager over the
// modem management service. Fails with ErrServiceUnavailable when the
// service cannot be reached or enumerated.
func NewManager(logger *slog.Logger) (*Manager, error) {
	conn, err := mmdbus.System()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return NewManagerWithConn(conn, logger)
}

// NewManagerWithConn builds a manager over an existing bus connection.
// The manager takes ownership of the connection and closes it on Close.
func NewManagerWithConn(conn mmdbus.Conn, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Manager{
		conn:   conn,
		logger: logger,
		modems: make(map[dbus.ObjectPath]*Modem),
	}
	if err := m.enumerate(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := m.watch(); err != nil {
		conn.Close()
		return nil, err
	}
	return m, nil
}

// enumerate seeds the registry with the modems the service already manages.
func (m *Manager) enumerate() error {
	var managed map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	obj := m.conn.Object(mmdbus.ModemManagerService, mmdbus.ModemManagerPath)
	call := obj.Call(mmdbus.ObjectManagerInterface+".GetManagedObjects", 0)
	if call.Err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, call.Err)
	}
	if err := call.Store(&managed); err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	paths := make([]dbus.ObjectPath, 0, len(managed))
	for path, ifaces := range managed {
		if _, ok := ifaces[mmdbus.ModemInterface]; ok {
			paths = append(paths, path)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	for _, path := range paths {
		m.modems[path] = newModem(m.conn, path, m.logger)
		m.logger.Debug("modem discovered", "path", path)
	}
	return nil
}

// watch subscribes to object announcements and starts the dispatch
// goroutine.
func (m *Manager) watch() error {
	err := m.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(mmdbus.ModemManagerPath),
		dbus.WithMatchInterface(mmdbus.ObjectManagerInterface),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	ch := make(chan *dbus.Signal, 16)
	m.conn.Signal(ch)
	m.signals = ch
	go m.dispatch(ch)
	return nil
}

// Close cancels any pending await and shuts down the bus connection,
// which also terminates the dispatch goroutine.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	if pending != nil {
		pending.resolve(nil, ErrConnectionLost)
	}
	return m.conn.Close()
}

// Version returns the version string reported by the management service.
func (m *Manager) Version() (string, error) {
	obj := m.conn.Object(mmdbus.ModemManagerService, mmdbus.ModemManagerPath)
	return mmdbus.GetString(obj, mmdbus.ModemManagerInterface, "Version")
}

// ModemsAvailable reports whether the registry currently holds any modem.
func (m *Manager) ModemsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.modems) > 0
}

// AvailableModems returns the current registry contents in path order.
func (m *Manager) AvailableModems() []*Modem {
	m.mu.Lock()
	defer m.mu.Unlock()

	modems := make([]*Modem, 0, len(m.modems))
	for _, modem := range m.modems {
		modems = append(modems, modem)
	}
	sort.Slice(modems, func(i, j int) bool { return modems[i].path < modems[j].path })
	return modems
}

// AnyModem returns an arbitrary but deterministic modem (the lowest
// path), or nil when the registry is empty.
func (m *Manager) AnyModem() *Modem {
	modems := m.AvailableModems()
	if len(modems) == 0 {
		return nil
	}
	return modems[0]
}

// ModemByIMEI returns the registered modem with the given equipment
// identity, or nil when none matches. Modems whose identity cannot be
// read (locked, still initializing) are skipped.
func (m *Manager) ModemByIMEI(imei string) *Modem {
	for _, modem := range m.AvailableModems() {
		got, err := modem.IMEI()
		if err != nil {
			m.logger.Debug("skipping modem with unreadable IMEI",
				"path", modem.Path(), "error", err)
			continue
		}
		if got == imei {
			return modem
		}
	}
	return nil
}

// AwaitModem arms a future that resolves when a modem with the given
// IMEI (or any modem, with AnyIMEI) is announced. Only one await can be
// armed at a time; arming a new one preempts the previous future with
// ErrAwaitCancelled. Modems already in the registry do not resolve the
// future; check the registry first when that matters.
func (m *Manager) AwaitModem(imei string) *ModemFuture {
	pending := &pendingAwait{imei: imei, ch: make(chan awaitResult, 1)}

	m.mu.Lock()
	previous := m.pending
	m.pending = pending
	m.mu.Unlock()

	if previous != nil {
		previous.resolve(nil, ErrAwaitCancelled)
	}
	return &ModemFuture{ch: pending.ch}
}

// ResetModem power-cycles a modem and waits for its replacement to be
// announced. The passed session and anything derived from it are invalid
// afterwards; the returned session is the one to keep using.
func (m *Manager) ResetModem(modem *Modem) (*Modem, error) {
	imei, err := modem.IMEI()
	if err != nil {
		return nil, fmt.Errorf("read identity before reset: %w", err)
	}
	future := m.AwaitModem(imei)
	if err := modem.Reset(); err != nil {
		return nil, err
	}
	return future.Wait()
}

// --- signal dispatch ---

func (m *Manager) dispatch(ch <-chan *dbus.Signal) {
	for sig := range ch {
		switch sig.Name {
		case mmdbus.SignalInterfacesAdded:
			m.handleAdded(sig)
		case mmdbus.SignalInterfacesRemoved:
			m.handleRemoved(sig)
		}
	}
}

func (m *Manager) handleAdded(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	path, ok := sig.Body[0].(dbus.ObjectPath)
	if !ok {
		return
	}
	ifaces, ok := sig.Body[1].(map[string]map[string]dbus.Variant)
	if !ok {
		return
	}
	if _, ok := ifaces[mmdbus.ModemInterface]; !ok {
		return
	}

	modem := newModem(m.conn, path, m.logger)

	m.mu.Lock()
	m.modems[path] = modem
	pending := m.pending
	m.mu.Unlock()
	m.logger.Debug("modem added", "path", path)

	if pending == nil {
		return
	}
	if !m.matchesAwait(modem, pending.imei) {
		return
	}

	m.mu.Lock()
	won := m.pending == pending
	if won {
		m.pending = nil
	}
	m.mu.Unlock()
	if won {
		pending.resolve(modem, nil)
	}
}

// matchesAwait checks a newly announced modem against the awaited IMEI.
// A modem whose identity cannot be read yet only matches the wildcard;
// an await for a specific IMEI keeps waiting in that case.
func (m *Manager) matchesAwait(modem *Modem, imei string) bool {
	if imei == AnyIMEI {
		return true
	}
	got, err := modem.IMEI()
	if err != nil {
		m.logger.Debug("cannot match await, IMEI unreadable",
			"path", modem.Path(), "error", err)
		return false
	}
	return got == imei
}

func (m *Manager) handleRemoved(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	path, ok := sig.Body[0].(dbus.ObjectPath)
	if !ok {
		return
	}
	ifaces, ok := sig.Body[1].([]string)
	if !ok {
		return
	}
	for _, iface := range ifaces {
		if iface == mmdbus.ModemInterface {
			m.mu.Lock()
			delete(m.modems, path)
			m.mu.Unlock()
			m.logger.Debug("modem removed", "path", path)
			return
		}
	}
}
