package cellular

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezcellular/ezcellular-go/pkg/mmdbus"
)

const (
	modemPath0 = dbus.ObjectPath("/org/freedesktop/ModemManager1/Modem/0")
	modemPath1 = dbus.ObjectPath("/org/freedesktop/ModemManager1/Modem/1")
	modemPath2 = dbus.ObjectPath("/org/freedesktop/ModemManager1/Modem/2")
)

func newTestManager(t *testing.T, bus *fakeConn) *Manager {
	t.Helper()
	m, err := NewManagerWithConn(bus, nil)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManagerEnumerate(t *testing.T) {
	bus := newFakeBus().withManagedModems(modemPath1, modemPath0)
	m := newTestManager(t, bus)

	assert.True(t, m.ModemsAvailable())
	modems := m.AvailableModems()
	require.Len(t, modems, 2)
	assert.Equal(t, modemPath0, modems[0].Path())
	assert.Equal(t, modemPath1, modems[1].Path())
	assert.Equal(t, modemPath0, m.AnyModem().Path())
}

func TestManagerEmpty(t *testing.T) {
	bus := newFakeBus().withManagedModems()
	m := newTestManager(t, bus)

	assert.False(t, m.ModemsAvailable())
	assert.Empty(t, m.AvailableModems())
	assert.Nil(t, m.AnyModem())
}

func TestManagerServiceUnavailable(t *testing.T) {
	// No manager object registered, enumeration fails.
	bus := newFakeBus()
	_, err := NewManagerWithConn(bus, nil)
	require.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestManagerVersion(t *testing.T) {
	bus := newFakeBus().withManagedModems()
	bus.object(mmdbus.ModemManagerPath).
		setProp(mmdbus.ModemManagerInterface, "Version", "1.22.0")
	m := newTestManager(t, bus)

	version, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.22.0", version)
}

func TestManagerModemByIMEI(t *testing.T) {
	bus := newFakeBus().withManagedModems(modemPath0, modemPath1)
	// Modem 0 has no readable identity, it gets skipped.
	bus.object(modemPath1).setProp(mmdbus.Modem3GPPInterface, "Imei", "861364040000001")
	m := newTestManager(t, bus)

	found := m.ModemByIMEI("861364040000001")
	require.NotNil(t, found)
	assert.Equal(t, modemPath1, found.Path())

	assert.Nil(t, m.ModemByIMEI("000000000000000"))
}

func TestManagerModemAddedAndRemoved(t *testing.T) {
	bus := newFakeBus().withManagedModems()
	m := newTestManager(t, bus)

	bus.emitModemAdded(modemPath0)
	require.Eventually(t, m.ModemsAvailable, time.Second, time.Millisecond,
		"added modem not picked up")

	bus.emitModemRemoved(modemPath0)
	require.Eventually(t, func() bool { return !m.ModemsAvailable() },
		time.Second, time.Millisecond, "removed modem not dropped")
}

func TestManagerIgnoresNonModemObjects(t *testing.T) {
	bus := newFakeBus().withManagedModems()
	m := newTestManager(t, bus)

	bus.emit(&dbus.Signal{
		Path: mmdbus.ModemManagerPath,
		Name: mmdbus.SignalInterfacesAdded,
		Body: []any{
			dbus.ObjectPath("/org/freedesktop/ModemManager1/SIM/0"),
			map[string]map[string]dbus.Variant{mmdbus.SIMInterface: {}},
		},
	})
	// A SIM announcement must not land in the modem registry. Use a
	// second, observable event as the synchronization point.
	bus.emitModemAdded(modemPath0)
	require.Eventually(t, m.ModemsAvailable, time.Second, time.Millisecond)
	assert.Len(t, m.AvailableModems(), 1)
}

func TestManagerAwaitAnyModem(t *testing.T) {
	bus := newFakeBus().withManagedModems()
	m := newTestManager(t, bus)

	future := m.AwaitModem(AnyIMEI)
	bus.emitModemAdded(modemPath0)

	modem, err := future.Wait()
	require.NoError(t, err)
	assert.Equal(t, modemPath0, modem.Path())
}

func TestManagerAwaitByIMEI(t *testing.T) {
	bus := newFakeBus().withManagedModems()
	bus.object(modemPath1).setProp(mmdbus.Modem3GPPInterface, "Imei", "861364040000001")
	bus.object(modemPath2).setProp(mmdbus.Modem3GPPInterface, "Imei", "861364040000002")
	m := newTestManager(t, bus)

	future := m.AwaitModem("861364040000002")
	// The first announcement carries the wrong identity and is skipped.
	bus.emitModemAdded(modemPath1)
	bus.emitModemAdded(modemPath2)

	modem, err := future.Wait()
	require.NoError(t, err)
	assert.Equal(t, modemPath2, modem.Path())
	assert.Len(t, m.AvailableModems(), 2)
}

func TestManagerAwaitPreemption(t *testing.T) {
	bus := newFakeBus().withManagedModems()
	bus.object(modemPath0).setProp(mmdbus.Modem3GPPInterface, "Imei", "861364040000000")
	m := newTestManager(t, bus)

	first := m.AwaitModem(AnyIMEI)
	second := m.AwaitModem("861364040000000")

	_, err := first.Wait()
	require.ErrorIs(t, err, ErrAwaitCancelled)

	bus.emitModemAdded(modemPath0)
	modem, err := second.Wait()
	require.NoError(t, err)
	assert.Equal(t, modemPath0, modem.Path())
}

func TestManagerCloseCancelsAwait(t *testing.T) {
	bus := newFakeBus().withManagedModems()
	m := newTestManager(t, bus)

	future := m.AwaitModem(AnyIMEI)
	require.NoError(t, m.Close())

	_, err := future.Wait()
	require.ErrorIs(t, err, ErrConnectionLost)
}

func TestManagerResetModem(t *testing.T) {
	bus := newFakeBus().withManagedModems(modemPath0)
	bus.object(modemPath0).
		setProp(mmdbus.Modem3GPPInterface, "Imei", "861364040000000").
		handle(mmdbus.ModemInterface+".Reset", func(args ...any) ([]any, error) {
			// The service drops the old object and announces a new one.
			go func() {
				bus.emitModemRemoved(modemPath0)
				bus.object(modemPath1).setProp(mmdbus.Modem3GPPInterface,
					"Imei", "861364040000000")
				bus.emitModemAdded(modemPath1)
			}()
			return nil, nil
		})
	m := newTestManager(t, bus)

	modem := m.AnyModem()
	require.NotNil(t, modem)

	replacement, err := m.ResetModem(modem)
	require.NoError(t, err)
	assert.Equal(t, modemPath1, replacement.Path())

	require.Eventually(t, func() bool { return len(m.AvailableModems()) == 1 },
		time.Second, time.Millisecond)
	assert.Equal(t, modemPath1, m.AvailableModems()[0].Path())
}
