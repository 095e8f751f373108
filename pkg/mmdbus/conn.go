package mmdbus

import (
	"github.com/godbus/dbus/v5"
)

// Conn is the slice of *dbus.Conn the cellular packages depend on.
// Tests inject fakes; production code uses System.
type Conn interface {
	// Object returns a handle to the object at path on the named service.
	Object(dest string, path dbus.ObjectPath) dbus.BusObject

	// Signal registers a channel to receive matched signals.
	// The bus delivers a copy of each matched signal to every
	// registered channel.
	Signal(ch chan<- *dbus.Signal)

	// RemoveSignal unregisters a previously registered channel.
	RemoveSignal(ch chan<- *dbus.Signal)

	// AddMatchSignal installs a server-side signal match rule.
	AddMatchSignal(options ...dbus.MatchOption) error

	// RemoveMatchSignal removes a previously installed match rule.
	RemoveMatchSignal(options ...dbus.MatchOption) error

	// Close closes the bus connection.
	Close() error
}

// Compile-time check that the real connection satisfies Conn.
var _ Conn = (*dbus.Conn)(nil)

// System connects to the system bus.
func System() (Conn, error) {
	return dbus.SystemBus()
}
