// Package mmdbus is the D-Bus boundary toward the modem management and
// network management services.
//
// It holds the well-known bus names, interfaces and error names of
// ModemManager and NetworkManager, a narrow Conn interface satisfied by
// *dbus.Conn so the bus can be faked in tests, and typed property helpers
// over dbus.BusObject.
//
// Nothing in this package interprets telemetry; it only moves values
// across the bus. Decoding lives in pkg/telemetry, session logic in
// pkg/cellular.
package mmdbus
