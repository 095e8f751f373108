// Package cellular models the client side of a cellular modem managed by
// ModemManager over D-Bus.
//
// The Manager tracks modems as the management service announces and
// removes them, and hands out Modem sessions. A Modem is a typed facade
// over one remote modem object: identity properties, the modem lifecycle
// state machine with client-side precondition guards, actions (enable,
// power, connect, reset) and decoded telemetry (signal quality, cell
// location, cell lists). SIM and Connection are thin typed views over the
// corresponding SIM card and bearer objects.
//
// # Threading
//
// The Manager, and each Modem or Connection with observers installed,
// runs one dispatch goroutine that consumes bus signals. Observer
// callbacks registered via the Observe* methods execute on a dispatch
// goroutine, never on the caller's; observer bodies that touch caller
// state need their own synchronization. Await operations block the
// calling goroutine until resolved or preempted; no timeout is imposed
// here, so callers wrap them with their own deadlines as needed.
//
// Sessions are intended for single-owner use: property reads are safe to
// call repeatedly, action sequencing is the caller's responsibility.
package cellular
