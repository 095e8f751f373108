package cellular

import (
	"errors"
	"fmt"

	"github.com/ezcellular/ezcellular-go/pkg/telemetry"
)

// Package errors.
var (
	// ErrServiceUnavailable means the modem management service could not
	// be reached during registry construction. Fatal to the registry.
	ErrServiceUnavailable = errors.New("modem management service unavailable")

	// ErrAwaitCancelled resolves an await that was preempted by a newer one.
	ErrAwaitCancelled = errors.New("await cancelled: awaiting another modem")

	// ErrConnectionLost means the bus connection went away while
	// resolving a dependent object.
	ErrConnectionLost = errors.New("bus connection lost")

	// ErrNoLocation means the service reported no parsable 3GPP location.
	ErrNoLocation = errors.New("no 3GPP location reported")

	// ErrWrongCredential means the SIM rejected the PIN or PUK.
	// Recoverable: retry with the correct code.
	ErrWrongCredential = errors.New("incorrect PIN or PUK")

	// ErrBadCredentialFormat means the PIN or PUK was malformed.
	// Recoverable: retry with a well-formed code.
	ErrBadCredentialFormat = errors.New("invalid PIN or PUK format")

	// ErrUnsupportedTechnology is re-exported so callers of this package
	// can classify decode failures without importing pkg/telemetry.
	ErrUnsupportedTechnology = telemetry.ErrUnsupportedTechnology
)

// StateError reports a failed client-side precondition: an operation was
// attempted while the modem had not reached the required lifecycle state.
// Recoverable: retry once the modem reaches the required state.
type StateError struct {
	// Op names the rejected operation.
	Op string

	// Required is the minimum state the operation needs.
	Required ModemState

	// Actual is the state the modem was in.
	Actual ModemState
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s: modem state is %s, but needs to be at least %s",
		e.Op, e.Actual, e.Required)
}

// SIMError is a SIM unlock failure that is neither a wrong credential nor
// a malformed one. It carries the upstream error message.
type SIMError struct {
	// Op names the failed operation.
	Op string

	// Message is the upstream error message.
	Message string
}

// Error implements the error interface.
func (e *SIMError) Error() string {
	return fmt.Sprintf("failed to %s: %s", e.Op, e.Message)
}
