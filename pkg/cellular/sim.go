package cellular

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/ezcellular/ezcellular-go/pkg/mmdbus"
)

// SIM is a typed view over one SIM card object. Obtain instances via
// Modem.ActiveSIM. A SIM becomes invalid together with its modem.
type SIM struct {
	obj  dbus.BusObject
	path dbus.ObjectPath
}

func newSIM(conn mmdbus.Conn, path dbus.ObjectPath) *SIM {
	return &SIM{
		obj:  conn.Object(mmdbus.ModemManagerService, path),
		path: path,
	}
}

// Path returns the SIM's object path.
func (s *SIM) Path() dbus.ObjectPath {
	return s.path
}

// Active reports whether this SIM slot is the active one.
func (s *SIM) Active() (bool, error) {
	return mmdbus.GetBool(s.obj, mmdbus.SIMInterface, "Active")
}

// ICCID returns the SIM card's serial number.
func (s *SIM) ICCID() (string, error) {
	return mmdbus.GetString(s.obj, mmdbus.SIMInterface, "SimIdentifier")
}

// IMSI returns the subscriber identity.
func (s *SIM) IMSI() (string, error) {
	return mmdbus.GetString(s.obj, mmdbus.SIMInterface, "Imsi")
}

// HomePLMN returns the PLMN of the SIM's home operator.
func (s *SIM) HomePLMN() (string, error) {
	return mmdbus.GetString(s.obj, mmdbus.SIMInterface, "OperatorIdentifier")
}

// OperatorName returns the name of the SIM's home operator.
func (s *SIM) OperatorName() (string, error) {
	return mmdbus.GetString(s.obj, mmdbus.SIMInterface, "OperatorName")
}

// SendPIN unlocks the SIM with its PIN.
//
// A rejected code yields ErrWrongCredential and a malformed one
// ErrBadCredentialFormat; both are safe to retry, within the SIM's
// attempt limit. Anything else is reported as a SIMError.
func (s *SIM) SendPIN(pin string) error {
	call := s.obj.Call(mmdbus.SIMInterface+".SendPin", 0, pin)
	return mapUnlockError("send PIN", call.Err)
}

// SendPUK unlocks a PUK-blocked SIM and assigns it a new PIN.
// The same error mapping as SendPIN applies.
func (s *SIM) SendPUK(puk, newPIN string) error {
	call := s.obj.Call(mmdbus.SIMInterface+".SendPuk", 0, puk, newPIN)
	return mapUnlockError("send PUK", call.Err)
}

// mapUnlockError classifies an unlock failure by the service's error name.
func mapUnlockError(op string, err error) error {
	if err == nil {
		return nil
	}
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		switch dbusErr.Name {
		case mmdbus.ErrorIncorrectPassword:
			return fmt.Errorf("%s: %w", op, ErrWrongCredential)
		case mmdbus.ErrorIncorrectParameters:
			return fmt.Errorf("%s: %w", op, ErrBadCredentialFormat)
		}
	}
	return &SIMError{Op: op, Message: err.Error()}
}
