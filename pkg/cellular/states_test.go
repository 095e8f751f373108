package cellular

import "testing"

func TestModemStateOrdering(t *testing.T) {
	// The guard logic relies on the numeric ordering of the lifecycle.
	ordered := []ModemState{
		ModemStateFailed,
		ModemStateUnknown,
		ModemStateInitializing,
		ModemStateLocked,
		ModemStateDisabled,
		ModemStateDisabling,
		ModemStateEnabling,
		ModemStateEnabled,
		ModemStateSearching,
		ModemStateRegistered,
		ModemStateDisconnecting,
		ModemStateConnecting,
		ModemStateConnected,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("expected %s < %s", ordered[i-1], ordered[i])
		}
	}
}

func TestStateStrings(t *testing.T) {
	if got := ModemStateRegistered.String(); got != "REGISTERED" {
		t.Errorf("ModemStateRegistered.String() = %q", got)
	}
	if got := ModemState(99).String(); got != "UNKNOWN" {
		t.Errorf("ModemState(99).String() = %q", got)
	}
	if got := PowerStateLow.String(); got != "LOW" {
		t.Errorf("PowerStateLow.String() = %q", got)
	}
	if got := LockStatePukRequired.String(); got != "PUK_REQUIRED" {
		t.Errorf("LockStatePukRequired.String() = %q", got)
	}
	if got := IPTypeIPv4v6.String(); got != "IPV4V6" {
		t.Errorf("IPTypeIPv4v6.String() = %q", got)
	}
}

func TestStateErrorMessage(t *testing.T) {
	err := &StateError{Op: "access signal quality", Required: ModemStateRegistered, Actual: ModemStateEnabled}
	want := "cannot access signal quality: modem state is ENABLED, but needs to be at least REGISTERED"
	if err.Error() != want {
		t.Errorf("StateError.Error() = %q, want %q", err.Error(), want)
	}
}
