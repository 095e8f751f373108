package cellular

// ModemState is the general state of a modem, as defined by the
// management service's modem state machine.
//
// The ordering is semantically meaningful: a feature that needs the modem
// to be at least registered checks state >= ModemStateRegistered.
type ModemState int32

const (
	// ModemStateFailed means the modem is unusable.
	ModemStateFailed ModemState = -1

	// ModemStateUnknown means the state is not known or reportable.
	ModemStateUnknown ModemState = 0

	// ModemStateInitializing means the modem is being initialized.
	ModemStateInitializing ModemState = 1

	// ModemStateLocked means the modem needs to be unlocked first.
	ModemStateLocked ModemState = 2

	// ModemStateDisabled means the modem is not enabled and powered down.
	ModemStateDisabled ModemState = 3

	// ModemStateDisabling means the modem is transitioning to disabled.
	ModemStateDisabling ModemState = 4

	// ModemStateEnabling means the modem is transitioning to enabled.
	ModemStateEnabling ModemState = 5

	// ModemStateEnabled means the modem is enabled but not registered.
	ModemStateEnabled ModemState = 6

	// ModemStateSearching means the modem is searching for a network.
	ModemStateSearching ModemState = 7

	// ModemStateRegistered means the modem is registered with a network.
	ModemStateRegistered ModemState = 8

	// ModemStateDisconnecting means the modem is tearing down a connection.
	ModemStateDisconnecting ModemState = 9

	// ModemStateConnecting means the modem is establishing a connection.
	ModemStateConnecting ModemState = 10

	// ModemStateConnected means a packet data connection is active.
	ModemStateConnected ModemState = 11
)

// String returns the state name.
func (s ModemState) String() string {
	switch s {
	case ModemStateFailed:
		return "FAILED"
	case ModemStateUnknown:
		return "UNKNOWN"
	case ModemStateInitializing:
		return "INITIALIZING"
	case ModemStateLocked:
		return "LOCKED"
	case ModemStateDisabled:
		return "DISABLED"
	case ModemStateDisabling:
		return "DISABLING"
	case ModemStateEnabling:
		return "ENABLING"
	case ModemStateEnabled:
		return "ENABLED"
	case ModemStateSearching:
		return "SEARCHING"
	case ModemStateRegistered:
		return "REGISTERED"
	case ModemStateDisconnecting:
		return "DISCONNECTING"
	case ModemStateConnecting:
		return "CONNECTING"
	case ModemStateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// PowerState is the power state of a modem.
type PowerState uint32

const (
	// PowerStateUnknown means the power state cannot be determined.
	PowerStateUnknown PowerState = 0

	// PowerStateOff means the modem is powered off.
	PowerStateOff PowerState = 1

	// PowerStateLow means the modem is in a low-power state (radio off).
	PowerStateLow PowerState = 2

	// PowerStateOn means the modem is fully powered.
	PowerStateOn PowerState = 3
)

// String returns the power state name.
func (s PowerState) String() string {
	switch s {
	case PowerStateOff:
		return "OFF"
	case PowerStateLow:
		return "LOW"
	case PowerStateOn:
		return "ON"
	default:
		return "UNKNOWN"
	}
}

// LockState details why a modem is in ModemStateLocked.
type LockState uint32

const (
	// LockStateUnknown means the lock state is not known yet.
	LockStateUnknown LockState = 0

	// LockStateUnlocked means the modem is usable.
	LockStateUnlocked LockState = 1

	// LockStatePinRequired means the SIM PIN is required.
	LockStatePinRequired LockState = 2

	// LockStatePin2Required means SIM PIN2 is required for some features;
	// the modem itself is usable.
	LockStatePin2Required LockState = 3

	// LockStatePukRequired means the SIM PUK is required.
	LockStatePukRequired LockState = 4

	// LockStatePuk2Required means SIM PUK2 is required.
	LockStatePuk2Required LockState = 5
)

// String returns the lock state name.
func (s LockState) String() string {
	switch s {
	case LockStateUnlocked:
		return "UNLOCKED"
	case LockStatePinRequired:
		return "PIN_REQUIRED"
	case LockStatePin2Required:
		return "PIN2_REQUIRED"
	case LockStatePukRequired:
		return "PUK_REQUIRED"
	case LockStatePuk2Required:
		return "PUK2_REQUIRED"
	default:
		return "UNKNOWN"
	}
}

// IPType selects the IP family of a bearer.
type IPType uint32

const (
	// IPTypeUnknown means no IP family was configured.
	IPTypeUnknown IPType = 0

	// IPTypeIPv4 is IPv4 only.
	IPTypeIPv4 IPType = 1 << 0

	// IPTypeIPv6 is IPv6 only.
	IPTypeIPv6 IPType = 1 << 1

	// IPTypeIPv4v6 is dual stack.
	IPTypeIPv4v6 IPType = 1 << 2
)

// String returns the IP type name.
func (t IPType) String() string {
	switch t {
	case IPTypeIPv4:
		return "IPV4"
	case IPTypeIPv6:
		return "IPV6"
	case IPTypeIPv4v6:
		return "IPV4V6"
	default:
		return "UNKNOWN"
	}
}
