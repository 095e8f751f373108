package mmdbus

import "github.com/godbus/dbus/v5"

// Standard D-Bus interfaces.
const (
	PropertiesInterface    = "org.freedesktop.DBus.Properties"
	ObjectManagerInterface = "org.freedesktop.DBus.ObjectManager"

	// Fully-qualified signal names as they appear in dbus.Signal.Name.
	SignalPropertiesChanged = PropertiesInterface + ".PropertiesChanged"
	SignalInterfacesAdded   = ObjectManagerInterface + ".InterfacesAdded"
	SignalInterfacesRemoved = ObjectManagerInterface + ".InterfacesRemoved"
)

// ModemManager service surface.
const (
	ModemManagerService   = "org.freedesktop.ModemManager1"
	ModemManagerInterface = "org.freedesktop.ModemManager1"

	ModemInterface         = "org.freedesktop.ModemManager1.Modem"
	Modem3GPPInterface     = "org.freedesktop.ModemManager1.Modem.Modem3gpp"
	ModemSignalInterface   = "org.freedesktop.ModemManager1.Modem.Signal"
	ModemLocationInterface = "org.freedesktop.ModemManager1.Modem.Location"
	ModemTimeInterface     = "org.freedesktop.ModemManager1.Modem.Time"
	ModemSimpleInterface   = "org.freedesktop.ModemManager1.Modem.Simple"
	BearerInterface        = "org.freedesktop.ModemManager1.Bearer"
	SIMInterface           = "org.freedesktop.ModemManager1.Sim"

	SignalModemStateChanged = ModemInterface + ".StateChanged"
)

// ModemManagerPath is the well-known object path of the manager object.
const ModemManagerPath = dbus.ObjectPath("/org/freedesktop/ModemManager1")

// ModemManager error names relevant to SIM unlocking.
const (
	ErrorIncorrectPassword   = "org.freedesktop.ModemManager1.Error.MobileEquipment.IncorrectPassword"
	ErrorIncorrectParameters = "org.freedesktop.ModemManager1.Error.MobileEquipment.IncorrectParameters"
)

// NetworkManager service surface (traffic statistics only).
const (
	NetworkManagerService     = "org.freedesktop.NetworkManager"
	NetworkManagerInterface   = "org.freedesktop.NetworkManager"
	DeviceStatisticsInterface = "org.freedesktop.NetworkManager.Device.Statistics"
)

// NetworkManagerPath is the well-known object path of the network manager.
const NetworkManagerPath = dbus.ObjectPath("/org/freedesktop/NetworkManager")

// LocationSource3GPPLacCi is the location source bit for 3GPP LAC/CI
// location reporting (MMModemLocationSource).
const LocationSource3GPPLacCi uint32 = 1 << 0
