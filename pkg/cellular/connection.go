package cellular

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/ezcellular/ezcellular-go/pkg/mmdbus"
)

// TrafficObserver receives cumulative traffic counters, in bytes, as
// the network management service refreshes them.
type TrafficObserver func(rxBytes, txBytes uint64)

// IPConfig is the address configuration of one IP family of a bearer.
type IPConfig struct {
	// Address is the interface address.
	Address string

	// Prefix is the subnet prefix length.
	Prefix uint32

	// Gateway is the default gateway address, possibly empty.
	Gateway string

	// DNS holds the resolver addresses, possibly empty.
	DNS []string

	// MTU is the link MTU, 0 when not reported.
	MTU uint32
}

// Connection is a typed view over one bearer object. Obtain instances
// via Modem.Connect, Modem.Connections or Modem.ActiveConnection. A
// Connection becomes invalid together with its modem.
//
// Traffic statistics come from the network management service, which
// owns the bearer's network interface, not from the modem service.
type Connection struct {
	conn   mmdbus.Conn
	obj    dbus.BusObject
	path   dbus.ObjectPath
	logger *slog.Logger

	mu              sync.Mutex
	signals         chan *dbus.Signal
	devicePath      dbus.ObjectPath
	trafficObserver TrafficObserver
}

func newConnection(conn mmdbus.Conn, path dbus.ObjectPath, logger *slog.Logger) *Connection {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Connection{
		conn:   conn,
		obj:    conn.Object(mmdbus.ModemManagerService, path),
		path:   path,
		logger: logger,
	}
}

// Path returns the bearer's object path.
func (c *Connection) Path() dbus.ObjectPath {
	return c.path
}

// Active reports whether the bearer currently carries a data session.
func (c *Connection) Active() (bool, error) {
	return mmdbus.GetBool(c.obj, mmdbus.BearerInterface, "Connected")
}

// LinuxInterface returns the name of the network interface backing the
// bearer, e.g. "wwan0".
func (c *Connection) LinuxInterface() (string, error) {
	return mmdbus.GetString(c.obj, mmdbus.BearerInterface, "Interface")
}

// APN returns the access point name the bearer was created with.
func (c *Connection) APN() (string, error) {
	props, err := mmdbus.GetVariantMap(c.obj, mmdbus.BearerInterface, "Properties")
	if err != nil {
		return "", err
	}
	apn, _ := props["apn"].(string)
	return apn, nil
}

// IPTypeConfigured returns the IP family the bearer was created with.
func (c *Connection) IPTypeConfigured() (IPType, error) {
	props, err := mmdbus.GetVariantMap(c.obj, mmdbus.BearerInterface, "Properties")
	if err != nil {
		return IPTypeUnknown, err
	}
	ipType, _ := props["ip-type"].(uint32)
	return IPType(ipType), nil
}

// IPv4Config returns the bearer's IPv4 configuration, or nil when the
// family is not configured.
func (c *Connection) IPv4Config() (*IPConfig, error) {
	return c.ipConfig("Ip4Config")
}

// IPv6Config returns the bearer's IPv6 configuration, or nil when the
// family is not configured.
func (c *Connection) IPv6Config() (*IPConfig, error) {
	return c.ipConfig("Ip6Config")
}

// ipConfig reads one of the bearer's IP configuration dictionaries.
// A dictionary without an address means the family is unconfigured and
// yields (nil, nil), not an error.
func (c *Connection) ipConfig(prop string) (*IPConfig, error) {
	raw, err := mmdbus.GetVariantMap(c.obj, mmdbus.BearerInterface, prop)
	if err != nil {
		return nil, err
	}
	address, ok := raw["address"].(string)
	if !ok || address == "" {
		return nil, nil
	}

	cfg := &IPConfig{Address: address}
	if prefix, ok := raw["prefix"].(uint32); ok {
		cfg.Prefix = prefix
	}
	if gateway, ok := raw["gateway"].(string); ok {
		cfg.Gateway = gateway
	}
	if mtu, ok := raw["mtu"].(uint32); ok {
		cfg.MTU = mtu
	}
	for _, key := range []string{"dns1", "dns2", "dns3"} {
		if dns, ok := raw[key].(string); ok && dns != "" {
			cfg.DNS = append(cfg.DNS, dns)
		}
	}
	return cfg, nil
}

// Disconnect tears down the data session. The bearer object stays
// around and can be reconnected by the modem.
func (c *Connection) Disconnect() error {
	if call := c.obj.Call(mmdbus.BearerInterface+".Disconnect", 0); call.Err != nil {
		return fmt.Errorf("disconnect bearer: %w", call.Err)
	}
	return nil
}

// --- traffic statistics ---

// deviceObject resolves the network management service's device object
// for the bearer's network interface.
func (c *Connection) deviceObject() (dbus.BusObject, dbus.ObjectPath, error) {
	iface, err := c.LinuxInterface()
	if err != nil {
		return nil, "", err
	}

	nm := c.conn.Object(mmdbus.NetworkManagerService, mmdbus.NetworkManagerPath)
	var devicePath dbus.ObjectPath
	call := nm.Call(mmdbus.NetworkManagerInterface+".GetDeviceByIpIface", 0, iface)
	if call.Err != nil {
		if errors.Is(call.Err, dbus.ErrClosed) {
			return nil, "", ErrConnectionLost
		}
		return nil, "", fmt.Errorf("resolve device for %q: %w", iface, call.Err)
	}
	if err := call.Store(&devicePath); err != nil {
		return nil, "", fmt.Errorf("resolve device for %q: %w", iface, err)
	}
	return c.conn.Object(mmdbus.NetworkManagerService, devicePath), devicePath, nil
}

// TrafficStats returns the cumulative byte counters of the bearer's
// network interface.
func (c *Connection) TrafficStats() (rxBytes, txBytes uint64, err error) {
	dev, _, err := c.deviceObject()
	if err != nil {
		return 0, 0, err
	}
	rxBytes, err = mmdbus.GetUint64(dev, mmdbus.DeviceStatisticsInterface, "RxBytes")
	if err != nil {
		return 0, 0, err
	}
	txBytes, err = mmdbus.GetUint64(dev, mmdbus.DeviceStatisticsInterface, "TxBytes")
	if err != nil {
		return 0, 0, err
	}
	return rxBytes, txBytes, nil
}

// ObserveTrafficStats registers a callback for traffic counter updates
// at the given refresh interval. Registering a new observer replaces
// the previous one. The callback runs on the dispatch goroutine.
func (c *Connection) ObserveTrafficStats(observer TrafficObserver, refreshMs uint32) error {
	dev, devicePath, err := c.deviceObject()
	if err != nil {
		return err
	}
	err = dev.SetProperty(mmdbus.DeviceStatisticsInterface+".RefreshRateMs",
		dbus.MakeVariant(refreshMs))
	if err != nil {
		return fmt.Errorf("set statistics refresh rate: %w", err)
	}
	if err := c.ensureDispatch(devicePath); err != nil {
		return err
	}

	c.mu.Lock()
	c.trafficObserver = observer
	c.mu.Unlock()
	return nil
}

func (c *Connection) ensureDispatch(devicePath dbus.ObjectPath) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.signals != nil {
		return nil
	}

	err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(devicePath),
		dbus.WithMatchInterface(mmdbus.PropertiesInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	)
	if err != nil {
		return fmt.Errorf("match statistics changes: %w", err)
	}

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	c.signals = ch
	c.devicePath = devicePath
	go c.dispatch(ch)
	return nil
}

func (c *Connection) dispatch(ch <-chan *dbus.Signal) {
	for sig := range ch {
		c.mu.Lock()
		devicePath := c.devicePath
		observer := c.trafficObserver
		c.mu.Unlock()

		if observer == nil || sig.Path != devicePath ||
			sig.Name != mmdbus.SignalPropertiesChanged || len(sig.Body) < 2 {
			continue
		}
		iface, ok := sig.Body[0].(string)
		if !ok || iface != mmdbus.DeviceStatisticsInterface {
			continue
		}
		changed, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			continue
		}

		rx, haveRx := changed["RxBytes"].Value().(uint64)
		tx, haveTx := changed["TxBytes"].Value().(uint64)
		if !haveRx && !haveTx {
			continue
		}
		if !haveRx || !haveTx {
			// Counters usually change together; fill the missing one
			// with a fresh read rather than reporting zero.
			currentRx, currentTx, err := c.TrafficStats()
			if err != nil {
				c.logger.Debug("dropping traffic update", "error", err)
				continue
			}
			if !haveRx {
				rx = currentRx
			}
			if !haveTx {
				tx = currentTx
			}
		}
		observer(rx, tx)
	}
}
