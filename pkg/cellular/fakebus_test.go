package cellular

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/ezcellular/ezcellular-go/pkg/mmdbus"
)

// fakeConn is an in-memory bus for tests. Objects are registered up
// front; the test emits signals directly. Match rules are accepted but
// not evaluated, matching the dispatch loops' own filtering.
type fakeConn struct {
	mu       sync.Mutex
	objects  map[dbus.ObjectPath]*fakeObject
	channels []chan<- *dbus.Signal
	closed   bool
}

func newFakeBus() *fakeConn {
	return &fakeConn{objects: make(map[dbus.ObjectPath]*fakeObject)}
}

// object returns the fake object at path, creating it on first use.
func (c *fakeConn) object(path dbus.ObjectPath) *fakeObject {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.objects[path]
	if !ok {
		obj = &fakeObject{
			path:    path,
			props:   make(map[string]dbus.Variant),
			methods: make(map[string]fakeMethod),
		}
		c.objects[path] = obj
	}
	return obj
}

// withManagedModems installs the root manager object answering
// GetManagedObjects with the given paths as modems.
func (c *fakeConn) withManagedModems(paths ...dbus.ObjectPath) *fakeConn {
	managed := make(map[dbus.ObjectPath]map[string]map[string]dbus.Variant)
	for _, p := range paths {
		managed[p] = map[string]map[string]dbus.Variant{mmdbus.ModemInterface: {}}
	}
	c.object(mmdbus.ModemManagerPath).handle(
		mmdbus.ObjectManagerInterface+".GetManagedObjects",
		func(args ...any) ([]any, error) { return []any{managed}, nil },
	)
	return c
}

// emit delivers a signal to every registered channel, like the real bus.
func (c *fakeConn) emit(sig *dbus.Signal) {
	c.mu.Lock()
	channels := append([]chan<- *dbus.Signal(nil), c.channels...)
	c.mu.Unlock()
	for _, ch := range channels {
		ch <- sig
	}
}

// emitModemAdded announces a new modem object.
func (c *fakeConn) emitModemAdded(path dbus.ObjectPath) {
	c.emit(&dbus.Signal{
		Path: mmdbus.ModemManagerPath,
		Name: mmdbus.SignalInterfacesAdded,
		Body: []any{path, map[string]map[string]dbus.Variant{mmdbus.ModemInterface: {}}},
	})
}

// emitModemRemoved announces the removal of a modem object.
func (c *fakeConn) emitModemRemoved(path dbus.ObjectPath) {
	c.emit(&dbus.Signal{
		Path: mmdbus.ModemManagerPath,
		Name: mmdbus.SignalInterfacesRemoved,
		Body: []any{path, []string{mmdbus.ModemInterface}},
	})
}

func (c *fakeConn) Object(dest string, path dbus.ObjectPath) dbus.BusObject {
	return c.object(path)
}

func (c *fakeConn) Signal(ch chan<- *dbus.Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels = append(c.channels, ch)
}

func (c *fakeConn) RemoveSignal(ch chan<- *dbus.Signal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, registered := range c.channels {
		if registered == ch {
			c.channels = append(c.channels[:i], c.channels[i+1:]...)
			return
		}
	}
}

func (c *fakeConn) AddMatchSignal(options ...dbus.MatchOption) error    { return nil }
func (c *fakeConn) RemoveMatchSignal(options ...dbus.MatchOption) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	for _, ch := range c.channels {
		close(ch)
	}
	c.channels = nil
	return nil
}

type fakeMethod func(args ...any) ([]any, error)

// fakeObject is one scriptable remote object. Properties are keyed
// "iface.Prop", method handlers by their fully-qualified name.
type fakeObject struct {
	path dbus.ObjectPath

	mu      sync.Mutex
	props   map[string]dbus.Variant
	methods map[string]fakeMethod
	invoked []string
}

func (o *fakeObject) setProp(iface, prop string, value any) *fakeObject {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props[iface+"."+prop] = dbus.MakeVariant(value)
	return o
}

func (o *fakeObject) handle(method string, fn fakeMethod) *fakeObject {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.methods[method] = fn
	return o
}

// invocations returns the fully-qualified names of the methods called so
// far, in order.
func (o *fakeObject) invocations() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.invoked...)
}

func (o *fakeObject) Call(method string, flags dbus.Flags, args ...any) *dbus.Call {
	o.mu.Lock()
	o.invoked = append(o.invoked, method)
	fn, ok := o.methods[method]
	o.mu.Unlock()

	call := &dbus.Call{Method: method, Args: args}
	if !ok {
		call.Err = fmt.Errorf("no handler for %s on %s", method, o.path)
		return call
	}
	body, err := fn(args...)
	call.Body = body
	call.Err = err
	return call
}

func (o *fakeObject) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call {
	return o.Call(method, flags, args...)
}

func (o *fakeObject) Go(method string, flags dbus.Flags, ch chan *dbus.Call, args ...any) *dbus.Call {
	panic("not implemented")
}

func (o *fakeObject) GoWithContext(ctx context.Context, method string, flags dbus.Flags, ch chan *dbus.Call, args ...any) *dbus.Call {
	panic("not implemented")
}

func (o *fakeObject) AddMatchSignal(iface, member string, options ...dbus.MatchOption) *dbus.Call {
	return &dbus.Call{}
}

func (o *fakeObject) RemoveMatchSignal(iface, member string, options ...dbus.MatchOption) *dbus.Call {
	return &dbus.Call{}
}

func (o *fakeObject) GetProperty(p string) (dbus.Variant, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.props[p]
	if !ok {
		return dbus.Variant{}, fmt.Errorf("no property %s on %s", p, o.path)
	}
	return v, nil
}

func (o *fakeObject) StoreProperty(p string, value any) error {
	v, err := o.GetProperty(p)
	if err != nil {
		return err
	}
	return dbus.Store([]any{v.Value()}, value)
}

func (o *fakeObject) SetProperty(p string, v any) error {
	value := v
	if variant, ok := v.(dbus.Variant); ok {
		value = variant.Value()
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props[p] = dbus.MakeVariant(value)
	o.invoked = append(o.invoked, "Set:"+p)
	return nil
}

func (o *fakeObject) Destination() string {
	return mmdbus.ModemManagerService
}

func (o *fakeObject) Path() dbus.ObjectPath {
	return o.path
}
