package mmdbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// getProperty fetches iface.prop from obj and asserts its Go type.
func getProperty[T any](obj dbus.BusObject, iface, prop string) (T, error) {
	var zero T
	v, err := obj.GetProperty(iface + "." + prop)
	if err != nil {
		return zero, fmt.Errorf("get %s.%s: %w", iface, prop, err)
	}
	t, ok := v.Value().(T)
	if !ok {
		return zero, fmt.Errorf("property %s.%s: unexpected type %T", iface, prop, v.Value())
	}
	return t, nil
}

// GetString reads a string property.
func GetString(obj dbus.BusObject, iface, prop string) (string, error) {
	return getProperty[string](obj, iface, prop)
}

// GetStrings reads a string array property.
func GetStrings(obj dbus.BusObject, iface, prop string) ([]string, error) {
	return getProperty[[]string](obj, iface, prop)
}

// GetBool reads a boolean property.
func GetBool(obj dbus.BusObject, iface, prop string) (bool, error) {
	return getProperty[bool](obj, iface, prop)
}

// GetUint32 reads an unsigned 32-bit property.
func GetUint32(obj dbus.BusObject, iface, prop string) (uint32, error) {
	return getProperty[uint32](obj, iface, prop)
}

// GetInt32 reads a signed 32-bit property.
func GetInt32(obj dbus.BusObject, iface, prop string) (int32, error) {
	return getProperty[int32](obj, iface, prop)
}

// GetUint64 reads an unsigned 64-bit property.
func GetUint64(obj dbus.BusObject, iface, prop string) (uint64, error) {
	return getProperty[uint64](obj, iface, prop)
}

// GetObjectPath reads an object path property.
func GetObjectPath(obj dbus.BusObject, iface, prop string) (dbus.ObjectPath, error) {
	return getProperty[dbus.ObjectPath](obj, iface, prop)
}

// GetObjectPaths reads an object path array property.
func GetObjectPaths(obj dbus.BusObject, iface, prop string) ([]dbus.ObjectPath, error) {
	return getProperty[[]dbus.ObjectPath](obj, iface, prop)
}

// GetVariantMap reads an a{sv} property and unwraps the variants.
func GetVariantMap(obj dbus.BusObject, iface, prop string) (map[string]any, error) {
	m, err := getProperty[map[string]dbus.Variant](obj, iface, prop)
	if err != nil {
		return nil, err
	}
	return UnwrapVariantMap(m), nil
}

// UnwrapVariantMap strips the variant wrappers from an a{sv} map.
func UnwrapVariantMap(m map[string]dbus.Variant) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Value()
	}
	return out
}

// UnwrapVariantMaps strips the variant wrappers from a list of a{sv} maps.
func UnwrapVariantMaps(ms []map[string]dbus.Variant) []map[string]any {
	out := make([]map[string]any, 0, len(ms))
	for _, m := range ms {
		out = append(out, UnwrapVariantMap(m))
	}
	return out
}
