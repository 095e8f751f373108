package attr

import (
	"errors"
	"fmt"
)

// Bag errors.
var (
	// ErrMissingKey is returned by Get when the key is not present.
	ErrMissingKey = errors.New("attribute not present")

	// ErrTypeMismatch is returned by Get when the stored value has a
	// different type than requested.
	ErrTypeMismatch = errors.New("attribute type mismatch")

	// ErrDuplicateKey is returned by Insert when the key is already present.
	ErrDuplicateKey = errors.New("duplicate attribute key")

	// ErrUnsupportedType is returned by Insert for values outside the
	// closed value set.
	ErrUnsupportedType = errors.New("unsupported attribute value type")
)

// Bag is an insertion-ordered map from attribute name to a value of the
// closed variant set documented in the package comment.
//
// The zero value is not usable; create bags with New.
type Bag struct {
	keys   []string
	values map[string]any
}

// New creates an empty bag.
func New() *Bag {
	return &Bag{values: make(map[string]any)}
}

// Insert adds a key/value pair. Keys are unique; inserting a key twice
// fails with ErrDuplicateKey. Values outside the closed variant set fail
// with ErrUnsupportedType.
func (b *Bag) Insert(key string, value any) error {
	switch value.(type) {
	case string, bool, int32, int64, uint32, uint64, float64, *Bag:
		// supported
	default:
		return fmt.Errorf("%w: %q holds %T", ErrUnsupportedType, key, value)
	}
	if _, ok := b.values[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	b.keys = append(b.keys, key)
	b.values[key] = value
	return nil
}

// Has reports whether a value for key is present.
func (b *Bag) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Keys returns the present keys in insertion order.
func (b *Bag) Keys() []string {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	return keys
}

// Len returns the number of present attributes.
func (b *Bag) Len() int {
	return len(b.keys)
}

// Get returns the value stored under key.
// It fails with ErrMissingKey if the key is absent and with
// ErrTypeMismatch if the stored value is not of type T.
func Get[T any](b *Bag, key string) (T, error) {
	var zero T
	v, ok := b.values[key]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T, want %T", ErrTypeMismatch, key, v, zero)
	}
	return t, nil
}

// GetOrDefault returns the value stored under key, or fallback if the key
// is absent or the stored value is not of type T. It never fails.
func GetOrDefault[T any](b *Bag, key string, fallback T) T {
	v, err := Get[T](b, key)
	if err != nil {
		return fallback
	}
	return v
}
