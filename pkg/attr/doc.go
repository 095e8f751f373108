// Package attr provides the attribute bag underlying all telemetry records.
//
// Cellular management services report telemetry as loosely-typed key/value
// maps in which any field may be missing. A Bag preserves exactly that
// semantic: a key that the service did not report is absent from the bag,
// which is distinct from a key that is present with a zero value.
//
// # Value Types
//
// A Bag stores a closed set of value types:
//   - string
//   - bool
//   - int32, int64
//   - uint32, uint64
//   - float64
//   - *Bag (nested record)
//
// Insert rejects anything else. Readers use Get for required fields (absence
// is an error) and GetOrDefault for optional ones (absence falls back).
//
// # Lifecycle
//
// Bags are constructed once per telemetry response by a decoder and are
// treated as immutable afterwards. They are not safe for concurrent
// mutation, but concurrent reads of a fully-constructed bag are fine.
package attr
