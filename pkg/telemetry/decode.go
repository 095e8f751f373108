package telemetry

import (
	"strconv"

	"github.com/ezcellular/ezcellular-go/pkg/attr"
)

// Raw is a raw telemetry map as delivered by the transport layer,
// with variant wrappers already removed.
type Raw = map[string]any

// insertFloat copies a float field from raw into the bag, if present.
func insertFloat(b *attr.Bag, raw Raw, key string) {
	insertFloatAs(b, raw, key, key)
}

// insertFloatAs copies a float field from raw into the bag under a
// different name, if present.
func insertFloatAs(b *attr.Bag, raw Raw, from, as string) {
	if v, ok := raw[from].(float64); ok {
		_ = b.Insert(as, v)
	}
}

// insertBool copies a bool field from raw into the bag, if present.
func insertBool(b *attr.Bag, raw Raw, key string) {
	if v, ok := raw[key].(bool); ok {
		_ = b.Insert(key, v)
	}
}

// insertUint32 copies a uint32 field from raw into the bag, if present.
func insertUint32(b *attr.Bag, raw Raw, key string) {
	if v, ok := raw[key].(uint32); ok {
		_ = b.Insert(key, v)
	}
}

// insertHexAs parses a hexadecimal string field from raw and stores it as
// uint32 under a different name. A missing or malformed field leaves the
// bag untouched; malformed identifiers are absent, not an error.
func insertHexAs(b *attr.Bag, raw Raw, from, as string) {
	s, ok := raw[from].(string)
	if !ok {
		return
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return
	}
	_ = b.Insert(as, uint32(v))
}

// insertHex parses a hexadecimal string field from raw and stores it as
// uint32 under the same name, if present and well-formed.
func insertHex(b *attr.Bag, raw Raw, key string) {
	insertHexAs(b, raw, key, key)
}

// SplitPLMN splits a PLMN identifier into MCC and MNC.
// The MCC is always the first three characters, the MNC the remainder.
func SplitPLMN(plmn string) (mcc, mnc string) {
	if len(plmn) < 3 {
		return plmn, ""
	}
	return plmn[:3], plmn[3:]
}
