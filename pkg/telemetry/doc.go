// Package telemetry decodes raw modem telemetry into typed records.
//
// The management service reports signal quality, cell location and cell
// lists as generic key/value maps whose shape depends on the current radio
// technology. This package turns those maps into Signal, Location and
// CellInfo records: each record carries an explicit Technology discriminant
// plus an attribute bag of the fields the service actually reported.
//
// # Partial Data
//
// Services routinely omit fields. Decoders never fail on a missing or
// malformed optional field; the field is simply absent from the record's
// bag. Only structural problems are errors: an unsupported radio
// technology (ErrUnsupportedTechnology) or an unparsable combined
// location string (ErrMalformedLocation).
//
// # Technologies
//
// LTE and NR5G are decoded into typed records. GSM and UMTS are recognized
// by the Technology mapping but have no record decoders yet.
package telemetry
