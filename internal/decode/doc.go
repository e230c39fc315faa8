// Package decode turns raw gateway payloads into normalized readings.
//
// This package is internal to gwbridge and owns the payload boundary.
// The main components are:
//
//   - [Reading]: one immutable snapshot of decoded sensor state
//   - [Value]: a tagged field value (number or text); absence of a key in
//     Reading.Fields is the only representation of a missing field, so
//     downstream merge logic can never confuse "zero" with "missing"
//   - [Decoder]: the pluggable decode contract
//   - [LiveData]: the shipped decoder for the gateway's live-data JSON
//     document
//
// Structural failures (malformed document, unsupported shape) are fatal
// to the whole payload and reported as [*Error]. A single field whose
// value is outside its declared valid range is dropped from the Reading
// instead; one bad sensor must not invalidate an otherwise valid payload.
package decode
