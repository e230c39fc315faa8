package decode

import (
	"fmt"
	"time"
)

// ValueKind discriminates the two value shapes a sensor field can carry.
type ValueKind int

const (
	// KindNumber is a numeric sensor value (temperature, humidity, ...).
	KindNumber ValueKind = iota

	// KindText is a textual value (firmware strings, sensor states that
	// the gateway reports as words).
	KindText
)

// Value is a tagged sensor field value.
//
// A Value is always present-with-value; absence is expressed by the key
// not existing in [Reading.Fields] at all. This keeps "0.0" and
// "missing" distinct without sentinel values.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

// Number wraps a float64 in a numeric [Value].
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// Text wraps a string in a textual [Value].
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Reading is one fully-decoded snapshot of gateway sensor state.
//
// A Reading is immutable after creation: it is produced once by a
// decoder, published wholesale into the cache slot, and superseded
// wholesale by the next successful Reading. Nothing mutates Fields
// after Decode returns.
type Reading struct {
	// CapturedAt is when the payload was fetched from the gateway.
	CapturedAt time.Time

	// Fields maps gateway-native dotted keys (e.g. "common_list.0x02.val",
	// "wh25.intemp") to their decoded values. A key that is missing was
	// either not reported by the gateway or dropped for being out of its
	// valid range.
	Fields map[string]Value
}

// Age returns how old the reading is relative to now.
func (r *Reading) Age(now time.Time) time.Duration {
	return now.Sub(r.CapturedAt)
}

// Decoder is the pluggable payload decode contract.
//
// Implementations parse one raw payload into a [Reading] stamped with
// capturedAt. Structural failures must be returned as [*Error]; a
// Decoder must never partially accept a structurally broken payload.
type Decoder interface {
	Decode(body []byte, capturedAt time.Time) (*Reading, error)
}

// ErrorKind classifies a structural decode failure.
type ErrorKind int

const (
	// ErrMalformed indicates the payload could not be parsed at all, or
	// parsed to a document with no usable sensor fields.
	ErrMalformed ErrorKind = iota

	// ErrChecksum indicates an integrity check defined by the wire format
	// failed. The shipped JSON decoder never produces this; it exists for
	// decoders of framed binary formats.
	ErrChecksum

	// ErrUnsupportedVersion indicates the payload parsed but has a shape
	// or version this decoder does not understand.
	ErrUnsupportedVersion
)

// String returns a short name for the error kind, used in logs.
func (k ErrorKind) String() string {
	switch k {
	case ErrMalformed:
		return "malformed"
	case ErrChecksum:
		return "checksum_mismatch"
	case ErrUnsupportedVersion:
		return "unsupported_version"
	default:
		return "unknown"
	}
}

// Error is a structural decode failure. The whole payload is discarded;
// the cycle's Reading is lost, never partially accepted.
type Error struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("decode: %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
