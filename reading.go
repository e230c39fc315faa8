package gwbridge

import "time"

// ValueKind discriminates the two shapes a sensor field value can take.
type ValueKind int

const (
	// KindNumber is a numeric sensor value.
	KindNumber ValueKind = iota

	// KindText is a textual value, such as a sensor state word or a
	// firmware string.
	KindText
)

// Value is a tagged sensor field value: present-with-value by
// construction. A field that is missing simply has no entry in
// [Reading.Fields], so "zero" and "missing" can never be confused.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

// NumberValue wraps a float64 in a numeric [Value].
func NumberValue(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// TextValue wraps a string in a textual [Value].
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Reading is one immutable, fully-decoded snapshot of gateway sensor
// state. Readings are produced by the polling loop (or by a custom
// [DecodeFunc]) and superseded wholesale by the next successful poll;
// nothing mutates a Reading after creation.
type Reading struct {
	// CapturedAt is when the payload was fetched from the gateway.
	CapturedAt time.Time

	// Fields maps gateway-native keys to decoded values. Keys follow the
	// gateway's dotted naming (e.g. "common_list.0x02.val", "wh25.intemp");
	// see [DefaultFieldMap] for the translation to host field names.
	Fields map[string]Value
}

// DecodeFunc is the pluggable payload decode contract.
//
// A DecodeFunc parses one raw gateway payload into a [Reading] stamped
// with capturedAt. It is called once per poll cycle on the polling
// goroutine. Structural failures (malformed payload, bad checksum,
// unsupported format version) must return an error, which discards the
// whole cycle; a single implausible field value should instead be
// omitted from Fields so the rest of the payload survives.
//
// # Panic Safety
//
// DecodeFunc implementations are called within a panic recovery
// boundary. A panicking decoder fails that cycle with an error carrying
// a correlation ID; the full stack trace is logged. A misbehaving
// decoder cannot crash the polling loop.
//
// When no custom decoder is configured via [WithDecoder], the built-in
// decoder for the gateway's live-data JSON document is used.
type DecodeFunc func(body []byte, capturedAt time.Time) (Reading, error)
