package gwbridge

import "time"

// Record is the host-pipeline record shape the bridge emits into or
// augments. The bridge only ever creates minimal records or adds fields
// to records it is handed; the host owns the record's lifecycle.
type Record struct {
	// Time is the record's timestamp. In driver mode it is the capture
	// time of the reading the record was built from, or the emission
	// time when no reading was available.
	Time time.Time

	// Fields maps host field names (e.g. "outTemp", "rainRate") to
	// values: float64 for numeric sensors, string for textual ones.
	Fields map[string]any
}

// NewRecord creates an empty [Record] stamped with t.
func NewRecord(t time.Time) *Record {
	return &Record{Time: t, Fields: make(map[string]any)}
}

// Has reports whether the record already carries the given field.
func (r *Record) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// Set stores a field value, replacing any existing value.
func (r *Record) Set(field string, value any) {
	if r.Fields == nil {
		r.Fields = make(map[string]any)
	}
	r.Fields[field] = value
}
