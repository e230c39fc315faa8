// Package store provides the single-slot cache that hands readings
// across clock domains.
//
// This package is internal to gwbridge. A [Slot] holds at most one
// reading: the most recent successful decode. The poller is the only
// writer; the pipeline adapter reads on the host's independent clock.
// The slot's mutex is scoped entirely inside this package, so no lock is
// ever held across network I/O and a reader can never observe a
// partially-written reading.
//
// A reading is never "un-published": it is either superseded by a newer
// one or ages past the caller's staleness boundary, at which point
// [Slot.Current] reports it as absent while the data quietly remains
// until the next publish.
package store
