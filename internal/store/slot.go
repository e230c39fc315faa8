package store

import (
	"sync"
	"time"

	"github.com/jpalmerr/gwbridge/internal/decode"
)

// Slot is the single-reading cache cell shared between the poller and
// the pipeline adapter.
//
// Slot supports one writer and arbitrarily many concurrent readers. The
// reading is replaced atomically under the slot's own mutex; callers are
// never exposed to locking. Publish calls with an older capture
// timestamp than the current reading are ignored, so readers observe
// capture timestamps in non-decreasing order no matter what.
type Slot struct {
	mu      sync.RWMutex
	reading *decode.Reading

	firstOnce sync.Once
	first     chan struct{}
}

// NewSlot creates an empty [Slot].
func NewSlot() *Slot {
	return &Slot{first: make(chan struct{})}
}

// Publish replaces the cached reading.
//
// Only the poller calls Publish. A nil reading or one captured no later
// than the current reading is dropped; the slot only ever moves forward
// in time.
func (s *Slot) Publish(r *decode.Reading) {
	if r == nil {
		return
	}

	s.mu.Lock()
	if s.reading != nil && !r.CapturedAt.After(s.reading.CapturedAt) {
		s.mu.Unlock()
		return
	}
	s.reading = r
	s.mu.Unlock()

	s.firstOnce.Do(func() { close(s.first) })
}

// Current returns the cached reading if one exists and its age does not
// exceed maxAge. A maxAge of zero or less disables the staleness check.
//
// The returned reading is the shared immutable snapshot; callers must
// not mutate it.
func (s *Slot) Current(maxAge time.Duration) (*decode.Reading, bool) {
	s.mu.RLock()
	r := s.reading
	s.mu.RUnlock()

	if r == nil {
		return nil, false
	}
	if maxAge > 0 && r.Age(time.Now()) > maxAge {
		return nil, false
	}
	return r, true
}

// First returns a channel that is closed once the first reading has been
// published. It never closes if no poll ever succeeds; callers bound
// their wait with a context or timeout.
func (s *Slot) First() <-chan struct{} {
	return s.first
}
