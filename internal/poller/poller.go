package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/gwbridge/internal/decode"
	"github.com/jpalmerr/gwbridge/internal/store"
	"github.com/jpalmerr/gwbridge/internal/transport"
)

const (
	defaultInterval     = 20 * time.Second
	defaultRetryCeiling = 3

	// maxBackoffFactor caps the widened interval at 16x nominal when no
	// explicit cap is configured.
	maxBackoffFactor = 16
)

// State is the poller's position in its poll/retry state machine.
//
// Transitions: idle -> polling on each tick; polling -> idle on success
// or on failure below the ceiling; polling -> backoff once consecutive
// failures reach the ceiling; backoff -> idle on the first success.
type State int

const (
	// StateIdle means the poller is waiting for its next tick at the
	// nominal interval.
	StateIdle State = iota

	// StatePolling means a fetch/decode cycle is in flight.
	StatePolling

	// StateBackoff means consecutive failures reached the ceiling and
	// the effective interval is widened until a success resets it.
	StateBackoff
)

// String returns a short name for the state, used in logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateBackoff:
		return "backoff"
	default:
		return "unknown"
	}
}

// Fetcher abstracts the transport client so tests can drive the poller
// with scripted outcomes. [transport.Client] satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Config carries the poller's tuning knobs. Zero values select the
// defaults: 20s interval, retry ceiling 3, backoff cap 16x interval.
type Config struct {
	// Interval is the nominal time between poll cycles.
	Interval time.Duration

	// RetryCeiling is the number of consecutive failed cycles tolerated
	// before the poller enters backoff.
	RetryCeiling int

	// BackoffCap bounds the widened interval while in backoff.
	BackoffCap time.Duration

	// Logger receives poll outcomes. Defaults to slog.Default().
	Logger *slog.Logger

	// OnReading callbacks are invoked on the poller goroutine after each
	// successful publish. They must return quickly.
	OnReading []func(*decode.Reading)
}

// Poller repeatedly fetches and decodes gateway state on its own clock
// and publishes each successful reading into the cache slot.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Poller struct {
	fetch      Fetcher
	decoder    decode.Decoder
	slot       *store.Slot
	interval   time.Duration
	ceiling    int
	backoffCap time.Duration
	logger     *slog.Logger
	onReading  []func(*decode.Reading)

	mu       sync.Mutex
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	state    State
	failures int

	wg sync.WaitGroup
}

// New creates a [Poller] wired to a fetcher, a decoder, and the slot it
// publishes into. Exactly one Poller exists per gateway.
func New(fetch Fetcher, decoder decode.Decoder, slot *store.Slot, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.RetryCeiling <= 0 {
		cfg.RetryCeiling = defaultRetryCeiling
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = maxBackoffFactor * cfg.Interval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Poller{
		fetch:      fetch,
		decoder:    decoder,
		slot:       slot,
		interval:   cfg.Interval,
		ceiling:    cfg.RetryCeiling,
		backoffCap: cfg.BackoffCap,
		logger:     cfg.Logger,
		onReading:  cfg.OnReading,
		state:      StateIdle,
	}
}

// State returns the poller's current state machine position.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Failures returns the current consecutive-failure count.
func (p *Poller) Failures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}

// Start begins the polling loop in a background goroutine.
//
// Start is non-blocking. The poller polls once immediately, then on a
// timer at the effective interval (nominal, or widened while in
// backoff). Start is idempotent; if Stop was called first, Start is a
// no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		p.pollOnce(ctx)

		timer := time.NewTimer(p.nextInterval())
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				p.pollOnce(ctx)
				timer.Reset(p.nextInterval())
			}
		}
	}()
}

// Stop halts the timer loop and waits for any in-flight cycle to
// observe the cancellation, itself bounded by the transport's read
// timeout. Stop is idempotent and safe to call before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		if p.cancel != nil {
			p.cancel()
		}
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// nextInterval returns the time until the next poll: nominal when idle,
// exponentially widened while in backoff.
func (p *Poller) nextInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateBackoff {
		return p.interval
	}

	widened := p.interval
	for i := p.ceiling; i < p.failures && widened < p.backoffCap; i++ {
		widened *= 2
	}
	if widened > p.backoffCap {
		widened = p.backoffCap
	}
	return widened
}

// pollOnce runs one poll cycle: fetch, decode, publish. On failure it
// applies one immediate retry while below the ceiling, then records the
// failed cycle. The cache slot is untouched on failure so the last good
// reading remains available, subject to its staleness boundary.
func (p *Poller) pollOnce(ctx context.Context) {
	p.setState(StatePolling)

	reading, err := p.attempt(ctx)
	if err != nil && ctx.Err() == nil && p.Failures() < p.ceiling {
		p.logger.Debug("poll failed, retrying within tick", "error", err)
		reading, err = p.attempt(ctx)
	}

	if err != nil {
		p.recordFailure(err)
		return
	}

	p.slot.Publish(reading)
	p.recordSuccess(reading)

	for _, cb := range p.onReading {
		cb(reading)
	}
}

// attempt performs one fetch-then-decode round trip.
func (p *Poller) attempt(ctx context.Context) (*decode.Reading, error) {
	body, err := p.fetch.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return p.safeDecode(body, time.Now())
}

// safeDecode calls the decoder with panic recovery. Decoders are
// pluggable; a panicking decoder is logged with a correlation ID and the
// full stack, and the cycle is treated as a decode failure.
func (p *Poller) safeDecode(body []byte, capturedAt time.Time) (reading *decode.Reading, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			p.logger.Error("decoder panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			reading = nil
			err = &decode.Error{
				Kind: decode.ErrMalformed,
				Err:  fmt.Errorf("decoder panic (correlation_id: %s)", correlationID),
			}
		}
	}()
	return p.decoder.Decode(body, capturedAt)
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Poller) recordSuccess(r *decode.Reading) {
	p.mu.Lock()
	recovered := p.failures > 0
	p.failures = 0
	p.state = StateIdle
	p.mu.Unlock()

	if recovered {
		p.logger.Info("gateway polling recovered", "fields", len(r.Fields))
	} else {
		p.logger.Debug("gateway poll succeeded", "fields", len(r.Fields))
	}
}

func (p *Poller) recordFailure(err error) {
	p.mu.Lock()
	p.failures++
	failures := p.failures
	entering := p.state != StateBackoff && failures >= p.ceiling
	if failures >= p.ceiling {
		p.state = StateBackoff
	} else {
		p.state = StateIdle
	}
	p.mu.Unlock()

	var terr *transport.Error
	var derr *decode.Error
	switch {
	case errors.As(err, &terr):
		p.logger.Warn("gateway poll failed",
			"layer", "transport", "kind", terr.Kind.String(),
			"consecutive_failures", failures, "error", err)
	case errors.As(err, &derr):
		p.logger.Warn("gateway poll failed",
			"layer", "decode", "kind", derr.Kind.String(),
			"consecutive_failures", failures, "error", err)
	default:
		p.logger.Warn("gateway poll failed",
			"consecutive_failures", failures, "error", err)
	}

	if entering {
		p.logger.Info("entering backoff", "consecutive_failures", failures,
			"next_interval", p.nextInterval().String())
	}
}
