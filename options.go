package gwbridge

import (
	"errors"
	"log/slog"
	"time"
)

// bridgeConfig holds mutable state during Bridge construction.
type bridgeConfig struct {
	path           string
	pollInterval   time.Duration
	connectTimeout time.Duration
	readTimeout    time.Duration
	retryCeiling   int
	maxAge         time.Duration
	startupGrace   time.Duration
	logger         *slog.Logger
	decodeFn       DecodeFunc
	fieldMap       FieldMap
	fieldMapExt    FieldMap
	callbacks      []func(Reading)
}

// Option is a function that configures a [Bridge] instance during
// construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*bridgeConfig) error

// WithPollInterval sets how often the gateway is polled.
//
// This is the bridge's own clock and is independent of the host's
// emission cadence. Defaults to 20 seconds.
//
// Returns an error if the duration is zero or negative.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *bridgeConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithTimeouts sets the transport's connect and read timeouts.
// Defaults are 2s connect, 4s read.
//
// Returns an error if either duration is zero or negative.
func WithTimeouts(connect, read time.Duration) Option {
	return func(cfg *bridgeConfig) error {
		if connect <= 0 || read <= 0 {
			return errors.New("timeouts must be positive")
		}
		cfg.connectTimeout = connect
		cfg.readTimeout = read
		return nil
	}
}

// WithRetryCeiling sets how many consecutive failed poll cycles are
// tolerated before the poller enters backoff and widens its interval.
// Defaults to 3.
//
// Returns an error if n is not positive.
func WithRetryCeiling(n int) Option {
	return func(cfg *bridgeConfig) error {
		if n <= 0 {
			return errors.New("retry ceiling must be positive")
		}
		cfg.retryCeiling = n
		return nil
	}
}

// WithStalenessBoundary sets the maximum age after which a cached
// reading is treated as absent by [Bridge.NextRecord] and
// [Bridge.Augment]. Defaults to 60 seconds.
//
// Returns an error if the duration is zero or negative.
func WithStalenessBoundary(d time.Duration) Option {
	return func(cfg *bridgeConfig) error {
		if d <= 0 {
			return errors.New("staleness boundary must be positive")
		}
		cfg.maxAge = d
		return nil
	}
}

// WithStartupGrace bounds how long [Bridge.NextRecord] may wait for the
// very first reading after startup. Once any reading has ever been
// published, NextRecord never waits again. Defaults to 30 seconds.
//
// A zero or negative duration disables the wait entirely.
func WithStartupGrace(d time.Duration) Option {
	return func(cfg *bridgeConfig) error {
		cfg.startupGrace = d
		return nil
	}
}

// WithPath sets the request path polled on the gateway.
// Defaults to "/get_livedata_info".
func WithPath(path string) Option {
	return func(cfg *bridgeConfig) error {
		if path == "" {
			return errors.New("path cannot be empty")
		}
		cfg.path = path
		return nil
	}
}

// WithLogger sets the logger used by the bridge and its polling loop.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *bridgeConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithDecoder replaces the built-in live-data decoder with a custom
// [DecodeFunc]. Use this for gateways speaking a different payload
// format; the polling, caching, and merge behavior is unchanged.
func WithDecoder(fn DecodeFunc) Option {
	return func(cfg *bridgeConfig) error {
		if fn == nil {
			return errors.New("decoder cannot be nil")
		}
		cfg.decodeFn = fn
		return nil
	}
}

// WithFieldMap replaces the default field map wholesale. Prefer
// [WithFieldMapExtensions] to adjust individual fields.
func WithFieldMap(m FieldMap) Option {
	return func(cfg *bridgeConfig) error {
		if len(m) == 0 {
			return errors.New("field map cannot be empty")
		}
		cfg.fieldMap = m
		return nil
	}
}

// WithFieldMapExtensions adds entries to (or overrides entries of) the
// field map, keyed by gateway-native field key.
//
// Example, surfacing the piezo rain rate as the host's rainRate:
//
//	gwbridge.WithFieldMapExtensions(gwbridge.FieldMap{
//	    "piezoRain.0x0E.val": "rainRate",
//	})
func WithFieldMapExtensions(m FieldMap) Option {
	return func(cfg *bridgeConfig) error {
		cfg.fieldMapExt = cfg.fieldMapExt.merge(m)
		return nil
	}
}

// WithReadingCallback registers an observer invoked on the polling
// goroutine after each successful poll. Callbacks must return quickly;
// they run between poll cycles, never on the host's emission path.
//
// Can be called multiple times to add multiple callbacks.
func WithReadingCallback(fn func(Reading)) Option {
	return func(cfg *bridgeConfig) error {
		if fn == nil {
			return errors.New("callback cannot be nil")
		}
		cfg.callbacks = append(cfg.callbacks, fn)
		return nil
	}
}
