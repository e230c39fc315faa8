package config

import (
	"log/slog"

	"github.com/jpalmerr/gwbridge"
)

// BuildOptions converts parsed configuration into SDK options for
// [gwbridge.New]. The gateway address itself is passed to New directly;
// everything else travels as options.
func BuildOptions(cfg *Config, logger *slog.Logger) []gwbridge.Option {
	opts := []gwbridge.Option{
		gwbridge.WithPollInterval(cfg.PollInterval.Duration()),
		gwbridge.WithTimeouts(cfg.ConnectTimeout.Duration(), cfg.ReadTimeout.Duration()),
		gwbridge.WithRetryCeiling(cfg.RetryCeiling),
		gwbridge.WithStalenessBoundary(cfg.StalenessBoundary.Duration()),
		gwbridge.WithStartupGrace(cfg.StartupGrace.Duration()),
	}

	if cfg.Gateway.Path != "" {
		opts = append(opts, gwbridge.WithPath(cfg.Gateway.Path))
	}

	if len(cfg.FieldMap) > 0 {
		ext := make(gwbridge.FieldMap, len(cfg.FieldMap))
		for native, host := range cfg.FieldMap {
			ext[native] = host
		}
		opts = append(opts, gwbridge.WithFieldMapExtensions(ext))
	}

	if logger != nil {
		opts = append(opts, gwbridge.WithLogger(logger))
	}

	return opts
}

// Level translates the configured log level into a slog.Level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
