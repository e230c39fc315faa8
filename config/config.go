// Package config provides YAML configuration parsing for gwbridge.
//
// This package enables running gwbridge as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	gateway:
//	  address: 192.168.1.10
//	  path: /get_livedata_info
//
//	poll_interval: 20s
//	connect_timeout: 2s
//	read_timeout: 4s
//	retry_ceiling: 3
//	staleness_boundary: 60s
//	startup_grace: 30s
//
//	field_map:
//	  piezoRain.0x0E.val: rainRate
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minPollInterval is the minimum allowed polling interval for production
// configs. This prevents accidental DoS of a small embedded device with
// overly aggressive polling.
const minPollInterval = 1 * time.Second

// Config is the root configuration structure for gwbridge.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Gateway identifies the device to poll.
	Gateway GatewayConfig `yaml:"gateway"`

	// PollInterval is the time between poll cycles.
	// Accepts duration strings like "20s", "1m", "500ms".
	// Defaults to 20s.
	PollInterval Duration `yaml:"poll_interval"`

	// ConnectTimeout bounds establishing the TCP connection.
	// Defaults to 2s.
	ConnectTimeout Duration `yaml:"connect_timeout"`

	// ReadTimeout bounds the whole request once connected.
	// Defaults to 4s.
	ReadTimeout Duration `yaml:"read_timeout"`

	// RetryCeiling is the number of consecutive failed cycles tolerated
	// before the poller widens its interval. Defaults to 3.
	RetryCeiling int `yaml:"retry_ceiling"`

	// StalenessBoundary is the maximum age after which a cached reading
	// is treated as absent. Defaults to 60s.
	StalenessBoundary Duration `yaml:"staleness_boundary"`

	// StartupGrace bounds how long the first record emission may wait
	// for the first reading. Defaults to 30s; "0s" disables the wait.
	StartupGrace Duration `yaml:"startup_grace"`

	// FieldMap adds or overrides field map entries, keyed by
	// gateway-native field key. Merged over the built-in defaults.
	FieldMap map[string]string `yaml:"field_map"`

	// LogLevel is the minimum log level: debug, info, warn, error.
	// Defaults to info.
	LogLevel string `yaml:"log_level"`

	// startupGraceSet records whether startup_grace appeared in the
	// YAML, so an explicit "0s" can be told apart from absence.
	startupGraceSet bool
}

// GatewayConfig identifies the device to poll.
type GatewayConfig struct {
	// Address is the device's IP or hostname, optionally with a port
	// ("192.168.1.10", "gw1100.lan:8080") or a full http:// URL.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Address string `yaml:"address"`

	// Path is the request path polled on the device.
	// Defaults to "/get_livedata_info".
	Path string `yaml:"path"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the gateway address.
// Defaults are applied for every timing knob left unset.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// detect an explicit startup_grace before defaulting it, since
	// "0s" is meaningful (disables the wait)
	var probe struct {
		StartupGrace *string `yaml:"startup_grace"`
	}
	if err := yaml.Unmarshal(data, &probe); err == nil && probe.StartupGrace != nil {
		cfg.startupGraceSet = true
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(20 * time.Second)
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = Duration(2 * time.Second)
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = Duration(4 * time.Second)
	}
	if cfg.RetryCeiling == 0 {
		cfg.RetryCeiling = 3
	}
	if cfg.StalenessBoundary == 0 {
		cfg.StalenessBoundary = Duration(60 * time.Second)
	}
	if cfg.StartupGrace == 0 && !cfg.startupGraceSet {
		cfg.StartupGrace = Duration(30 * time.Second)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if strings.TrimSpace(c.Gateway.Address) == "" {
		return fmt.Errorf("gateway.address is required")
	}

	expanded, err := expandEnvVars(c.Gateway.Address)
	if err != nil {
		return fmt.Errorf("gateway.address: %w", err)
	}
	c.Gateway.Address = expanded

	addr := c.Gateway.Address
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	parsed, err := url.Parse(addr)
	if err != nil {
		return fmt.Errorf("gateway.address: invalid address: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("gateway.address: scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("gateway.address: no host in %q", c.Gateway.Address)
	}

	if c.Gateway.Path != "" && !strings.HasPrefix(c.Gateway.Path, "/") {
		return fmt.Errorf("gateway.path must start with /, got %q", c.Gateway.Path)
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.PollInterval.Duration() > time.Hour {
		return fmt.Errorf("poll_interval must not exceed 1h, got %s", c.PollInterval.Duration())
	}

	if c.ConnectTimeout.Duration() <= 0 {
		return fmt.Errorf("connect_timeout must be positive, got %s", c.ConnectTimeout.Duration())
	}
	if c.ReadTimeout.Duration() <= 0 {
		return fmt.Errorf("read_timeout must be positive, got %s", c.ReadTimeout.Duration())
	}

	if c.RetryCeiling < 1 {
		return fmt.Errorf("retry_ceiling must be at least 1, got %d", c.RetryCeiling)
	}

	if c.StalenessBoundary.Duration() <= 0 {
		return fmt.Errorf("staleness_boundary must be positive, got %s", c.StalenessBoundary.Duration())
	}
	if c.StartupGrace.Duration() < 0 {
		return fmt.Errorf("startup_grace cannot be negative, got %s", c.StartupGrace.Duration())
	}

	for native, host := range c.FieldMap {
		if strings.TrimSpace(host) == "" {
			return fmt.Errorf("field_map[%s]: host field name cannot be empty", native)
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}
