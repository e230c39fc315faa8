package gwbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jpalmerr/gwbridge/internal/decode"
	"github.com/jpalmerr/gwbridge/internal/poller"
	"github.com/jpalmerr/gwbridge/internal/store"
	"github.com/jpalmerr/gwbridge/internal/transport"
)

const (
	defaultPollInterval   = 20 * time.Second
	defaultConnectTimeout = 2 * time.Second
	defaultReadTimeout    = 4 * time.Second
	defaultRetryCeiling   = 3
	defaultMaxAge         = 60 * time.Second
	defaultStartupGrace   = 30 * time.Second
	defaultPath           = "/get_livedata_info"
)

// Bridge connects a LAN weather gateway to a host data pipeline.
//
// A Bridge owns one background polling loop per gateway and a
// single-reading cache. The host consumes the cache on its own clock
// through one of two entry points:
//
//   - driver mode: [Bridge.NextRecord] builds a fresh record per host
//     emission cycle from the latest reading
//   - service mode: [Bridge.Augment] merges the latest reading's fields
//     into a record produced by another source
//
// Neither entry point ever performs network I/O or blocks on the
// gateway; a slow or dead device only ever makes fields absent.
//
// The typical lifecycle is:
//
//	b, err := gwbridge.New("192.168.1.10")
//	if err != nil {
//	    slog.Error("failed to create bridge", "error", err)
//	    os.Exit(1)
//	}
//
//	b.Start(ctx)
//	defer b.Stop()
//
//	for { // host emission loop
//	    rec := b.NextRecord(ctx)
//	    emit(rec)
//	}
type Bridge struct {
	gatewayURL   string
	pollInterval time.Duration
	maxAge       time.Duration
	startupGrace time.Duration
	logger       *slog.Logger
	fieldMap     FieldMap

	client *transport.Client
	slot   *store.Slot
	poll   *poller.Poller

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a [Bridge] for the gateway at the given address.
//
// The address is the device's IP or hostname, optionally with a port
// ("192.168.1.10", "gw1100.lan:8080") or a full http:// URL. Exactly one
// Bridge should exist per gateway.
//
// Options have sensible defaults: 20s poll interval, 2s/4s
// connect/read timeouts, retry ceiling 3, 60s staleness boundary, 30s
// startup grace, the built-in live-data decoder, and [DefaultFieldMap].
func New(address string, opts ...Option) (*Bridge, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errors.New("gateway address is required")
	}

	cfg := &bridgeConfig{
		path:           defaultPath,
		pollInterval:   defaultPollInterval,
		connectTimeout: defaultConnectTimeout,
		readTimeout:    defaultReadTimeout,
		retryCeiling:   defaultRetryCeiling,
		maxAge:         defaultMaxAge,
		startupGrace:   defaultStartupGrace,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	gatewayURL, err := buildGatewayURL(address, cfg.path)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	fieldMap := cfg.fieldMap
	if fieldMap == nil {
		fieldMap = DefaultFieldMap()
	}
	fieldMap = fieldMap.merge(cfg.fieldMapExt)

	var decoder decode.Decoder = decode.NewLiveData()
	if cfg.decodeFn != nil {
		decoder = decodeFuncAdapter(cfg.decodeFn)
	}

	slot := store.NewSlot()
	client := transport.NewClient(gatewayURL, cfg.connectTimeout, cfg.readTimeout)

	var onReading []func(*decode.Reading)
	for _, cb := range cfg.callbacks {
		cb := cb
		onReading = append(onReading, func(r *decode.Reading) {
			cb(fromInternalReading(r))
		})
	}

	poll := poller.New(client, decoder, slot, poller.Config{
		Interval:     cfg.pollInterval,
		RetryCeiling: cfg.retryCeiling,
		Logger:       logger,
		OnReading:    onReading,
	})

	return &Bridge{
		gatewayURL:   gatewayURL,
		pollInterval: cfg.pollInterval,
		maxAge:       cfg.maxAge,
		startupGrace: cfg.startupGrace,
		logger:       logger,
		fieldMap:     fieldMap,
		client:       client,
		slot:         slot,
		poll:         poll,
	}, nil
}

// GatewayURL returns the full URL the bridge polls.
func (b *Bridge) GatewayURL() string {
	return b.gatewayURL
}

// Start launches the background polling loop. Start is non-blocking and
// idempotent; cancel the context or call [Bridge.Stop] to halt polling.
//
// Both entry points work before Start is called: they simply observe an
// empty cache and produce records without device fields.
func (b *Bridge) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		b.logger.Info("gwbridge starting",
			"gateway", b.gatewayURL,
			"poll_interval", b.pollInterval.String(),
			"staleness_boundary", b.maxAge.String(),
		)
		b.poll.Start(ctx)
	})
}

// Stop halts the polling loop, waits for any in-flight poll cycle to
// observe the stop signal (bounded by the read timeout), and releases
// the transport's connections. Stop is idempotent.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.poll.Stop()
		b.client.Close()
		b.logger.Info("gwbridge stopped", "gateway", b.gatewayURL)
	})
}

// NextRecord builds one host record from the latest reading: driver
// mode's per-emission-cycle entry point.
//
// Before the first reading has ever been published, NextRecord waits for
// it, bounded by the startup grace period and ctx. After that it never
// blocks. If no reading is available (none yet, or the cached one is
// past the staleness boundary), the returned record simply carries no
// device fields; absence is not an error at this boundary, so NextRecord
// never fails.
func (b *Bridge) NextRecord(ctx context.Context) *Record {
	select {
	case <-b.slot.First():
		// at least one reading has ever been published; no waiting
	default:
		if b.startupGrace > 0 {
			b.logger.Debug("waiting for first gateway reading",
				"startup_grace", b.startupGrace.String())
			select {
			case <-b.slot.First():
			case <-time.After(b.startupGrace):
				b.logger.Warn("no gateway reading within startup grace",
					"startup_grace", b.startupGrace.String())
			case <-ctx.Done():
			}
		}
	}

	reading, ok := b.slot.Current(b.maxAge)
	if !ok {
		return NewRecord(time.Now())
	}

	rec := NewRecord(reading.CapturedAt)
	b.mergeInto(rec, reading)
	return rec
}

// Augment merges the latest reading's fields into a host-owned record:
// service mode's entry point.
//
// Augment performs a non-blocking cache read and returns immediately
// regardless of gateway reachability; it never performs network I/O.
// Fields the host already populated are never overwritten. The record
// is returned for convenience, possibly unmodified.
func (b *Bridge) Augment(rec *Record) *Record {
	if rec == nil {
		return nil
	}

	reading, ok := b.slot.Current(b.maxAge)
	if !ok {
		return rec
	}

	b.mergeInto(rec, reading)
	return rec
}

// mergeInto copies mapped reading fields into the record, skipping
// fields the record already carries.
func (b *Bridge) mergeInto(rec *Record, reading *decode.Reading) {
	if rec.Fields == nil {
		rec.Fields = make(map[string]any)
	}
	for native, val := range reading.Fields {
		host, mapped := b.fieldMap[native]
		if !mapped {
			continue
		}
		if _, exists := rec.Fields[host]; exists {
			continue
		}
		switch val.Kind {
		case decode.KindNumber:
			rec.Fields[host] = val.Num
		case decode.KindText:
			rec.Fields[host] = val.Text
		}
	}
}

// buildGatewayURL normalizes a bare address into the full poll URL.
func buildGatewayURL(address, path string) (string, error) {
	raw := address
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid gateway address %q: %w", address, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q for gateway address", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid gateway address %q: no host", address)
	}
	if parsed.Path == "" || parsed.Path == "/" {
		parsed.Path = path
	}
	return parsed.String(), nil
}

// decodeFuncAdapter lets a user-supplied [DecodeFunc] satisfy the
// internal decoder contract.
type decodeFuncAdapter DecodeFunc

func (fn decodeFuncAdapter) Decode(body []byte, capturedAt time.Time) (*decode.Reading, error) {
	r, err := fn(body, capturedAt)
	if err != nil {
		return nil, err
	}
	return toInternalReading(r), nil
}

// fromInternalReading converts the polling layer's reading into the SDK
// representation handed to callbacks.
func fromInternalReading(r *decode.Reading) Reading {
	fields := make(map[string]Value, len(r.Fields))
	for k, v := range r.Fields {
		switch v.Kind {
		case decode.KindNumber:
			fields[k] = NumberValue(v.Num)
		case decode.KindText:
			fields[k] = TextValue(v.Text)
		}
	}
	return Reading{CapturedAt: r.CapturedAt, Fields: fields}
}

// toInternalReading converts an SDK reading produced by a custom
// decoder into the polling layer's representation.
func toInternalReading(r Reading) *decode.Reading {
	fields := make(map[string]decode.Value, len(r.Fields))
	for k, v := range r.Fields {
		switch v.Kind {
		case KindNumber:
			fields[k] = decode.Number(v.Num)
		case KindText:
			fields[k] = decode.Text(v.Text)
		}
	}
	return &decode.Reading{CapturedAt: r.CapturedAt, Fields: fields}
}
