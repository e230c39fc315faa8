// Package gwbridge polls a LAN weather/environmental gateway over HTTP
// and delivers its sensor readings into a host application's periodic
// data pipeline.
//
// The bridge runs two independent clocks. A background poller fetches
// and decodes the gateway's live-data document on its own interval,
// caching the most recent successful reading. The host consumes that
// cache on its own emission interval through one of two modes:
//
//   - Driver mode: the bridge is the sole source of periodic records.
//     [Bridge.NextRecord] builds a fresh record per emission cycle.
//   - Service mode: another source produces the records and the bridge
//     augments them. [Bridge.Augment] merges the latest reading's
//     fields into a host-supplied record without overwriting anything
//     the host already set, and returns within microseconds regardless
//     of gateway reachability.
//
// The cache is a single atomically-replaced slot, so the host loop is
// never stalled by a slow or failing device: network failures only ever
// make fields absent, never raise errors at the host boundary.
//
// # Quick Start
//
// Driver mode, emitting one record per host cycle:
//
//	b, _ := gwbridge.New("192.168.1.10")
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	b.Start(ctx)
//	defer b.Stop()
//
//	for ctx.Err() == nil {
//	    rec := b.NextRecord(ctx)
//	    emit(rec) // host-owned
//	    time.Sleep(10 * time.Second)
//	}
//
// Service mode, augmenting records owned by another source:
//
//	rec := otherSource.Next()
//	b.Augment(rec)
//
// # Configuration
//
// gwbridge uses the functional options pattern:
//
//	b, err := gwbridge.New("192.168.1.10",
//	    gwbridge.WithPollInterval(20 * time.Second),
//	    gwbridge.WithStalenessBoundary(time.Minute),
//	    gwbridge.WithRetryCeiling(3),
//	    gwbridge.WithFieldMapExtensions(gwbridge.FieldMap{
//	        "piezoRain.0x0E.val": "rainRate",
//	    }),
//	)
//
// # Payload Decoding
//
// The built-in decoder understands the gateway's live-data JSON
// document and validates each field against a plausible-range table: a
// single out-of-range sensor value becomes an absent field, never a
// failed cycle. Gateways speaking a different format plug in via
// [WithDecoder]; see [DecodeFunc].
//
// # Architecture
//
// gwbridge consists of several internal packages (under internal/):
//
//   - transport: the HTTP client, one round trip per fetch, classified
//     error taxonomy
//   - decode: payload decoding into immutable readings
//   - store: the single-slot reading cache shared across clocks
//   - poller: the timing loop and its retry/backoff state machine
//
// The cmd/gwbridge CLI wraps the library for standalone use and manual
// verification against a live device.
package gwbridge
