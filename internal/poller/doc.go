// Package poller owns the gateway-side timing loop.
//
// This package is internal to gwbridge. The [Poller] runs one
// fetch-then-decode cycle per tick on its own clock, publishing each
// successful reading into the shared cache slot. It is the only
// component that performs network I/O, and it communicates with the
// host-facing adapter exclusively through the slot, so a slow or dead
// gateway can never stall the host's emission loop.
//
// Retry policy lives here, expressed as a small explicit state machine
// (idle, polling, backoff): one immediate in-tick retry while the
// consecutive-failure count is below the ceiling, then exponential
// widening of the poll interval up to a cap until a success resets it.
//
// Lifecycle follows the usual Start/Stop discipline: Start is
// non-blocking and idempotent, Stop cancels the loop, waits for any
// in-flight cycle (itself bounded by the transport's read timeout), and
// is safe to call multiple times or before Start.
package poller
