// Package transport provides the HTTP client used to fetch raw payloads
// from a LAN weather gateway.
//
// This package is internal to gwbridge and owns the network boundary: one
// outbound round trip per Fetch call, bounded by connect and read timeouts,
// with failures classified into a small error taxonomy ([ErrTimeout],
// [ErrConnectionRefused], [ErrDNS], [ErrUnexpectedStatus]).
//
// The client never retries; retry policy belongs to the polling layer.
// Response bodies are limited to 1MB.
package transport
