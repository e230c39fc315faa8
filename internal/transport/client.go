package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits; a gateway is a single host, so the per-host
// numbers are what matter here
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 2
	defaultIdleConnTimeout     = 60 * time.Second
)

// ErrorKind classifies a transport failure.
//
// The polling layer treats every kind as retryable; the classification
// exists so logs and tests can distinguish a dead gateway from a
// misconfigured address.
type ErrorKind int

const (
	// ErrTimeout indicates the connect or read deadline expired.
	ErrTimeout ErrorKind = iota

	// ErrConnectionRefused indicates the gateway actively refused the
	// connection (wrong port, or the device's HTTP service is down).
	ErrConnectionRefused

	// ErrDNS indicates the gateway address failed to resolve.
	ErrDNS

	// ErrUnexpectedStatus indicates the gateway answered with a non-2xx
	// HTTP status.
	ErrUnexpectedStatus

	// ErrOther covers network failures that fit none of the above
	// (connection reset, route unreachable, malformed URL, ...).
	ErrOther
)

// String returns a short name for the error kind, used in logs.
func (k ErrorKind) String() string {
	switch k {
	case ErrTimeout:
		return "timeout"
	case ErrConnectionRefused:
		return "connection_refused"
	case ErrDNS:
		return "dns_failure"
	case ErrUnexpectedStatus:
		return "unexpected_status"
	default:
		return "other"
	}
}

// Error is a classified transport failure.
//
// Error wraps the underlying network error so callers can still use
// errors.Is/errors.As against the cause, while Kind gives a stable
// classification independent of the net package's error shapes.
type Error struct {
	Kind ErrorKind

	// StatusCode is set only for ErrUnexpectedStatus.
	StatusCode int

	// Err is the underlying cause. nil for ErrUnexpectedStatus.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == ErrUnexpectedStatus {
		return fmt.Sprintf("transport: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("transport: %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Client fetches raw payloads from a single gateway URL.
//
// Client wraps net/http with per-request timeouts applied via context,
// so the connect and read bounds are controlled by the caller's
// configuration rather than a global client timeout. One Client is
// intended per gateway; the connection pool is sized accordingly.
type Client struct {
	url         string
	readTimeout time.Duration
	httpClient  *http.Client
}

// NewClient creates a [Client] targeting the given URL.
//
// connectTimeout bounds TCP connection establishment; readTimeout bounds
// the whole request including reading the body. Both must be positive.
func NewClient(rawURL string, connectTimeout, readTimeout time.Duration) *Client {
	return &Client{
		url:         rawURL,
		readTimeout: readTimeout,
		httpClient:  &http.Client{
			// no default timeout - per-request timeouts via context
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false,
			},
		},
	}
}

// URL returns the target URL this client fetches from.
func (c *Client) URL() string {
	return c.url
}

// Fetch performs one HTTP GET round trip and returns the raw body.
//
// Exactly one outbound request is made per call; there is no retry here.
// On failure the returned error is always a [*Error] with a classified
// Kind. The body is limited to 1MB.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &Error{Kind: ErrOther, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: ErrUnexpectedStatus, StatusCode: resp.StatusCode}
	}

	// read body with size limit
	limitedReader := io.LimitReader(resp.Body, maxResponseBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to read response body: %w", err))
	}

	return body, nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times and on a nil receiver. After Close the
// client remains usable; new connections are established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// classify maps a network error onto the transport error taxonomy.
func classify(err error) *Error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: ErrDNS, Err: err}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &Error{Kind: ErrConnectionRefused, Err: err}
	}

	// context deadline and net-level timeouts both count as timeouts;
	// url.Error wraps either depending on where the deadline hit
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: ErrTimeout, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &Error{Kind: ErrTimeout, Err: err}
	}

	return &Error{Kind: ErrOther, Err: err}
}
