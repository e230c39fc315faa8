package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httptrace"
	"testing"
	"time"
)

// TestClient_Fetch verifies the happy path: a single GET returning the
// raw body bytes.
func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("request method = %v, want GET", r.Method)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"common_list":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second, 4*time.Second)
	defer client.Close()

	body, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil", err)
	}
	if got, want := string(body), `{"common_list":[]}`; got != want {
		t.Errorf("Fetch() body = %q, want %q", got, want)
	}
}

// TestClient_Fetch_UnexpectedStatus verifies that non-2xx responses are
// classified as ErrUnexpectedStatus with the status code preserved.
func TestClient_Fetch_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second, 4*time.Second)
	defer client.Close()

	_, err := client.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch() error = nil, want unexpected status error")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("Fetch() error type = %T, want *Error", err)
	}
	if terr.Kind != ErrUnexpectedStatus {
		t.Errorf("error kind = %v, want %v", terr.Kind, ErrUnexpectedStatus)
	}
	if terr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("error status code = %d, want %d", terr.StatusCode, http.StatusServiceUnavailable)
	}
}

// TestClient_Fetch_Timeout verifies that a server that never answers within
// the read timeout yields an ErrTimeout classification.
func TestClient_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, 50*time.Millisecond)
	defer client.Close()

	start := time.Now()
	_, err := client.Fetch(context.Background())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Fetch() error = nil, want timeout error")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("Fetch() error type = %T, want *Error", err)
	}
	if terr.Kind != ErrTimeout {
		t.Errorf("error kind = %v, want %v", terr.Kind, ErrTimeout)
	}

	// the fetch must respect its own deadline, not the server's
	if elapsed > 400*time.Millisecond {
		t.Errorf("Fetch() took %v, want well under the handler's 500ms sleep", elapsed)
	}
}

// TestClient_Fetch_ConnectionRefused verifies classification of a closed
// port as ErrConnectionRefused.
func TestClient_Fetch_ConnectionRefused(t *testing.T) {
	// start and immediately close a server to obtain a port that refuses
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := NewClient(addr, time.Second, 2*time.Second)
	defer client.Close()

	_, err := client.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch() error = nil, want connection refused error")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("Fetch() error type = %T, want *Error", err)
	}
	if terr.Kind != ErrConnectionRefused {
		t.Errorf("error kind = %v, want %v", terr.Kind, ErrConnectionRefused)
	}
}

// TestClient_Fetch_DNSFailure verifies classification of an unresolvable
// host as ErrDNS.
func TestClient_Fetch_DNSFailure(t *testing.T) {
	client := NewClient("http://gwbridge-no-such-host.invalid/get_livedata_info", time.Second, 2*time.Second)
	defer client.Close()

	_, err := client.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch() error = nil, want DNS error")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("Fetch() error type = %T, want *Error", err)
	}
	if terr.Kind != ErrDNS {
		t.Errorf("error kind = %v, want %v", terr.Kind, ErrDNS)
	}
}

// TestClient_ConnectionReuse verifies that sequential fetches against the
// same gateway reuse the pooled connection.
func TestClient_ConnectionReuse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second, 5*time.Second)
	defer client.Close()

	var reusedCount int
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				reusedCount++
			}
		},
	}

	const numRequests = 5

	for i := 0; i < numRequests; i++ {
		ctx := httptrace.WithClientTrace(context.Background(), trace)
		if _, err := client.Fetch(ctx); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}

	// all requests after the first should reuse the connection
	expectedMinReuse := numRequests - 2 // allow some tolerance
	if reusedCount < expectedMinReuse {
		t.Errorf("expected at least %d reused connections, got %d out of %d requests",
			expectedMinReuse, reusedCount, numRequests)
	}
}

// TestClient_Close verifies that Close() is idempotent and nil-safe, and
// that the client remains usable afterwards.
func TestClient_Close(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var nilClient *Client
	nilClient.Close() // must not panic

	client := NewClient(server.URL, time.Second, time.Second)
	client.Close()
	client.Close()

	if _, err := client.Fetch(context.Background()); err != nil {
		t.Errorf("Fetch() after Close failed: %v", err)
	}
}

// TestErrorKind_String pins the log-facing names of the error kinds.
func TestErrorKind_String(t *testing.T) {
	kinds := map[ErrorKind]string{
		ErrTimeout:           "timeout",
		ErrConnectionRefused: "connection_refused",
		ErrDNS:               "dns_failure",
		ErrUnexpectedStatus:  "unexpected_status",
		ErrOther:             "other",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
