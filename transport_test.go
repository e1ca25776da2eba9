package netbird

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

// newTestClient spins up an httptest server and a client pointed at it with
// retries disabled, so failure-path tests stay fast. Tests that exercise
// retries build their own Config.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewFromSources(FromValues(Partial{
		APIKey:     strptr("nb-test-token"),
		BaseURL:    strptr(server.URL),
		Timeout:    durptr(5 * time.Second),
		MaxRetries: intptr(0),
		RetryDelay: durptr(time.Millisecond),
	}))
	if err != nil {
		t.Fatalf("NewFromSources: %v", err)
	}
	t.Cleanup(client.Close)

	return client, server
}

func TestTransportSendsAuthHeaders(t *testing.T) {
	t.Parallel()

	var gotAuth, gotAccept, gotAgent string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`[]`))
	}))

	if _, err := client.Peers.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}

	if gotAuth != "Token nb-test-token" {
		t.Errorf("Authorization = %q, want Token scheme", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
	if gotAgent != userAgent {
		t.Errorf("User-Agent = %q, want %q", gotAgent, userAgent)
	}
}

func TestTransportMapsErrorStatus(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"peer not found","code":404}`))
	}))

	_, err := client.Peers.Get(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("Get: got %v, want not-found error", err)
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v does not unwrap to *Error", err)
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "peer not found" {
		t.Errorf("Message = %q, want server-provided message", apiErr.Message)
	}
	if len(apiErr.Body) == 0 {
		t.Error("Body is empty, want raw response attached")
	}
}

func TestTransportEmptyBodyVersusNull(t *testing.T) {
	t.Parallel()

	var body atomic.Value
	body.Store("")
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := body.Load().(string); s != "" {
			w.Write([]byte(s))
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))

	raw, err := client.transport.Do(context.Background(), http.MethodDelete, "/peers/p1", nil, nil)
	if err != nil {
		t.Fatalf("Do with empty body: %v", err)
	}
	if raw != nil {
		t.Errorf("empty body: raw = %q, want nil", raw)
	}

	body.Store("null")
	raw, err = client.transport.Do(context.Background(), http.MethodGet, "/peers/p1", nil, nil)
	if err != nil {
		t.Fatalf("Do with null body: %v", err)
	}
	if string(raw) != "null" {
		t.Errorf("null body: raw = %q, want JSON null preserved", raw)
	}
}

func TestTransportInvalidJSONSuccess(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>load balancer splash page</html>`))
	}))

	_, err := client.transport.Do(context.Background(), http.MethodGet, "/peers", nil, nil)
	if !IsServer(err) {
		t.Fatalf("got %v, want server error for non-JSON 2xx body", err)
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && len(apiErr.Body) == 0 {
		t.Error("Body is empty, want raw payload for debugging")
	}
}

func TestTransportNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewFromSources(FromValues(Partial{
		APIKey:     strptr("nb-test-token"),
		BaseURL:    strptr(url),
		MaxRetries: intptr(0),
	}))
	if err != nil {
		t.Fatalf("NewFromSources: %v", err)
	}

	_, err = client.Peers.List(context.Background())
	if !IsNetwork(err) {
		t.Fatalf("got %v, want network error for refused connection", err)
	}
}

func TestTransportTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewFromSources(FromValues(Partial{
		APIKey:     strptr("nb-test-token"),
		BaseURL:    strptr(server.URL),
		Timeout:    durptr(50 * time.Millisecond),
		MaxRetries: intptr(0),
	}))
	if err != nil {
		t.Fatalf("NewFromSources: %v", err)
	}

	if _, err = client.Peers.List(context.Background()); !IsTimeout(err) {
		t.Fatalf("got %v, want timeout error", err)
	}
}

func TestTransportContextCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Peers.List(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled to remain observable", err)
	}
}

func TestTransportRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode([]Peer{{ID: "p1", Name: "laptop"}})
	}))
	t.Cleanup(server.Close)

	client, err := NewWithConfig(&Config{
		APIKey:     "nb-test-token",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		RetryDelay: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}

	peers, err := client.Peers.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(peers) != 1 || peers[0].ID != "p1" {
		t.Errorf("peers = %+v, want the recovered listing", peers)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3 (initial + 2 retries)", calls.Load())
	}
}

func TestTransportDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"name is required","code":400}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewWithConfig(&Config{
		APIKey:     "nb-test-token",
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}

	if _, err = client.Groups.Create(context.Background(), GroupCreate{Name: "x"}); !IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want exactly 1 (no retry on 4xx)", calls.Load())
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "peers", want: "/api/peers"},
		{in: "/peers", want: "/api/peers"},
		{in: "api/peers", want: "/api/peers"},
		{in: "/api/peers", want: "/api/peers"},
		{in: "  peers/p1  ", want: "/api/peers/p1"},
		{in: "//peers//p1", want: "/api/peers/p1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := normalizeEndpoint(tt.in); got != tt.want {
				t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
