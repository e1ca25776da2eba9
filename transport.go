package netbird

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-netbird/internal/httpclient"
	"github.com/lexfrei/go-netbird/internal/middleware"
	"github.com/lexfrei/go-netbird/internal/ratelimit"
	"github.com/lexfrei/go-netbird/internal/retry"
	"github.com/lexfrei/go-netbird/observability"
)

// Transport issues authenticated requests against the management API and
// maps every failure into the error taxonomy. All resource services are
// built on its contract and nothing else.
//
// A Transport holds no mutable state beyond the connection pool of the
// underlying http.Client, which is safe for concurrent use; calls can be
// issued from any number of goroutines. Blocking callers pass
// context.Background(); cooperative callers pass a cancellable context and
// cancellation drops the in-flight request, with retries checking the
// context between attempts.
type Transport struct {
	client  *httpclient.Client
	baseURL string
	timeout string
	logger  observability.Logger
}

func newTransport(cfg *Config) *Transport {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	mw := []httpclient.Middleware{
		middleware.Observability(logger, metrics),
		middleware.Retry(middleware.RetryConfig{
			MaxRetries:     cfg.MaxRetries,
			BaseDelay:      cfg.RetryDelay,
			AttemptTimeout: cfg.Timeout,
			Logger:         logger,
			Metrics:        metrics,
		}),
	}
	if cfg.RateLimitPerMinute > 0 {
		mw = append(mw, middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: ratelimit.NewRateLimiter(cfg.RateLimitPerMinute),
			Logger:  logger,
			Metrics: metrics,
		}))
	}
	mw = append(mw, middleware.TokenAuth(cfg.APIKey, userAgent))
	if cfg.InsecureSkipVerify {
		// TLS goes last: it replaces the base transport itself.
		mw = append(mw, middleware.TLSConfig(middleware.InsecureSkipVerify()))
	}

	opts := []httpclient.Option{httpclient.WithMiddleware(mw...)}
	if cfg.HTTPClient != nil {
		opts = append(opts, httpclient.WithHTTPClient(cfg.HTTPClient))
	}

	return &Transport{
		client:  httpclient.New(opts...),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout.String(),
		logger:  logger,
	}
}

// Do executes one API call and returns the decoded response body. An empty
// successful response (204-style delete) returns a nil RawMessage,
// distinguished from the JSON literal null. Every failure is an *Error from
// the taxonomy, except caller-initiated cancellation which surfaces the
// context error.
func (t *Transport) Do(ctx context.Context, method, endpoint string, body any, query url.Values) (json.RawMessage, error) {
	requestURL := t.baseURL + normalizeEndpoint(endpoint)
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request body")
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, t.classifyTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Kind:    KindNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			cause:   err,
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		if !json.Valid(data) {
			return nil, &Error{
				Kind:       KindServer,
				Message:    "invalid JSON in response body",
				StatusCode: resp.StatusCode,
				Body:       json.RawMessage(data),
			}
		}
		return json.RawMessage(data), nil
	}

	retryAfter := retry.ParseRetryAfter(resp.Header.Get("Retry-After"))
	return nil, errorFromResponse(resp.StatusCode, data, retryAfter)
}

// classifyTransportError maps a failure with no response received to the
// taxonomy: timeouts by exception category, everything else as a network
// error. Caller-initiated cancellation passes through so errors.Is against
// context.Canceled keeps working.
func (t *Transport) classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "request canceled")
	}

	var urlErr *url.Error
	timedOut := errors.As(err, &urlErr) && urlErr.Timeout()
	if timedOut || errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("request timed out after %s", t.timeout),
			cause:   err,
		}
	}

	return &Error{
		Kind:    KindNetwork,
		Message: fmt.Sprintf("network error: %v", err),
		cause:   err,
	}
}

// Get issues a GET and decodes the response into out when out is non-nil.
func (t *Transport) Get(ctx context.Context, endpoint string, query url.Values, out any) error {
	raw, err := t.Do(ctx, http.MethodGet, endpoint, nil, query)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// Post issues a POST with the given JSON body.
func (t *Transport) Post(ctx context.Context, endpoint string, body, out any) error {
	raw, err := t.Do(ctx, http.MethodPost, endpoint, body, nil)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// Put issues a PUT with the given JSON body.
func (t *Transport) Put(ctx context.Context, endpoint string, body, out any) error {
	raw, err := t.Do(ctx, http.MethodPut, endpoint, body, nil)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// Delete issues a DELETE; an empty response body is success.
func (t *Transport) Delete(ctx context.Context, endpoint string) error {
	_, err := t.Do(ctx, http.MethodDelete, endpoint, nil, nil)
	return err
}

// Close releases idle connections held by the connection pool.
func (t *Transport) Close() {
	t.client.CloseIdleConnections()
}

// decodeInto unmarshals a response body into out. A nil body leaves out
// untouched. A body that does not match the expected shape is a server
// error: the API answered 2xx with something the contract does not allow.
func decodeInto(raw json.RawMessage, out any) error {
	if out == nil || raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{
			Kind:    KindServer,
			Message: fmt.Sprintf("unexpected response shape: %v", err),
			Body:    raw,
			cause:   err,
		}
	}
	return nil
}

// normalizeEndpoint roots an endpoint under /api: "peers", "/peers" and
// "api/peers" all become "/api/peers".
func normalizeEndpoint(endpoint string) string {
	e := strings.TrimSpace(endpoint)
	e = strings.TrimLeft(e, "/")
	if !strings.HasPrefix(e, "api/") {
		e = "api/" + e
	}
	return path.Clean("/" + e)
}
