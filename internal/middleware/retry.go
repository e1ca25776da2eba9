package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-netbird/internal/retry"
	"github.com/lexfrei/go-netbird/observability"
)

// RetryConfig configures the retry middleware.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// BaseDelay is the backoff unit: the wait before retry n (zero-based)
	// is BaseDelay * 2^n.
	BaseDelay time.Duration

	// AttemptTimeout bounds each individual attempt. The timeout is
	// per-attempt, not per logical call: a call retried N times may take
	// up to (N+1) * AttemptTimeout plus backoff before failing.
	AttemptTimeout time.Duration

	Logger  observability.Logger
	Metrics observability.MetricsRecorder
}

// Retry returns a middleware that retries failed requests with exponential
// backoff. It retries on:
//   - network errors (connection, DNS, TLS failures, attempt timeouts)
//   - 5xx server errors
//   - 429 rate limit responses (the Retry-After header, when present,
//     overrides the computed backoff)
//
// It does NOT retry 4xx client errors other than 429: those are
// deterministic, retrying cannot change the outcome. Cancellation of the
// request context is honored between attempts as well as during them.
func Retry(cfg RetryConfig) func(http.RoundTripper) http.RoundTripper {
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &retryTransport{
			next:           next,
			maxRetries:     cfg.MaxRetries,
			baseDelay:      cfg.BaseDelay,
			attemptTimeout: cfg.AttemptTimeout,
			logger:         cfg.Logger,
			metrics:        cfg.Metrics,
		}
	}
}

type retryTransport struct {
	next           http.RoundTripper
	maxRetries     int
	baseDelay      time.Duration
	attemptTimeout time.Duration
	logger         observability.Logger
	metrics        observability.MetricsRecorder
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// Buffer the request body so it can be replayed on retries.
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read request body")
		}
	}

	for attempt := 0; ; attempt++ {
		resp, err := t.attempt(ctx, req, bodyBytes)

		if err == nil && !retry.ShouldRetry(resp.StatusCode) {
			return resp, nil
		}

		// The caller gave up; surface that instead of retrying.
		if ctx.Err() != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, errors.Wrap(ctx.Err(), "request canceled")
		}

		if attempt == t.maxRetries {
			if err != nil {
				return nil, errors.Wrapf(err, "request failed after %d attempts", attempt+1)
			}
			// Exhausted on a retryable status: hand the last response to
			// the caller unchanged so it can map the error.
			return resp, nil
		}

		wait := t.waitBefore(attempt, resp)
		if resp != nil {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
			resp.Body.Close()
		}

		t.logger.Warn("retrying request",
			observability.Field{Key: "attempt", Value: attempt + 1},
			observability.Field{Key: "max_retries", Value: t.maxRetries},
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "path", Value: req.URL.Path},
			observability.Field{Key: "wait", Value: wait},
		)
		t.metrics.RecordRetry(attempt+1, req.URL.Path)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Wrap(ctx.Err(), "context canceled during retry wait")
		}
	}
}

// attempt performs a single attempt with its own timeout. The per-attempt
// context is released when the response body is closed, so the body stays
// readable by the caller for successful attempts.
func (t *retryTransport) attempt(ctx context.Context, req *http.Request, bodyBytes []byte) (*http.Response, error) {
	cancel := context.CancelFunc(func() {})
	attemptCtx := ctx
	if t.attemptTimeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, t.attemptTimeout)
	}

	attemptReq := req.Clone(attemptCtx)
	if bodyBytes != nil {
		attemptReq.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	resp, err := t.next.RoundTrip(attemptReq)
	if err != nil {
		cancel()
		//nolint:wrapcheck // Classified by the caller via errors.Is
		return nil, err
	}

	resp.Body = &cancelOnCloseBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// waitBefore computes the delay before the retry following the given
// zero-based attempt. A Retry-After hint on a 429 response wins over the
// exponential backoff.
func (t *retryTransport) waitBefore(attempt int, resp *http.Response) time.Duration {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		if hint := retry.ParseRetryAfter(resp.Header.Get("Retry-After")); hint > 0 {
			t.logger.Debug("using Retry-After hint",
				observability.Field{Key: "wait", Value: hint},
			)
			return hint
		}
	}

	return retry.Backoff(t.baseDelay, attempt)
}

// cancelOnCloseBody ties the per-attempt context to the response body
// lifetime. Cancelling earlier would sever the connection mid-read.
type cancelOnCloseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnCloseBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err //nolint:wrapcheck // Body close error passes through unchanged
}
