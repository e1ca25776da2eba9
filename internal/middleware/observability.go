package middleware

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/lexfrei/go-netbird/observability"
)

// Observability returns a middleware that logs requests and records metrics.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	t.logger.Debug("http request started",
		observability.Field{Key: "method", Value: req.Method},
		observability.Field{Key: "path", Value: req.URL.Path},
	)

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		t.logger.Error("http request failed",
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "path", Value: req.URL.Path},
			observability.Field{Key: "duration", Value: duration},
			observability.Field{Key: "error", Value: err.Error()},
		)
		t.metrics.RecordError("http_request", "network")

		//nolint:wrapcheck // Observability logs the error but passes it through unchanged
		return nil, err
	}

	fields := []observability.Field{
		{Key: "method", Value: req.Method},
		{Key: "path", Value: req.URL.Path},
		{Key: "status", Value: resp.StatusCode},
		{Key: "duration", Value: duration},
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Warn("http request completed with error", fields...)
	} else {
		t.logger.Debug("http request completed", fields...)
	}

	t.metrics.RecordHTTPRequest(req.Method, normalizePath(req.URL.Path), resp.StatusCode, duration)

	return resp, nil
}

var (
	// resourceIDPattern matches the ID segment after a known collection:
	// /api/peers/{id}, /api/groups/{id}, /api/policies/{id}, ...
	resourceIDPattern = regexp.MustCompile(`(/api/(?:peers|groups|policies|setup-keys|users|routes|dns))/[^/]+`)

	// normalizedPathCache avoids re-running the regex for repeated paths.
	// A client usually touches a small fixed set of endpoints.
	normalizedPathCache sync.Map
)

// normalizePath replaces resource IDs with a placeholder so metrics keyed by
// path keep bounded cardinality: /api/peers/ab12cd -> /api/peers/:id.
func normalizePath(path string) string {
	if cached, ok := normalizedPathCache.Load(path); ok {
		//nolint:forcetypeassert // Cache only stores strings
		return cached.(string)
	}

	normalized := resourceIDPattern.ReplaceAllString(path, "$1/:id")
	normalizedPathCache.Store(path, normalized)

	return normalized
}
