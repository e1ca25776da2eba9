package observability

import "time"

// MetricsRecorder receives client-side metrics events.
// Implementations can forward to Prometheus, StatsD, or anything else.
type MetricsRecorder interface {
	// RecordHTTPRequest records one completed HTTP request.
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)

	// RecordRetry records a retry attempt for an endpoint.
	RecordRetry(attempt int, endpoint string)

	// RecordRateLimit records a client-side rate limit wait.
	RecordRateLimit(endpoint string, wait time.Duration)

	// RecordError records an error occurrence by operation and error kind.
	RecordError(operation, errorKind string)
}

type noopMetricsRecorder struct{}

// NoopMetricsRecorder returns a recorder that does nothing. It is the
// default when no recorder is configured.
//
//nolint:ireturn // Factory function returns the interface on purpose
func NoopMetricsRecorder() MetricsRecorder {
	return &noopMetricsRecorder{}
}

func (m *noopMetricsRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *noopMetricsRecorder) RecordRetry(int, string)                              {}
func (m *noopMetricsRecorder) RecordRateLimit(string, time.Duration)                {}
func (m *noopMetricsRecorder) RecordError(string, string)                           {}
