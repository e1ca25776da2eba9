package retry

import (
	"net/http"
	"testing"
	"time"
)

func TestShouldRetry(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		statusCode int
		want       bool
	}{
		{name: "429 Too Many Requests", statusCode: 429, want: true},
		{name: "500 Internal Server Error", statusCode: 500, want: true},
		{name: "502 Bad Gateway", statusCode: 502, want: true},
		{name: "503 Service Unavailable", statusCode: 503, want: true},
		{name: "504 Gateway Timeout", statusCode: 504, want: true},
		{name: "200 OK", statusCode: 200, want: false},
		{name: "400 Bad Request", statusCode: 400, want: false},
		{name: "401 Unauthorized", statusCode: 401, want: false},
		{name: "403 Forbidden", statusCode: 403, want: false},
		{name: "404 Not Found", statusCode: 404, want: false},
		{name: "409 Conflict", statusCode: 409, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ShouldRetry(tt.statusCode); got != tt.want {
				t.Errorf("ShouldRetry(%d) = %v, want %v", tt.statusCode, got, tt.want)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		base    time.Duration
		attempt int
		want    time.Duration
	}{
		{name: "first retry", base: time.Second, attempt: 0, want: time.Second},
		{name: "second retry", base: time.Second, attempt: 1, want: 2 * time.Second},
		{name: "third retry", base: time.Second, attempt: 2, want: 4 * time.Second},
		{name: "sub-second base", base: 10 * time.Millisecond, attempt: 3, want: 80 * time.Millisecond},
		{name: "negative attempt clamps", base: time.Second, attempt: -1, want: time.Second},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Backoff(tt.base, tt.attempt); got != tt.want {
				t.Errorf("Backoff(%v, %d) = %v, want %v", tt.base, tt.attempt, got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "empty header", header: "", want: 0},
		{name: "valid seconds - 60", header: "60", want: 60 * time.Second},
		{name: "valid seconds - 120", header: "120", want: 120 * time.Second},
		{name: "valid seconds - 0", header: "0", want: 0},
		{name: "invalid format - text", header: "invalid", want: 0},
		{name: "invalid format - float", header: "60.5", want: 0},
		{name: "HTTP-date in the past", header: "Wed, 21 Oct 2015 07:28:00 GMT", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseRetryAfter(tt.header); got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestParseRetryAfterHTTPDateFuture(t *testing.T) {
	t.Parallel()

	at := time.Now().Add(90 * time.Second).UTC()
	got := ParseRetryAfter(at.Format(http.TimeFormat))
	if got <= 0 || got > 90*time.Second {
		t.Errorf("ParseRetryAfter(future date) = %v, want value in (0s, 90s]", got)
	}
}
