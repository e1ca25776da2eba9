package netbird

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

func TestKindForStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   ErrorKind
	}{
		{name: "400 Bad Request", status: 400, want: KindValidation},
		{name: "401 Unauthorized", status: 401, want: KindAuthentication},
		{name: "403 Forbidden", status: 403, want: KindAuthentication},
		{name: "404 Not Found", status: 404, want: KindNotFound},
		{name: "409 Conflict", status: 409, want: KindValidation},
		{name: "422 Unprocessable", status: 422, want: KindValidation},
		{name: "429 Too Many Requests", status: 429, want: KindRateLimit},
		{name: "500 Internal", status: 500, want: KindServer},
		{name: "502 Bad Gateway", status: 502, want: KindServer},
		{name: "503 Unavailable", status: 503, want: KindServer},
		{name: "599 edge of 5xx", status: 599, want: KindServer},
		{name: "418 unmapped 4xx", status: 418, want: KindValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindForStatus(tt.status); got != tt.want {
				t.Errorf("KindForStatus(%d) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestErrorFromResponseMessageExtraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message field", body: `{"message":"peer not found","code":404}`, want: "peer not found"},
		{name: "error field", body: `{"error":"boom"}`, want: "boom"},
		{name: "detail field", body: `{"detail":"nope"}`, want: "nope"},
		{name: "description field", body: `{"description":"bad"}`, want: "bad"},
		{name: "non-JSON body", body: `<html>gateway error</html>`, want: "HTTP 502"},
		{name: "empty body", body: "", want: "HTTP 502"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			apiErr := errorFromResponse(502, []byte(tt.body), 0)
			if apiErr.Message != tt.want {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.want)
			}
			if tt.body != "" && string(apiErr.Body) != tt.body {
				t.Errorf("Body = %q, want raw body attached", apiErr.Body)
			}
		})
	}
}

func TestErrorFromResponseValidationDetails(t *testing.T) {
	t.Parallel()

	body := `{"message":"validation failed","code":400,"details":["name is required","peers must be a list"]}`
	apiErr := errorFromResponse(400, []byte(body), 0)

	if apiErr.Kind != KindValidation {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, KindValidation)
	}
	if len(apiErr.Details) != 2 || apiErr.Details[0] != "name is required" {
		t.Errorf("Details = %v, want the two field-level messages", apiErr.Details)
	}
}

func TestErrorFromResponseRetryAfter(t *testing.T) {
	t.Parallel()

	apiErr := errorFromResponse(429, []byte(`{"message":"rate limit exceeded","code":429}`), 5*time.Second)

	if apiErr.Kind != KindRateLimit {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, KindRateLimit)
	}
	if apiErr.RetryAfter != 5*time.Second {
		t.Errorf("RetryAfter = %v, want 5s", apiErr.RetryAfter)
	}
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	withStatus := &Error{Kind: KindNotFound, Message: "peer not found", StatusCode: 404}
	if got, want := withStatus.Error(), "[404] peer not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	local := &Error{Kind: KindValidation, Message: "peer id is required"}
	if got, want := local.Error(), "peer id is required"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestKindOfWrappedError(t *testing.T) {
	t.Parallel()

	inner := &Error{Kind: KindRateLimit, Message: "slow down", StatusCode: 429}
	wrapped := errors.Wrap(inner, "listing peers")

	if got := KindOf(wrapped); got != KindRateLimit {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, KindRateLimit)
	}
	if !IsRateLimit(wrapped) {
		t.Error("IsRateLimit(wrapped) = false, want true")
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain error) = %q, want empty", got)
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{kind: KindRateLimit, want: true},
		{kind: KindServer, want: true},
		{kind: KindNetwork, want: true},
		{kind: KindTimeout, want: true},
		{kind: KindAuthentication, want: false},
		{kind: KindNotFound, want: false},
		{kind: KindValidation, want: false},
		{kind: KindConfiguration, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			err := &Error{Kind: tt.kind, Message: "x"}
			if got := IsRetryable(err); got != tt.want {
				t.Errorf("IsRetryable(%s) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}
