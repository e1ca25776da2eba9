package netbird

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrorKind is the closed set of failure classes the client can produce.
// Dispatch on the kind, not on concrete error types.
type ErrorKind string

const (
	// KindConfiguration - the client configuration is invalid (local, no request made).
	KindConfiguration ErrorKind = "configuration"
	// KindAuthentication - the API rejected the credential (401, 403).
	KindAuthentication ErrorKind = "authentication"
	// KindNotFound - the requested resource does not exist (404).
	KindNotFound ErrorKind = "not_found"
	// KindValidation - the request was malformed or conflicted (400, 409, 422, and local pre-flight checks).
	KindValidation ErrorKind = "validation"
	// KindRateLimit - the API rate limit was exceeded (429).
	KindRateLimit ErrorKind = "rate_limit"
	// KindServer - the API failed server-side (5xx, undecodable success bodies).
	KindServer ErrorKind = "server"
	// KindNetwork - no response was received: connection, DNS or TLS failure.
	KindNetwork ErrorKind = "network"
	// KindTimeout - no response was received within the configured timeout.
	KindTimeout ErrorKind = "timeout"
)

// Error is the structured error carried by every failure of the client.
// It is a tagged variant: Kind identifies the failure class, the remaining
// fields are diagnostics.
type Error struct {
	// Kind is the failure class.
	Kind ErrorKind

	// Message is the human-readable description, extracted from the API
	// response when one was received.
	Message string

	// StatusCode is the originating HTTP status. Zero when no response was
	// received (network, timeout, configuration and pre-flight errors).
	StatusCode int

	// Body is the raw response body, when one was received. For JSON error
	// responses this is the decoded-verbatim payload for diagnostics.
	Body json.RawMessage

	// Details carries field-level validation messages when the API provided
	// them.
	Details []string

	// RetryAfter is the server's rate limit hint, when present on a 429.
	RetryAfter time.Duration

	cause error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf returns the ErrorKind of err, or an empty kind when err was not
// produced by this client.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return KindOf(err) == KindConfiguration }

// IsAuthentication reports whether err is an authentication error.
func IsAuthentication(err error) bool { return KindOf(err) == KindAuthentication }

// IsNotFound reports whether err is a resource-not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsRateLimit reports whether err is a rate limit error.
func IsRateLimit(err error) bool { return KindOf(err) == KindRateLimit }

// IsServer reports whether err is a server error.
func IsServer(err error) bool { return KindOf(err) == KindServer }

// IsNetwork reports whether err is a network error.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsTimeout reports whether err is a timeout error.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }

// IsRetryable reports whether the failure class of err is transient.
// Rate limit, server, network and timeout errors are retryable; the
// deterministic client-input and identity errors are not.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimit, KindServer, KindNetwork, KindTimeout:
		return true
	default:
		return false
	}
}

// KindForStatus maps an HTTP error status to its ErrorKind. It is a pure
// function covering the 4xx/5xx range; transport-level failures (no response
// received) are classified by exception category instead, never by status.
func KindForStatus(statusCode int) ErrorKind {
	switch statusCode {
	case 400, 409, 422:
		return KindValidation
	case 401, 403:
		return KindAuthentication
	case 404:
		return KindNotFound
	case 429:
		return KindRateLimit
	}
	if statusCode >= 500 {
		return KindServer
	}
	// The taxonomy is closed: 4xx statuses with no dedicated kind (402,
	// 405, 410, ...) are still client-input failures, so they classify
	// as validation rather than growing the kind set.
	return KindValidation
}

// apiErrorEnvelope is the wire shape of management API error responses:
// a message and numeric code, optionally a details list for field-level
// validation failures. Alternate message field names used by some server
// versions are accepted too.
type apiErrorEnvelope struct {
	Message     string   `json:"message"`
	Error       string   `json:"error"`
	Detail      string   `json:"detail"`
	Description string   `json:"description"`
	Code        int      `json:"code"`
	Details     []string `json:"details"`
}

func (e apiErrorEnvelope) message() string {
	for _, m := range []string{e.Message, e.Error, e.Detail, e.Description} {
		if m != "" {
			return m
		}
	}
	return ""
}

// errorFromResponse builds the taxonomy error for a non-2xx response.
// The raw body is always attached for diagnostics; the message is extracted
// from the decoded body when it is JSON, else synthesized from the status.
func errorFromResponse(statusCode int, body []byte, retryAfter time.Duration) *Error {
	apiErr := &Error{
		Kind:       KindForStatus(statusCode),
		StatusCode: statusCode,
		RetryAfter: retryAfter,
	}

	if len(body) > 0 {
		apiErr.Body = json.RawMessage(body)

		var envelope apiErrorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil {
			apiErr.Message = envelope.message()
			apiErr.Details = envelope.Details
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d", statusCode)
	}

	return apiErr
}

// newValidationError builds a local pre-flight validation error: no request
// was made, so there is no status code or body.
func newValidationError(format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// newConfigurationError builds a local configuration error.
func newConfigurationError(format string, args ...any) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: fmt.Sprintf(format, args...),
	}
}
