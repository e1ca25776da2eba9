// Package middleware provides the RoundTripper layers composed into the
// transport: authentication, retries, rate limiting, observability and TLS.
package middleware

import (
	"maps"
	"net/http"
)

// TokenAuth returns a middleware that authenticates requests against the
// NetBird management API. The API uses a custom "Token" authorization
// scheme, not the generic Bearer scheme.
func TokenAuth(token, userAgent string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &authTransport{
			next:      next,
			token:     token,
			userAgent: userAgent,
		}
	}
}

type authTransport struct {
	next      http.RoundTripper
	token     string
	userAgent string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone to avoid mutating the caller's request.
	req = cloneRequest(req)

	req.Header.Set("Authorization", "Token "+t.token)
	req.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	//nolint:wrapcheck // Middleware passes through errors from the next layer
	return t.next.RoundTrip(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}
