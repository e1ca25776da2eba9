package httpclient

import (
	"net/http"
)

// Option is a functional option for configuring the HTTP client.
type Option func(*Client)

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.base = client
		}
	}
}

// WithTransport sets the base HTTP transport.
// If middleware is also configured, the transport is wrapped by it.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.base.Transport = transport
	}
}

// WithMiddleware adds middleware to the client. Middleware is applied in
// reverse order to build the chain: the first middleware in the slice becomes
// the outermost layer.
//
//	WithMiddleware(A, B, C) creates chain: A(B(C(transport)))
//	Request flow: A -> B -> C -> transport -> server
//
// Outer concerns (logging, observability) come first, inner concerns
// (rate limiting, retries, auth) after.
//
// Note the client deliberately carries no http.Client.Timeout: the retry
// middleware applies the configured timeout per attempt, and a client-level
// timeout would span all attempts of a retried call.
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}
