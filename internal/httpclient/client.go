// Package httpclient provides an HTTP client assembled from a chain of
// RoundTripper middleware.
package httpclient

import (
	"net/http"
)

// Client is an HTTP client with middleware chaining.
type Client struct {
	base       *http.Client
	middleware []Middleware
}

// Middleware wraps an http.RoundTripper to add behavior.
// Middleware is applied in order: the first middleware is outermost.
type Middleware func(http.RoundTripper) http.RoundTripper

// New creates a new HTTP client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		base:       &http.Client{},
		middleware: []Middleware{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(c.middleware) > 0 {
		transport := c.base.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}

		// Apply middleware in reverse order so the first one is outermost.
		for i := len(c.middleware) - 1; i >= 0; i-- {
			transport = c.middleware[i](transport)
		}

		c.base.Transport = transport
	}

	return c
}

// Do executes an HTTP request through the configured middleware chain.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	//nolint:wrapcheck // Callers classify transport errors themselves
	return c.base.Do(req)
}

// HTTPClient returns the underlying http.Client. Useful when the client has
// to be handed to code expecting a plain *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.base
}

// CloseIdleConnections closes idle connections held by the underlying
// transport's connection pool.
func (c *Client) CloseIdleConnections() {
	c.base.CloseIdleConnections()
}
