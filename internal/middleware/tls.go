package middleware

import (
	"crypto/tls"
	"net/http"
)

// TLSConfig returns a middleware that applies a TLS configuration to the
// underlying transport. Self-hosted management servers often run with
// self-signed certificates; this is the hook that makes them reachable.
func TLSConfig(config *tls.Config) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		transport, ok := next.(*http.Transport)
		if !ok {
			defaultTransport, ok := http.DefaultTransport.(*http.Transport)
			if !ok {
				return next
			}
			transport = defaultTransport.Clone()
			transport.ForceAttemptHTTP2 = true
		} else {
			transport = transport.Clone()
		}

		transport.TLSClientConfig = config

		return transport
	}
}

// InsecureSkipVerify returns a TLS config that skips certificate
// verification. Only for self-hosted servers with self-signed certificates;
// never use against the hosted API.
func InsecureSkipVerify() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // Opt-in for self-hosted servers
	}
}
