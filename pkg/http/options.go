package http

import "time"

// HttpOpts adjusts one setting of a connector's HTTP client.
type HttpOpts func(*clientConfig)

// WithConnClientTimeout bounds how long establishing a connection may take.
func WithConnClientTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.dialTimeout = timeout
	}
}

// WithRequestTimeout bounds a whole request, body read included. Streamed
// requests carry their own deadline through the context instead.
func WithRequestTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.requestTimeout = timeout
	}
}

// WithClientKeepAlive sets the TCP keep-alive interval.
func WithClientKeepAlive(keepAlive time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.keepAlive = keepAlive
	}
}

// WithTLSHandshakeTimeout bounds the TLS handshake.
func WithTLSHandshakeTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.tlsHandshakeTimeout = timeout
	}
}

// WithResponseHeaderTimeout bounds the wait for response headers after the
// request was fully written.
func WithResponseHeaderTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.responseHeaderTimeout = timeout
	}
}

// WithIdleConnTimeout sets how long idle connections are kept in the pool.
func WithIdleConnTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		c.idleConnTimeout = timeout
	}
}

// WithMaxIdleConns caps pooled idle connections across all hosts.
func WithMaxIdleConns(maxConns int) HttpOpts {
	return func(c *clientConfig) {
		c.maxIdleConns = maxConns
	}
}

// WithMaxIdleConnsPerHost caps pooled idle connections per upstream host.
func WithMaxIdleConnsPerHost(maxConns int) HttpOpts {
	return func(c *clientConfig) {
		c.maxIdleConnsPerHost = maxConns
	}
}

// WithTransport registers a round-tripper decorator.
func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *clientConfig) {
		c.transports = append(c.transports, transport)
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. Meant for
// upstreams on self-signed certificates in development setups only.
func WithInsecureSkipVerify(skip bool) HttpOpts {
	return func(c *clientConfig) {
		c.insecureSkipVerify = skip
	}
}
