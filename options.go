package realtime

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// realtime.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Option configures a Client during construction in New.
//
// Options are applied before the authorization transport wrapper is installed,
// so transport-related options (like debug logging) will be placed underneath
// the API-key wrapper. Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used for REST
// calls.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP request
// (including connection, TLS handshake, redirects, and reading the response).
// The value must be greater than zero. It does not apply to the hub stream,
// whose responses are intentionally unbounded.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithHTTPClient replaces the REST http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithHubURL overrides the event hub endpoint. The default is derived from
// the API base URL; deployments that host the hub separately set this.
func WithHubURL(u string) Option {
	return func(c *Client) error {
		if u == "" {
			return fmt.Errorf("empty hub url")
		}
		c.hubURL = strings.TrimRight(u, "/")
		return nil
	}
}

// WithStreamConfig replaces the stream tunables loaded from the environment.
func WithStreamConfig(cfg StreamConfig) Option {
	return func(c *Client) error {
		c.stream = cfg
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true.
//
// The debug transport is installed beneath the API-key wrapper; logs are
// emitted before the request is forwarded to the next transport.
// Do not enable this option in production environments as it increases
// verbosity and may include headers and method/URL metadata in logs.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			c.http.Transport = &debugTransport{base: c.http.Transport}
		}
		return nil
	}
}
