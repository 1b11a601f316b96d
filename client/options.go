package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file makes it easy to discover
// all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Option configures a Client during construction in New.
//
// Options are applied before the bearer transport wrapper is installed, so
// transport-related options (debug logging, rate limiting) sit underneath it.
// Options must be deterministic and side-effect free.
type Option func(*Client) error

// WithHTTPClient replaces the underlying http.Client. Apply it before other
// transport options or they are discarded.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.http = hc
		return nil
	}
}

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse bound on a single HTTP exchange. The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true.
//
// Dumps include the Authorization header. Do not enable in production.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			if _, already := c.http.Transport.(*debugTransport); !already {
				c.http.Transport = &debugTransport{base: c.http.Transport}
			}
		}
		return nil
	}
}

// WithRateLimit bounds outgoing requests to perSecond with the given burst.
// A non-positive perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) error {
		if perSecond <= 0 {
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		c.http.Transport = &rateLimitTransport{
			base:    c.http.Transport,
			limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		}
		return nil
	}
}

// WithRetry sets the total number of attempts for idempotent reads on
// recoverable failures. 1 (the default) disables retries.
func WithRetry(attempts int) Option {
	return func(c *Client) error {
		if attempts < 1 {
			return fmt.Errorf("retry attempts must be >= 1")
		}
		c.retryAttempts = attempts
		return nil
	}
}

// WithUnauthorizedHandler registers fn to run whenever the API answers 401.
// The session layer uses it to clear credentials and leave the current flow.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) error {
		c.onUnauthorized = fn
		return nil
	}
}
