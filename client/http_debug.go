package client

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// debugTransport logs full request/response dumps for troubleshooting API
// communication (unexpected statuses, malformed payloads, auth headers).
//
// Enable with TRIPPLANNER_DEBUG=true or DEBUG=true:
//
//	export TRIPPLANNER_DEBUG=true
//	tripplanner itinerary list  # logs all HTTP traffic
//
// Dumps contain bearer tokens and user data. Keep it out of production.
type debugTransport struct{ base http.RoundTripper }

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := dt.base
	if base == nil {
		base = http.DefaultTransport
	}
	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// debugLoggingRequested reports whether TRIPPLANNER_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("TRIPPLANNER_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}

// rateLimitTransport blocks each request until the limiter admits it.
type rateLimitTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (rt *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := rt.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	base := rt.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
