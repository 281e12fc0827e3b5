/*
Package logx provides a structured logging wrapper based on zerolog.

This file contains an http.RoundTripper wrapper that logs every outgoing HTTP
request issued by the client, including method, URL path, response status, and
latency. Failed round trips and server-side error statuses are escalated to
warn/error levels.
*/
package logx

import (
	"net/http"
	"time"
)

// loggingTransport wraps an http.RoundTripper and records every round trip.
type loggingTransport struct {
	base http.RoundTripper
}

// Transport returns an http.RoundTripper that logs each outgoing request
// through the given base transport. A nil base falls back to
// http.DefaultTransport.
func Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{base: base}
}

// RoundTrip executes the request and logs the outcome. Transport-level
// failures (DNS, refused connection, timeout) are logged at error level with
// no status; HTTP-level failures are escalated by status class.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := Logger().With().
		Str("component", "http").
		Str("request_method", req.Method).
		Str("request_path", req.URL.Path).
		Logger()

	t1 := time.Now()
	resp, err := t.base.RoundTrip(req)
	latency := time.Since(t1)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("latency", latency).
			Msg("Request failed")
		return nil, err
	}

	logEvent := logger.Info()
	if resp.StatusCode >= 500 {
		logEvent = logger.Error()
	} else if resp.StatusCode >= 400 {
		logEvent = logger.Warn()
	}

	logEvent.
		Int("status", resp.StatusCode).
		Dur("latency", latency).
		Msg("Request completed")

	return resp, nil
}
