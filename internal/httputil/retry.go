// Copyright hextree.io, 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across commands.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 4

// transientStatus is the set of responses worth retrying when pulling
// listings from source mirrors.
var transientStatus = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// DoWithRetry executes an HTTP request and retries transient failures
// (429, 502, 503, 504) with exponential backoff. The delay starts at
// RetryBaseDelay and doubles each attempt; a Retry-After header in
// delay-seconds form overrides the computed backoff.
//
// When maxRetries is 0 the default (4) is used. Before each wait the
// response body is drained and closed. If the context is cancelled during
// a wait the function returns ctx.Err(). After exhausting retries the
// last transient response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !transientStatus[resp.StatusCode] {
			return resp, nil
		}

		// Exhausted retries, hand the transient response back as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		delay, ok := retryAfter(resp)
		if !ok {
			delay = time.Duration(1<<attempt) * RetryBaseDelay
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		log.Debugf("HTTP %d from %s, retrying in %v (attempt %d/%d)",
			resp.StatusCode, req.URL.Host, delay, attempt+1, maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// retryAfter reads the Retry-After header in its delay-seconds form. The
// HTTP-date form is rare on the mirrors we fetch from and falls back to
// the computed backoff.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
