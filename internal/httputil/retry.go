// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil executes HTTP requests against rate-limited APIs.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// RetryBaseDelay is the first backoff step for retryable responses. Tests
// override this to avoid real sleeps.
var RetryBaseDelay = 3 * time.Second

// MaxRetryAfter caps how long a server-supplied Retry-After may make Do wait.
var MaxRetryAfter = 2 * time.Minute

const defaultMaxRetries = 3

// Retryable reports whether a response status is worth another attempt:
// 429 Too Many Requests and 503 Service Unavailable, which arXiv returns
// under load.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// Do executes req and retries retryable responses with exponential backoff
// (RetryBaseDelay, doubling each attempt). A Retry-After header overrides
// the computed backoff. When limiter is non-nil every attempt waits for a
// token first, so retries respect the provider's request interval too.
//
// When maxRetries is 0 the default (3) is used. Retryable response bodies
// are drained and closed before waiting. A cancelled context ends the wait
// with ctx.Err(). After exhausting retries the last response is returned so
// the caller can inspect it.
func Do(ctx context.Context, client *http.Client, limiter *rate.Limiter, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if d, ok := retryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			wait = d
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// retryAfter parses a Retry-After value given either as delta seconds or as
// an HTTP date, capped at MaxRetryAfter.
func retryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(value); err == nil {
		d = t.Sub(now)
		if d < 0 {
			d = 0
		}
	} else {
		return 0, false
	}

	if d > MaxRetryAfter {
		d = MaxRetryAfter
	}
	return d, true
}
