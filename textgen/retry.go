package textgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/url"
	"time"
)

const (
	defaultRetries = 3
	baseDelay      = 1 * time.Second
	maxDelay       = 10 * time.Second
	callTimeout    = 30 * time.Second
)

// StatusError is a non-2xx response from a provider API.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: status %d: %s", e.Provider, e.Code, e.Body)
}

// IsRetryable classifies a provider call failure. Rate limiting and server
// errors are retryable, as are network-level failures and request timeouts
// (a call that timed out mid-stream is treated the same as one that failed
// before any bytes arrived). A cancelled run is never retryable. Everything
// else (bad credentials, 400-class rejections) aborts the provider
// immediately so the cascade can advance.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	return false
}

// backoffDelay computes the exponential delay for retry attempt n, capped
// at maxDelay, with ±10% symmetric jitter.
func backoffDelay(attempt int, rnd *rand.Rand) time.Duration {
	delay := baseDelay << uint(attempt)
	if delay > maxDelay {
		delay = maxDelay
	}
	jitter := time.Duration((rnd.Float64()*2 - 1) * 0.1 * float64(delay))
	return delay + jitter
}
