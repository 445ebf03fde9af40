package apiclient

import (
	"errors"
	"math"
	"net/http"
	"time"
)

// RetryPolicy defines exponential backoff parameters.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NoRetry never repeats a failed request.
var NoRetry = RetryPolicy{}

// ListRetry allows one retry for general list reads.
var ListRetry = RetryPolicy{MaxRetries: 1, InitialDelay: time.Second, MaxDelay: 30 * time.Second, BackoffFactor: 2}

// NextDelay returns delay for a given attempt (1-based) with clamping.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}

// Retryable reports whether a failed request may succeed when repeated:
// transport failures and 5xx responses. Client errors are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode >= http.StatusInternalServerError
	}
	return errors.Is(err, ErrNetwork)
}
