package api

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy controls how read requests are retried.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	StatusCodes     []int
}

// DefaultRetryPolicy retries reads up to five times starting at 100ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		StatusCodes: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusNotImplemented,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// NoRetry disables retries.
func NoRetry() RetryPolicy {
	return RetryPolicy{}
}

// Retryable reports whether a response with the given status should be retried.
func (p RetryPolicy) Retryable(status int) bool {
	for _, code := range p.StatusCodes {
		if code == status {
			return true
		}
	}
	return false
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.MaxElapsedTime = 0
	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, p.MaxRetries), ctx)
}
