package service

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds retries of coordination store operations.
// Count is the number of retries after the first attempt; AttemptTimeout caps each attempt.
type RetryPolicy struct {
	Count           int
	AttemptTimeout  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used when the process configuration does not override it.
var DefaultRetryPolicy = RetryPolicy{
	Count:           5,
	AttemptTimeout:  2 * time.Second,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

// BackOff returns a bounded exponential backoff that stops when ctx is done.
func (p RetryPolicy) BackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(p.Count, 0))), ctx)
}

// AttemptContext derives the context for one attempt.
func (p RetryPolicy) AttemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.AttemptTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.AttemptTimeout)
}

// IsTimeout reports deadline and network timeout errors.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
