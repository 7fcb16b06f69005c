package verification

import (
	"context"
	"time"
)

// RetryPolicy bounds the ledger polling loop. Waits are cooperative: a
// cancelled request context stops an in-flight poll between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultRetryPolicy matches the service's stock polling budget.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 10, Interval: 3 * time.Second}
}

// Wait blocks for one interval or until the context is cancelled.
func (p RetryPolicy) Wait(ctx context.Context) error {
	timer := time.NewTimer(p.Interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
