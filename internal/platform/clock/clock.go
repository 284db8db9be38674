// Package clock provides the wall-clock implementation of ports.Clock.
package clock

import (
	"context"
	"time"
)

// Real reads the system clock and sleeps with timers.
type Real struct{}

// New returns the system clock.
func New() Real {
	return Real{}
}

// Now returns the current local time.
func (Real) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until ctx is done. A non-positive d returns
// immediately unless ctx is already done.
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithTimeout wraps context.WithTimeout.
func (Real) WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}
