// Package clock abstracts time so the reader's timing contract can be
// exercised without waiting on the wall clock.
package clock

import (
	"context"
	"time"
)

// Clock is a source of time and of blocking delays.
type Clock interface {
	Now() time.Time

	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is the wall clock.
type Real struct{}

// Now implements Clock.Now.
func (Real) Now() time.Time {
	return time.Now()
}

// Sleep implements Clock.Sleep.
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PollUntil calls try every interval until it reports done, the budget is
// spent, or ctx is cancelled. The budget is inclusive: try is always called
// once more at exactly start+budget, so anything that becomes ready at the
// deadline is still seen. It returns true if try reported done.
func PollUntil(ctx context.Context, c Clock, budget, interval time.Duration, try func() (bool, error)) (bool, error) {
	deadline := c.Now().Add(budget)
	for {
		done, err := try()
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}

		now := c.Now()
		if !now.Before(deadline) {
			return false, nil
		}

		wait := interval
		if remaining := deadline.Sub(now); remaining < wait {
			wait = remaining
		}
		if err := c.Sleep(ctx, wait); err != nil {
			return false, err
		}
	}
}
