package resilience

import (
	"context"
	"errors"
	"time"
)

// ExecuteWithTimeout runs the operation with a bounded deadline. It returns
// ErrTimeout when the deadline expires before the operation completes.
//
// Every suspension point in the engine (health probes, content fetches) runs
// through this to guarantee forward progress.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
