// Package poll provides a bounded fixed-interval polling utility for
// asynchronous remote jobs.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAttemptsExhausted is returned when the attempt ceiling is reached
// without the condition becoming terminal.
var ErrAttemptsExhausted = errors.New("poll attempts exhausted")

// Func is called once per attempt. Returning done stops polling with
// success; returning an error stops polling immediately.
type Func func(ctx context.Context) (done bool, err error)

// Until calls fn up to maxAttempts times, waiting interval between
// attempts. The wait honors context cancellation. No wait happens after the
// final attempt.
func Until(ctx context.Context, maxAttempts int, interval time.Duration, fn Func) error {
	if maxAttempts < 1 {
		return fmt.Errorf("maxAttempts must be at least 1, got %d", maxAttempts)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}

	return fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, maxAttempts)
}
