package ledger

import (
	"context"
	"fmt"
	"time"
)

const (
	// maxAttempts bounds how often a conflicted operation is re-run.
	maxAttempts = 3
	// retryDelay is the linear backoff unit: 100ms, then 200ms.
	retryDelay = 100 * time.Millisecond
)

// ExecuteWithRetry runs op, retrying on optimistic-concurrency conflicts
// up to maxAttempts with linear backoff. op is re-invoked in full each
// time; callers must keep non-idempotent external effects out of it.
//
// A conflict on a row that no longer exists aborts immediately with
// ErrDeletedByAnotherUser. Exhausting the budget aborts with
// ErrModifiedByAnotherUser. Any other error propagates unchanged.
func ExecuteWithRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}

		switch KindOf(err) {
		case KindDeleted:
			// no point retrying against a row another actor removed
			return zero, fmt.Errorf("%w: %v", ErrDeletedByAnotherUser, err)
		case KindConflict:
			if attempt >= maxAttempts {
				return zero, fmt.Errorf("%w: %v", ErrModifiedByAnotherUser, err)
			}
		default:
			return zero, err
		}

		// the next attempt re-reads every row it touches, so the
		// refreshed values become the new comparison baseline
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(retryDelay * time.Duration(attempt)):
		}
	}
}
