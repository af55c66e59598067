package kotoba

import (
	"context"
	"errors"
)

// RetryPolicy bounds the number of attempts made against the translation
// collaborator for a single entry. The delay between attempts is supplied by
// the Pacer, so retried calls share the batch clock.
type RetryPolicy struct {
	MaxAttempts int // Total attempts including the first
}

// DefaultRetryPolicy returns sensible defaults for retry behavior.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// Retry executes fn up to policy.MaxAttempts times, waiting on the pacer
// before every attempt, so retries count against the same clock as fresh
// calls. Non-retryable errors abort immediately.
func Retry[T any](ctx context.Context, policy RetryPolicy, pacer *Pacer, fn RetryFunc[T]) (T, error) {
	var zero T
	var lastErr error

	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				return zero, err
			}
		} else {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			default:
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !IsRetryable(err) {
			return zero, err
		}
	}

	return zero, lastErr
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Check for ProviderError with Retryable flag
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return false
}
