package workspace

import (
	"context"
	"errors"
	"time"

	"lumina/internal/domain"
)

// call runs fn with a bounded context. A deadline hit inside fn becomes a
// retryable TransportError naming op.
func call[T any](ctx context.Context, timeout time.Duration, op string, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	v, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, asTransport(op, err)
	}
	return v, nil
}

func callErr(ctx context.Context, timeout time.Duration, op string, fn func(context.Context) error) error {
	_, err := call(ctx, timeout, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func asTransport(op string, err error) error {
	if errors.Is(err, domain.ErrTransport) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.TransportError{Op: op, Err: err}
	}
	return err
}
