// Package retry re-runs optimistic-locking operations that lost a version race.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 50 * time.Millisecond
)

// Options bounds the retry loop. MaxRetries is the total number of
// attempts; the wait before attempt n+1 is BaseDelay * 2^n.
type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	Logger     *slog.Logger
}

func DefaultOptions() Options {
	return Options{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

func (o Options) normalize() Options {
	if o.MaxRetries < 1 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.BaseDelay < 0 {
		o.BaseDelay = 0
	}
	return o
}

// Backoff returns the wait after the given zero-based failed attempt.
func (o Options) Backoff(attempt int) time.Duration {
	return o.BaseDelay * time.Duration(1<<attempt)
}

// Do calls op until it succeeds, fails with an error other than
// domain.ErrConcurrencyConflict, or runs out of attempts. In the last case
// the final conflict is returned. op must reload whatever state it depends
// on, since a retry means the previous read is stale.
func Do(ctx context.Context, opts Options, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, opts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a result.
func DoValue[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	opts = opts.normalize()

	var zero T
	var lastErr error
	for attempt := 0; attempt < opts.MaxRetries; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return zero, err
		}
		lastErr = err
		if attempt == opts.MaxRetries-1 {
			break
		}

		wait := opts.Backoff(attempt)
		if opts.Logger != nil {
			opts.Logger.Debug("optimistic lock conflict, retrying",
				"attempt", attempt+1, "max_attempts", opts.MaxRetries, "backoff", wait, "err", err)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}
	}
	return zero, lastErr
}
