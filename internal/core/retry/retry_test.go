package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/retry"
)

func conflict() error {
	return &domain.ConflictError{Aggregate: "time_slot", ID: uuid.New(), ExpectedVersion: 1}
}

func TestDo_RetriesConflictsUntilSuccess(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Options{MaxRetries: 3}, func(context.Context) error {
		calls++
		if calls < 3 {
			return conflict()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Options{MaxRetries: 4}, func(context.Context) error {
		calls++
		return conflict()
	})

	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, 4, calls)
}

func TestDo_DoesNotRetryOtherErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"validation", &domain.CapacityError{Available: 0, Requested: 1}},
		{"not found", domain.NewNotFound("booking", uuid.New())},
		{"infrastructure", errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retry.Do(context.Background(), retry.Options{MaxRetries: 5}, func(context.Context) error {
				calls++
				return tt.err
			})
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestDo_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry.Do(ctx, retry.Options{MaxRetries: 10, BaseDelay: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return conflict()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 1, calls)
}

func TestDoValue(t *testing.T) {
	calls := 0
	v, err := retry.DoValue(context.Background(), retry.Options{}, func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, conflict()
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestOptions(t *testing.T) {
	opts := retry.DefaultOptions()
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, opts.Backoff(0))
	assert.Equal(t, 100*time.Millisecond, opts.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, opts.Backoff(2))

	calls := 0
	_ = retry.Do(context.Background(), retry.Options{MaxRetries: 0}, func(context.Context) error {
		calls++
		return conflict()
	})
	assert.Equal(t, retry.DefaultMaxRetries, calls, "non-positive attempts fall back to the default")
}
