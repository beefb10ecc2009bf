package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*Locker, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	l := NewLocker(db)
	l.token = func() string { return "token-1" }
	return l, mock
}

func TestLocker_AcquireAndRelease(t *testing.T) {
	l, mock := newTestLocker(t)
	ctx := context.Background()

	mock.ExpectSetNX("lock:reconciliation", "token-1", 5*time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"lock:reconciliation"}, "token-1").SetVal(int64(1))

	release, ok, err := l.Acquire(ctx, "reconciliation", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NoError(t, release(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocker_HeldElsewhere(t *testing.T) {
	l, mock := newTestLocker(t)

	mock.ExpectSetNX("lock:reconciliation", "token-1", time.Minute).SetVal(false)

	release, ok, err := l.Acquire(context.Background(), "reconciliation", time.Minute)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, release)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocker_RedisDown(t *testing.T) {
	l, mock := newTestLocker(t)

	mock.ExpectSetNX("lock:reconciliation", "token-1", time.Minute).SetErr(errors.New("connection refused"))

	_, ok, err := l.Acquire(context.Background(), "reconciliation", time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
}
