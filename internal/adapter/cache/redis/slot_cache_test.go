package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

func TestSlotCache_GetSlots_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewSlotCache(db, 30*time.Second)
	expID := uuid.New()

	mock.ExpectGet("slots:" + expID.String()).RedisNil()

	views, ok, err := cache.GetSlots(context.Background(), expID)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotCache_SetThenGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewSlotCache(db, 30*time.Second)
	ctx := context.Background()
	expID := uuid.New()
	start := time.Date(2026, 7, 20, 10, 0, 0, 0, time.UTC)

	views := []ports.SlotView{{
		ID:             uuid.New(),
		ExperienceID:   expID,
		Date:           time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
		StartTime:      start,
		EndTime:        start.Add(2 * time.Hour),
		Capacity:       10,
		BookedCount:    4,
		AvailableSpots: 6,
		IsAvailable:    true,
		Version:        3,
	}}
	raw, err := json.Marshal(views)
	require.NoError(t, err)

	key := "slots:" + expID.String()
	mock.ExpectSet(key, raw, 30*time.Second).SetVal("OK")
	mock.ExpectGet(key).SetVal(string(raw))

	require.NoError(t, cache.SetSlots(ctx, expID, views))
	got, ok, err := cache.GetSlots(ctx, expID)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, views, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotCache_GetSlots_CorruptValue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewSlotCache(db, time.Minute)
	expID := uuid.New()

	mock.ExpectGet("slots:" + expID.String()).SetVal("not json")

	_, ok, err := cache.GetSlots(context.Background(), expID)

	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSlotCache_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewSlotCache(db, time.Minute)
	expID := uuid.New()

	mock.ExpectDel("slots:" + expID.String()).SetVal(1)

	assert.NoError(t, cache.Invalidate(context.Background(), expID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
