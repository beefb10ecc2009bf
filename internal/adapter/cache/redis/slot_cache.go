package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

// SlotCache stores the available-slot listing of each experience as one JSON
// value under slots:<experienceID>.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SlotCache = (*SlotCache)(nil)

func NewSlotCache(client *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{client: client, ttl: ttl}
}

func slotsKey(experienceID uuid.UUID) string {
	return fmt.Sprintf("slots:%s", experienceID)
}

func (c *SlotCache) GetSlots(ctx context.Context, experienceID uuid.UUID) ([]ports.SlotView, bool, error) {
	raw, err := c.client.Get(ctx, slotsKey(experienceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var views []ports.SlotView
	if err := json.Unmarshal(raw, &views); err != nil {
		return nil, false, fmt.Errorf("decode cached slots: %w", err)
	}
	return views, true, nil
}

func (c *SlotCache) SetSlots(ctx context.Context, experienceID uuid.UUID, slots []ports.SlotView) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, slotsKey(experienceID), raw, c.ttl).Err()
}

func (c *SlotCache) Invalidate(ctx context.Context, experienceID uuid.UUID) error {
	return c.client.Del(ctx, slotsKey(experienceID)).Err()
}
