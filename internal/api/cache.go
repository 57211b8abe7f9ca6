package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"klinik/internal/events"
)

// SlotCache is an optional redis read-through cache for slot computations.
// Keys carry the calendar date, so any booking write or status change for a
// date can drop every cached computation for it. The engine itself stays
// stateless; this lives entirely at the API boundary.
type SlotCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

// NewSlotCache creates a cache with the given TTL. Returns nil when the
// client is nil or ttl is not positive, which disables caching.
func NewSlotCache(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *SlotCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &SlotCache{redis: client, ttl: ttl, logger: logger}
}

// SubscribeInvalidation hooks the cache onto booking lifecycle events.
func (c *SlotCache) SubscribeInvalidation(bus *events.Bus) {
	if c == nil {
		return
	}
	handler := func(e events.Event) { c.InvalidateDate(context.Background(), e.Date) }
	bus.Subscribe(events.TypeBookingCreated, handler)
	bus.Subscribe(events.TypeBookingCancelled, handler)
	bus.Subscribe(events.TypeBookingCompleted, handler)
}

func slotKey(date time.Time, practitionerID, roomID string, duration, granularity int) string {
	return fmt.Sprintf("slots:%s:%s:%s:%d:%d",
		date.Format("2006-01-02"), practitionerID, roomID, duration, granularity)
}

// GetSlots returns a cached response if present.
func (c *SlotCache) GetSlots(ctx context.Context, date time.Time, practitionerID, roomID string, duration, granularity int) (*SlotsResponse, bool) {
	val, err := c.redis.Get(ctx, slotKey(date, practitionerID, roomID, duration, granularity)).Result()
	if err != nil {
		return nil, false
	}
	var resp SlotsResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// PutSlots stores a computed response. Failures are logged and ignored; the
// cache is an optimization, never a source of truth.
func (c *SlotCache) PutSlots(ctx context.Context, date time.Time, practitionerID, roomID string, duration, granularity int, resp *SlotsResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	key := slotKey(date, practitionerID, roomID, duration, granularity)
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("slot cache write failed")
	}
}

// InvalidateDate drops every cached slot computation for a calendar date.
func (c *SlotCache) InvalidateDate(ctx context.Context, date time.Time) {
	pattern := fmt.Sprintf("slots:%s:*", date.Format("2006-01-02"))
	iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil && c.logger != nil {
			c.logger.Debug().Err(err).Str("key", iter.Val()).Msg("slot cache invalidation failed")
		}
	}
	if err := iter.Err(); err != nil && c.logger != nil {
		c.logger.Debug().Err(err).Str("pattern", pattern).Msg("slot cache scan failed")
	}
}
