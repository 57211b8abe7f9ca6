package api

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klinik/internal/events"
)

func newTestCache(t *testing.T) (*SlotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewSlotCache(client, time.Minute, &testLogger)
	require.NotNil(t, cache)
	return cache, mr
}

func TestNewSlotCacheDisabled(t *testing.T) {
	assert.Nil(t, NewSlotCache(nil, time.Minute, &testLogger))

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	assert.Nil(t, NewSlotCache(client, 0, &testLogger))

	// A nil cache tolerates subscription wiring
	var disabled *SlotCache
	assert.NotPanics(t, func() { disabled.SubscribeInvalidation(events.NewBus()) })
}

func TestSlotCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	resp := &SlotsResponse{Date: "2026-03-02", Slots: []string{"09:00", "10:00"}}
	cache.PutSlots(ctx, monday, "prac-1", "", 45, 60, resp)

	got, ok := cache.GetSlots(ctx, monday, "prac-1", "", 45, 60)
	require.True(t, ok)
	assert.Equal(t, resp, got)

	// Different parameters miss
	_, ok = cache.GetSlots(ctx, monday, "prac-1", "", 45, 15)
	assert.False(t, ok)
	_, ok = cache.GetSlots(ctx, monday.AddDate(0, 0, 1), "prac-1", "", 45, 60)
	assert.False(t, ok)
}

func TestSlotCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.PutSlots(ctx, monday, "prac-1", "", 45, 60, &SlotsResponse{Date: "2026-03-02"})
	mr.FastForward(2 * time.Minute)

	_, ok := cache.GetSlots(ctx, monday, "prac-1", "", 45, 60)
	assert.False(t, ok)
}

func TestInvalidateDateDropsAllVariants(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	other := monday.AddDate(0, 0, 1)
	cache.PutSlots(ctx, monday, "prac-1", "", 45, 60, &SlotsResponse{Date: "2026-03-02"})
	cache.PutSlots(ctx, monday, "prac-2", "room-a", 45, 15, &SlotsResponse{Date: "2026-03-02"})
	cache.PutSlots(ctx, other, "prac-1", "", 45, 60, &SlotsResponse{Date: "2026-03-03"})

	cache.InvalidateDate(ctx, monday)

	_, ok := cache.GetSlots(ctx, monday, "prac-1", "", 45, 60)
	assert.False(t, ok)
	_, ok = cache.GetSlots(ctx, monday, "prac-2", "room-a", 45, 15)
	assert.False(t, ok)

	// Other dates stay cached
	_, ok = cache.GetSlots(ctx, other, "prac-1", "", 45, 60)
	assert.True(t, ok)
}

func TestSubscribeInvalidation(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	bus := events.NewBus()
	cache.SubscribeInvalidation(bus)

	for _, eventType := range []string{
		events.TypeBookingCreated, events.TypeBookingCancelled, events.TypeBookingCompleted,
	} {
		cache.PutSlots(ctx, monday, "prac-1", "", 45, 60, &SlotsResponse{Date: "2026-03-02"})
		_, ok := cache.GetSlots(ctx, monday, "prac-1", "", 45, 60)
		require.True(t, ok)

		bus.Publish(events.Event{Type: eventType, BookingID: "b1", Date: monday})

		_, ok = cache.GetSlots(ctx, monday, "prac-1", "", 45, 60)
		assert.False(t, ok, "event %s must invalidate the date", eventType)
	}
}
