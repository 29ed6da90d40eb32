package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"parkspot/internal/domain/availability"
)

func TestAvailabilityCache_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	q := availability.Query{LocationID: 1, CheckIn: time.Unix(100, 0), CheckOut: time.Unix(200, 0)}

	var nilCache *AvailabilityCache
	assert.False(t, nilCache.Enabled())

	c := NewAvailabilityCache(nil, time.Minute)
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Set(ctx, q, availability.Result{TotalSpots: 1, Remaining: 1}))
	assert.NoError(t, c.InvalidateLocation(ctx, 1))

	_, ok := c.Get(ctx, q)
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	q := availability.Query{LocationID: 12, CheckIn: time.Unix(100, 0), CheckOut: time.Unix(200, 0)}
	assert.Equal(t, "availability:12:3:100:200", entryKey(q, 3))
	assert.Equal(t, "availability:12:gen", generationKey(12))
}

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	assert.Nil(t, NewRedisClient(RedisConfig{}))
}
