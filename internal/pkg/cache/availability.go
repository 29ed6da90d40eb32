package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"parkspot/internal/domain/availability"
)

// AvailabilityCache is a read-through cache for the public availability
// endpoint. Entries are keyed by a per-location generation, so bumping the
// generation invalidates every cached range of that location at once.
// Booking creation never reads from it.
type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func (c *AvailabilityCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *AvailabilityCache) Get(ctx context.Context, q availability.Query) (availability.Result, bool) {
	if !c.Enabled() {
		return availability.Result{}, false
	}
	gen, err := c.generation(ctx, q.LocationID)
	if err != nil {
		return availability.Result{}, false
	}
	bs, err := c.rdb.Get(ctx, entryKey(q, gen)).Bytes()
	if err != nil {
		return availability.Result{}, false
	}
	var res availability.Result
	if err := json.Unmarshal(bs, &res); err != nil {
		return availability.Result{}, false
	}
	return res, true
}

func (c *AvailabilityCache) Set(ctx context.Context, q availability.Query, res availability.Result) error {
	if !c.Enabled() {
		return nil
	}
	gen, err := c.generation(ctx, q.LocationID)
	if err != nil {
		return err
	}
	bs, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, entryKey(q, gen), bs, c.ttl).Err()
}

func (c *AvailabilityCache) InvalidateLocation(ctx context.Context, locationID int64) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Incr(ctx, generationKey(locationID)).Err()
}

func (c *AvailabilityCache) generation(ctx context.Context, locationID int64) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(locationID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func generationKey(locationID int64) string {
	return fmt.Sprintf("availability:%d:gen", locationID)
}

func entryKey(q availability.Query, gen int64) string {
	return fmt.Sprintf("availability:%d:%d:%d:%d", q.LocationID, gen, q.CheckIn.Unix(), q.CheckOut.Unix())
}
