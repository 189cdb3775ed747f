package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const trackingKeyPrefix = "tracking:"

// TrackingCache is a read-through Redis cache for the public tracking
// projection. Lookups on /track are unauthenticated and read-heavy; every
// status transition re-sets the key. A cache miss or failure falls back to
// Postgres.
type TrackingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTrackingCache(rdb *redis.Client, ttl time.Duration) *TrackingCache {
	return &TrackingCache{rdb: rdb, ttl: ttl}
}

func (c *TrackingCache) Get(ctx context.Context, trackingNumber string) (*TrackingView, bool) {
	raw, err := c.rdb.Get(ctx, trackingKeyPrefix+trackingNumber).Bytes()
	if err != nil {
		return nil, false
	}
	view := &TrackingView{}
	if err := json.Unmarshal(raw, view); err != nil {
		return nil, false
	}
	return view, true
}

func (c *TrackingCache) Set(ctx context.Context, view *TrackingView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, trackingKeyPrefix+view.TrackingNumber, raw, c.ttl).Err()
}
