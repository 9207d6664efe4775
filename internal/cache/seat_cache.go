// Package cache keeps a short lived copy of each show's seat map in Redis.
// Entries are dropped after every booking of the show, so the TTL only
// bounds how stale a map can get through a concurrent refill.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// SeatCache stores seat maps under "seats:<showID>".
type SeatCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSeatCache returns a cache over rdb.  A non-positive ttl falls back to
// thirty seconds.
func NewSeatCache(rdb *redis.Client, ttl time.Duration) *SeatCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SeatCache{rdb: rdb, ttl: ttl}
}

func seatKey(showID uint64) string {
	return fmt.Sprintf("seats:%d", showID)
}

// Get returns the cached seat map of a show.  ok is false on a miss.
func (c *SeatCache) Get(ctx context.Context, showID uint64) ([]model.ShowSeat, bool, error) {
	raw, err := c.rdb.Get(ctx, seatKey(showID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var seats []model.ShowSeat
	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil, false, fmt.Errorf("decode cached seats: %w", err)
	}
	return seats, true, nil
}

// Set stores the seat map of a show.
func (c *SeatCache) Set(ctx context.Context, showID uint64, seats []model.ShowSeat) error {
	body, err := json.Marshal(seats)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, seatKey(showID), body, c.ttl).Err()
}

// Invalidate drops the cached seat map of a show.
func (c *SeatCache) Invalidate(ctx context.Context, showID uint64) error {
	return c.rdb.Del(ctx, seatKey(showID)).Err()
}
