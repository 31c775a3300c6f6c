package booking

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedClient puts an in-process TTL cache in front of a Client. Slot
// availability tolerates short staleness, and the reservation service rate
// limits aggressively, so repeated lookups for the same restaurant/day are
// served from memory until the entry expires.
type CachedClient struct {
	inner Client
	cache *expirable.LRU[string, []Slot]
}

func NewCachedClient(inner Client, size int, ttl time.Duration) *CachedClient {
	return &CachedClient{
		inner: inner,
		cache: expirable.NewLRU[string, []Slot](size, nil, ttl),
	}
}

func (c *CachedClient) Slots(ctx context.Context, restaurantID string, date time.Time) ([]Slot, error) {
	key := restaurantID + "|" + date.Format("2006-01-02")

	if slots, ok := c.cache.Get(key); ok {
		return slots, nil
	}

	slots, err := c.inner.Slots(ctx, restaurantID, date)
	if err != nil {
		// Errors are not cached; the next lookup retries the service.
		return nil, err
	}

	c.cache.Add(key, slots)
	return slots, nil
}
