// Package cache holds origins known to be banned so repeat offenders are
// denied without a ban store round trip. It is positive-only: an origin is
// either known banned or unknown, and nothing is ever unmarked.
package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultCapacity = 5000
	DefaultTTL      = time.Hour
)

// Cache is a bounded, expiring set of banned origins. Entries leave by LRU
// eviction when capacity is reached or when their TTL elapses. Safe for
// concurrent use; no lock is held across I/O because there is none.
type Cache struct {
	lru *expirable.LRU[string, struct{}]
}

// New builds a cache holding at most capacity origins for ttl each.
func New(capacity int, ttl time.Duration) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	return &Cache{lru: expirable.NewLRU[string, struct{}](capacity, nil, ttl)}, nil
}

// IsKnownBanned reports whether origin was marked and has not aged out.
// An empty origin is never banned.
func (c *Cache) IsKnownBanned(origin string) bool {
	if origin == "" {
		return false
	}
	_, ok := c.lru.Get(origin)
	return ok
}

// MarkBanned records origin as banned, refreshing its age if present.
func (c *Cache) MarkBanned(origin string) {
	if origin == "" {
		return
	}
	c.lru.Add(origin, struct{}{})
}

// Len returns the number of entries, including any not yet swept after expiry.
func (c *Cache) Len() int {
	return c.lru.Len()
}
