// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package places

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// coordPrecision quantizes cache keys to ~110m, well below the usual search radius.
const coordPrecision = 1e-3

// CachedProvider wraps a Provider, remembers successful lookups for ttl and collapses concurrent
// identical lookups into a single upstream request.
type CachedProvider struct {
	provider Provider
	ttl      time.Duration
	group    singleflight.Group

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	candidates []Candidate
	expiry     time.Time
}

func NewCachedProvider(provider Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		ttl:      ttl,
		cache:    make(map[string]cacheEntry),
	}
}

func (c *CachedProvider) Name() string {
	return "place cache using " + c.provider.Name()
}

func (c *CachedProvider) Category(ctx context.Context, query Query) ([]Candidate, error) {
	return c.lookup(ctx, "category", query, c.provider.Category)
}

func (c *CachedProvider) Keyword(ctx context.Context, query Query) ([]Candidate, error) {
	return c.lookup(ctx, "keyword", query, c.provider.Keyword)
}

// Sweep drops all expired entries and returns how many were removed.
func (c *CachedProvider) Sweep() int {
	now := time.Now()
	removed := 0
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.cache {
		if now.After(v.expiry) {
			delete(c.cache, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached lookups, expired or not.
func (c *CachedProvider) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *CachedProvider) lookup(ctx context.Context, op string, query Query,
	fn func(context.Context, Query) ([]Candidate, error),
) ([]Candidate, error) {
	key := cacheKey(op, query)

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiry) {
		return clone(entry.candidates), nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		candidates, err := fn(ctx, query)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[key] = cacheEntry{candidates: candidates, expiry: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(result.([]Candidate)), nil
}

func cacheKey(op string, query Query) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%d|%d", op, query.Kind, query.Keyword, query.RadiusMeters, query.Size,
		int64(math.Round(query.Coordinate.Lat/coordPrecision)),
		int64(math.Round(query.Coordinate.Lon/coordPrecision)))
}

// clone hands out copies so callers cannot reorder the cached slice.
func clone(in []Candidate) []Candidate {
	if in == nil {
		return nil
	}
	out := make([]Candidate, len(in))
	copy(out, in)
	return out
}
