// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/wneessen/waybar-whereto/internal/geobus"
)

// coordPrecision is the precision used to quantize coordinates (0.01 degrees ≈ 1.1 km)
const coordPrecision = 1e-2

type cacheKey struct {
	Provider string
	LatQ     int32
	LonQ     int32
}

type cacheEntry struct {
	Address Address
	Expiry  time.Time
}

type searchEntry struct {
	Coordinate geobus.Coordinate
	Expiry     time.Time
}

// CachedGeocoder wraps a Geocoder and remembers its answers. Reverse lookups are keyed by
// quantized coordinates, so teleport targets that land close to each other share an entry.
type CachedGeocoder struct {
	coder   Geocoder
	ttlHit  time.Duration
	ttlMiss time.Duration

	mu       sync.RWMutex
	cache    map[cacheKey]cacheEntry
	searches map[string]searchEntry
}

func NewCachedGeocoder(coder Geocoder, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	return &CachedGeocoder{
		coder:    coder,
		ttlHit:   ttlHit,
		ttlMiss:  ttlMiss,
		cache:    make(map[cacheKey]cacheEntry),
		searches: make(map[string]searchEntry),
	}
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Reverse(ctx context.Context, coords geobus.Coordinate) (Address, error) {
	key := newKey(c.coder.Name(), coords.Lat, coords.Lon)

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.Expiry) {
		addr := entry.Address
		addr.CacheHit = true
		return addr, nil
	}

	addr, err := c.coder.Reverse(ctx, coords)
	if err != nil {
		return addr, err
	}

	ttl := c.ttlHit
	if !addr.AddressFound {
		ttl = c.ttlMiss
	}
	c.mu.Lock()
	c.cache[key] = cacheEntry{Address: addr, Expiry: time.Now().Add(ttl)}
	c.mu.Unlock()

	return addr, nil
}

func (c *CachedGeocoder) Search(ctx context.Context, address string) (geobus.Coordinate, error) {
	key := c.coder.Name() + "|" + strings.ToLower(strings.TrimSpace(address))

	c.mu.RLock()
	entry, ok := c.searches[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.Expiry) {
		coords := entry.Coordinate
		coords.CacheHit = true
		return coords, nil
	}

	coords, err := c.coder.Search(ctx, address)
	if err != nil {
		return coords, err
	}

	ttl := c.ttlHit
	if !coords.Found {
		ttl = c.ttlMiss
	}
	c.mu.Lock()
	c.searches[key] = searchEntry{Coordinate: coords, Expiry: time.Now().Add(ttl)}
	c.mu.Unlock()

	return coords, nil
}

// Sweep drops all expired entries and returns how many were removed.
func (c *CachedGeocoder) Sweep() int {
	now := time.Now()
	removed := 0

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range c.cache {
		if now.After(v.Expiry) {
			delete(c.cache, k)
			removed++
		}
	}
	for k, v := range c.searches {
		if now.After(v.Expiry) {
			delete(c.searches, k)
			removed++
		}
	}
	return removed
}

func quantizeCoord(val float64) int32 {
	return int32(math.Round(val / coordPrecision))
}

func newKey(provider string, lat, lon float64) cacheKey {
	return cacheKey{
		Provider: provider,
		LatQ:     quantizeCoord(lat),
		LonQ:     quantizeCoord(lon),
	}
}
