package application

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// analyticsCache stores recently computed occupancy figures to avoid
// repeated interval scans for identical queries while the reservation store
// remains unchanged.
type analyticsCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]analyticsCacheEntry
}

type analyticsCacheEntry struct {
	rate      float64
	rooms     []Room
	expiresAt time.Time
}

func newAnalyticsCache(ttl time.Duration, maxEntries int, now func() time.Time) *analyticsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &analyticsCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]analyticsCacheEntry),
	}
}

func (c *analyticsCache) GetRate(key string) (float64, bool) {
	entry, ok := c.get(key)
	if !ok {
		return 0, false
	}
	return entry.rate, true
}

func (c *analyticsCache) GetRooms(key string) ([]Room, bool) {
	entry, ok := c.get(key)
	if !ok {
		return nil, false
	}
	return cloneRooms(entry.rooms), true
}

func (c *analyticsCache) StoreRate(key string, rate float64) {
	c.store(key, analyticsCacheEntry{rate: rate})
}

func (c *analyticsCache) StoreRooms(key string, rooms []Room) {
	c.store(key, analyticsCacheEntry{rooms: cloneRooms(rooms)})
}

func (c *analyticsCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]analyticsCacheEntry)
	c.mu.Unlock()
}

func (c *analyticsCache) get(key string) (analyticsCacheEntry, bool) {
	if c == nil {
		return analyticsCacheEntry{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return analyticsCacheEntry{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return analyticsCacheEntry{}, false
	}
	return entry, true
}

func (c *analyticsCache) store(key string, entry analyticsCacheEntry) {
	if c == nil {
		return
	}
	entry.expiresAt = c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = entry
}

func (c *analyticsCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *analyticsCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneRooms(rooms []Room) []Room {
	if len(rooms) == 0 {
		return nil
	}
	out := make([]Room, len(rooms))
	copy(out, rooms)
	return out
}

func buildOccupancyCacheKey(roomID string, start, end time.Time) string {
	builder := strings.Builder{}
	builder.WriteString("rate|")
	builder.WriteString(roomID)
	builder.WriteString("|")
	builder.WriteString(start.UTC().Format(time.RFC3339Nano))
	builder.WriteString("|")
	builder.WriteString(end.UTC().Format(time.RFC3339Nano))
	return builder.String()
}

func buildAvailabilityCacheKey(start, end time.Time, partySize int) string {
	builder := strings.Builder{}
	builder.WriteString("avail|")
	builder.WriteString(start.UTC().Format(time.RFC3339Nano))
	builder.WriteString("|")
	builder.WriteString(end.UTC().Format(time.RFC3339Nano))
	builder.WriteString("|")
	builder.WriteString(strconv.Itoa(partySize))
	return builder.String()
}
