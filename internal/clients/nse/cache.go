package nse

import (
	"encoding/json"
	"net/url"
	"sync"
	"time"
)

const defaultCacheTTL = 120 * time.Second

type cacheEntry struct {
	capturedAt time.Time
	payload    json.RawMessage
}

// lastGoodCache remembers the most recent successful payload per request so
// brief provider outages can be bridged without serving arbitrarily stale
// data. Entries live for the process lifetime and are overwritten in place;
// freshness is checked on read.
type lastGoodCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newLastGoodCache(ttl time.Duration) *lastGoodCache {
	return &lastGoodCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *lastGoodCache) put(key string, payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{capturedAt: c.now(), payload: payload}
}

// getFresh returns the cached payload for key if it was captured within the
// TTL window. Older entries are left in place but never returned.
func (c *lastGoodCache) getFresh(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.capturedAt) > c.ttl {
		return nil, false
	}
	return entry.payload, true
}

// cacheKey canonicalizes a request as URL plus parameters sorted by key, so
// the same logical request always maps to the same entry.
func cacheKey(endpointURL string, params url.Values) string {
	return endpointURL + "?" + params.Encode()
}
