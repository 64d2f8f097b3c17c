package embedding

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
	"time"
)

// cacheEntry is one cached vector plus its expiry.
type cacheEntry struct {
	vector  []float32
	expires time.Time
}

// Cache is the two-tier TTL key-value cache for embeddings: query vectors
// under "embedding:query:<hash>" with a 24h TTL, listing vectors under
// "embedding:listing:<id>" with a 7-day TTL. A process-local stand-in for
// the external cache collaborator.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]cacheEntry{}}
}

const (
	QueryTTL   = 24 * time.Hour
	ListingTTL = 7 * 24 * time.Hour
)

// QueryKey returns the cache key for a normalized query text.
func QueryKey(normalizedText string) string {
	return "embedding:query:" + hashText(normalizedText)
}

// ListingKey returns the cache key for a listing id.
func ListingKey(listingID string) string {
	return "embedding:listing:" + listingID
}

func hashText(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector for key, if present and unexpired. Cache
// read failures are non-fatal, so Get never returns an error — a miss
// looks identical to an expired/absent entry.
func (c *Cache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.vector, true
}

// Set stores vector under key with the given TTL. Cache write failures
// are non-fatal; this in-process implementation cannot fail.
func (c *Cache) Set(key string, vector []float32, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{vector: vector, expires: time.Now().Add(ttl)}
}
