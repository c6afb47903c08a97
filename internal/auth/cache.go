package auth

import (
	"sync"
	"sync/atomic"
	"time"
)

// AuthCache is a TTL cache with stale-while-revalidate, keyed by full API key.
// Keeps DB + bcrypt off the hot path: fresh hits return immediately, stale
// hits return the old value while exactly one goroutine refreshes.
type AuthCache struct {
	store sync.Map // map[string]*cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	client     *ClientContext
	expiresAt  time.Time
	refreshing atomic.Bool
}

// CacheGetResult holds the outcome of a cache lookup.
type CacheGetResult struct {
	Client       *ClientContext
	Hit          bool
	NeedsRefresh bool // expired — caller should refresh in background
}

// NewAuthCache creates a cache with the given TTL.
func NewAuthCache(ttl time.Duration) *AuthCache {
	return &AuthCache{ttl: ttl}
}

// Get performs a non-blocking lookup. Stale entries are returned with
// NeedsRefresh=true for exactly one caller (CAS on the refreshing flag).
func (c *AuthCache) Get(apiKey string) CacheGetResult {
	v, ok := c.store.Load(apiKey)
	if !ok {
		return CacheGetResult{}
	}
	entry := v.(*cacheEntry)

	if time.Now().Before(entry.expiresAt) {
		return CacheGetResult{Client: entry.client, Hit: true}
	}

	needsRefresh := entry.refreshing.CompareAndSwap(false, true)
	return CacheGetResult{Client: entry.client, Hit: true, NeedsRefresh: needsRefresh}
}

// Set stores a client context with a fresh TTL.
func (c *AuthCache) Set(apiKey string, client *ClientContext) {
	c.store.Store(apiKey, &cacheEntry{
		client:    client,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Delete removes an entry, forcing the next lookup to go to the backend.
func (c *AuthCache) Delete(apiKey string) {
	c.store.Delete(apiKey)
}
