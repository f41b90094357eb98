package zammad

import (
	"strings"
	"sync"
	"time"
)

// accessCacheKey identifies a single access check within one owner's
// entries. The cache is exact-match only: the signature preserves the
// normalized level order, so equivalent lists in a different order miss.
type accessCacheKey struct {
	groupID int64
	access  string
}

type accessCacheEntry struct {
	allowed   bool
	expiresAt time.Time // zero means no expiry
}

// AccessCache stores the results of single access checks. Both granted
// and denied outcomes are cached; store failures are not. It must be
// safe for concurrent use.
//
// The cache is best-effort. The service invalidates an owner's entries
// after every committed replace and after a purge, but writes performed
// outside the service (or on another process) are not observed until
// the entries expire. nil disables caching entirely.
type AccessCache interface {
	// Get retrieves a cached check result. ok is false when no live
	// entry exists.
	Get(ownerID, groupID int64, access []string) (allowed, ok bool)

	// Set stores a check result.
	Set(ownerID, groupID int64, access []string, allowed bool)

	// InvalidateOwner drops every entry cached for the owner.
	InvalidateOwner(ownerID int64)
}

// MemoryCache is the default in-memory AccessCache with optional TTL.
// Entries are grouped per owner so invalidation after a replace is a
// single map delete. The cache grows unbounded within its TTL window;
// long-running processes with volatile grants should set a TTL.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[int64]map[accessCacheKey]accessCacheEntry
	ttl   time.Duration // 0 means no expiry
}

// CacheOption configures a MemoryCache.
type CacheOption func(*MemoryCache)

// WithTTL sets the time-to-live for cache entries. Entries older than
// the TTL are dropped on read. A TTL of 0 (default) means entries live
// until the owner is invalidated.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *MemoryCache) {
		c.ttl = ttl
	}
}

// NewAccessCache creates a new in-process access cache.
func NewAccessCache(opts ...CacheOption) *MemoryCache {
	c := &MemoryCache{
		items: make(map[int64]map[accessCacheKey]accessCacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a cached check result.
func (c *MemoryCache) Get(ownerID, groupID int64, access []string) (bool, bool) {
	key := accessCacheKey{groupID: groupID, access: accessSignature(access)}

	c.mu.RLock()
	entry, ok := c.items[ownerID][key]
	c.mu.RUnlock()

	if !ok {
		return false, false
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.items[ownerID], key)
		c.mu.Unlock()
		return false, false
	}

	return entry.allowed, true
}

// Set stores a check result.
func (c *MemoryCache) Set(ownerID, groupID int64, access []string, allowed bool) {
	key := accessCacheKey{groupID: groupID, access: accessSignature(access)}

	entry := accessCacheEntry{allowed: allowed}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	owner, ok := c.items[ownerID]
	if !ok {
		owner = make(map[accessCacheKey]accessCacheEntry)
		c.items[ownerID] = owner
	}
	owner[key] = entry
	c.mu.Unlock()
}

// InvalidateOwner drops every entry cached for the owner.
func (c *MemoryCache) InvalidateOwner(ownerID int64) {
	c.mu.Lock()
	delete(c.items, ownerID)
	c.mu.Unlock()
}

// Size returns the number of live entries across all owners. Useful for
// monitoring cache growth.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, owner := range c.items {
		n += len(owner)
	}
	return n
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.items = make(map[int64]map[accessCacheKey]accessCacheEntry)
	c.mu.Unlock()
}

func accessSignature(access []string) string {
	return strings.Join(access, ",")
}

var _ AccessCache = (*MemoryCache)(nil)
