package apikit

import (
	"strings"
	"sync"
	"time"
)

// responseCache holds raw GET response bodies for a short TTL with key-based
// invalidation. Mutating services invalidate by key prefix so related list
// views are refetched.
type responseCache struct {
	mutex   sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (cache *responseCache) get(key string) ([]byte, bool) {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	entry, ok := cache.entries[key]
	if !ok {
		cache.purgeExpiredLocked()
		return nil, false
	}
	if cache.now().After(entry.expiresAt) {
		delete(cache.entries, key)
		cache.purgeExpiredLocked()
		return nil, false
	}
	return entry.payload, true
}

func (cache *responseCache) set(key string, payload []byte) {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	cache.purgeExpiredLocked()
	cache.entries[key] = cacheEntry{
		payload:   payload,
		expiresAt: cache.now().Add(cache.ttl),
	}
}

// invalidate drops every entry whose key starts with any of the prefixes.
func (cache *responseCache) invalidate(prefixes ...string) {
	cache.mutex.Lock()
	defer cache.mutex.Unlock()
	for key := range cache.entries {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				delete(cache.entries, key)
				break
			}
		}
	}
}

func (cache *responseCache) purgeExpiredLocked() {
	if len(cache.entries) == 0 {
		return
	}
	now := cache.now()
	for key, entry := range cache.entries {
		if now.After(entry.expiresAt) {
			delete(cache.entries, key)
		}
	}
}
