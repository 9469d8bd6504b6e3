package cachemem

import (
	"slices"
	"sync"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/usecase"
)

// OwnershipCache remembers the authority's owned-services answer per principal for a fixed TTL.
type OwnershipCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	services  []domain.OwnedService
	expiresAt time.Time
}

func NewOwnershipCache(ttl time.Duration) *OwnershipCache {
	return &OwnershipCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *OwnershipCache) Get(key string) ([]domain.OwnedService, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return slices.Clone(entry.services), true
}

func (c *OwnershipCache) Set(key string, services []domain.OwnedService) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		services:  slices.Clone(services),
		expiresAt: c.now().Add(c.ttl),
	}
}

// Purge drops expired entries.
func (c *OwnershipCache) Purge() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

var _ usecase.OwnershipCache = (*OwnershipCache)(nil)
