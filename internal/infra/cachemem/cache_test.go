package cachemem

import (
	"testing"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

func TestOwnershipCache_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewOwnershipCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("alice", []domain.OwnedService{{ServiceInstanceID: "plat-1"}})
	got, ok := c.Get("alice")
	if !ok {
		t.Fatalf("expected cached entry")
	}
	if got[0].ServiceInstanceID != "plat-1" {
		t.Fatalf("unexpected entry: %+v", got)
	}

	got[0].ServiceInstanceID = "mutated"
	again, _ := c.Get("alice")
	if again[0].ServiceInstanceID != "plat-1" {
		t.Fatalf("cached slice was shared with the caller")
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("alice"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestOwnershipCache_DisabledWithZeroTTL(t *testing.T) {
	c := NewOwnershipCache(0)
	c.Set("alice", []domain.OwnedService{{ServiceInstanceID: "plat-1"}})
	if _, ok := c.Get("alice"); ok {
		t.Fatalf("expected zero ttl to disable caching")
	}
}

func TestOwnershipCache_Purge(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewOwnershipCache(time.Second)
	c.now = func() time.Time { return now }
	c.Set("alice", nil)
	c.Set("bob", nil)

	now = now.Add(2 * time.Second)
	c.Set("carol", nil)
	if n := c.Purge(); n != 2 {
		t.Fatalf("purged %d entries, want 2", n)
	}
	if _, ok := c.Get("carol"); !ok {
		t.Fatalf("expected fresh entry to survive purge")
	}
}
