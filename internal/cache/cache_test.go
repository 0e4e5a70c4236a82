package cache

import (
	"testing"
	"time"
)

func TestTTLSetGetInvalidate(t *testing.T) {
	c := NewTTL(time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Fatalf("want 42, got %v (hit=%v)", v, ok)
	}

	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("hit after invalidate")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewTTL(time.Minute)
	base := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("miss before expiry")
	}

	base = base.Add(61 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("hit after expiry")
	}
}

func TestNoopAlwaysMisses(t *testing.T) {
	var c Cache = Noop{}
	c.Set("k", "v")
	if _, ok := c.Get("k"); ok {
		t.Fatal("noop cache returned a hit")
	}
}
