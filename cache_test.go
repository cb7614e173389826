package maprender

import (
	"fmt"
	"testing"
	"time"

	"github.com/tdewolff/test"
)

func TestTTLCache(t *testing.T) {
	c := NewTTLCache[string, int](0)
	_, ok := c.Get("a")
	test.That(t, !ok)

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, 0)
	v, ok := c.Get("a")
	test.That(t, ok)
	test.T(t, v, 1)
	v, ok = c.Get("b")
	test.That(t, ok, "never expires")
	test.T(t, v, 2)
	test.T(t, c.Len(), 2)
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[int, int](0)
	for i := 0; i < 1000; i++ {
		c.Set(i, i, 10*time.Millisecond)
	}
	c.Set(-1, -1, 0)
	test.T(t, c.Len(), 1001)

	time.Sleep(50 * time.Millisecond)
	_, ok := c.Get(0)
	test.That(t, !ok, "expired")

	// keys that are never looked up again are dropped as well
	c.Set(-2, -2, 0)
	test.T(t, c.Len(), 2)
}

func TestTTLCacheCapacity(t *testing.T) {
	c := NewTTLCache[string, int](10)
	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprint(i), i, time.Hour)
	}
	test.T(t, c.Len(), 10)
	_, ok := c.Get("0")
	test.That(t, !ok, "evicted")
	v, ok := c.Get("99")
	test.That(t, ok)
	test.T(t, v, 99)
}
