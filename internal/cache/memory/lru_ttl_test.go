package memory

import (
	"testing"
	"time"
)

func TestLRUTTLExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewLRUTTL[string, int](4, 0, time.Minute).WithClock(func() time.Time { return now })

	c.Set("k", 1, 0)
	if v, ok := c.Get("k"); !ok || v != 1 {
		t.Fatalf("get before expiry: v=%d ok=%v", v, ok)
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after ttl expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be dropped, len=%d", c.Len())
	}
}

func TestLRUTTLEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUTTL[string, string](2, 0, time.Minute)
	c.Set("a", "aa", 0)
	c.Set("b", "bb", 0)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("touch a")
	}
	c.Set("c", "cc", 0)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to remain")
	}
}

func TestLRUTTLByteCap(t *testing.T) {
	c := NewLRUTTL[string, []byte](10, 5, time.Minute)
	c.Set("a", []byte("aaa"), 3)
	c.Set("b", []byte("bbb"), 3)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a to be evicted by byte cap")
	}
	st := c.Stats()
	if st.Bytes != 3 || st.Entries != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}

	c.Set("b", []byte("b"), 1)
	if st := c.Stats(); st.Bytes != 1 {
		t.Fatalf("overwrite should adjust bytes, got %d", st.Bytes)
	}
}

func TestLRUTTLStats(t *testing.T) {
	c := NewLRUTTL[int, int](2, 0, time.Minute)
	c.Get(1)
	c.Set(1, 1, 0)
	c.Get(1)
	c.Delete(1)
	c.Get(1)
	st := c.Stats()
	if st.Hits != 1 || st.Misses != 2 || st.Entries != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestLRUTTLNilSafe(t *testing.T) {
	var c *LRUTTL[string, int]
	c.Set("a", 1, 0)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("nil cache should miss")
	}
	if c.Len() != 0 {
		t.Fatalf("nil cache len")
	}
}
