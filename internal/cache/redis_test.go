package cache

import (
	"context"
	"testing"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"

	"github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) *FanpageCache {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "")
	if c == nil {
		t.Fatal("expected a live cache")
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFanpageCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	page := &models.Fanpage{
		ID:        1,
		PageID:    "111",
		Name:      "Shop A",
		AIEnabled: true,
	}
	c.SetFanpage(ctx, page)

	got := c.GetFanpage(ctx, "111")
	if got == nil {
		t.Fatal("expected a cache hit")
	}
	if got.PageID != "111" || got.Name != "Shop A" || !got.AIEnabled {
		t.Errorf("cached fanpage = %+v", got)
	}
}

func TestFanpageCacheMiss(t *testing.T) {
	c := newTestCache(t)

	if got := c.GetFanpage(context.Background(), "nope"); got != nil {
		t.Errorf("miss should return nil, got %+v", got)
	}
}

func TestFanpageCacheInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.SetFanpage(ctx, &models.Fanpage{PageID: "111", Name: "Before"})
	c.InvalidateFanpage(ctx, "111")

	if got := c.GetFanpage(ctx, "111"); got != nil {
		t.Errorf("invalidated entry should be gone, got %+v", got)
	}
}

func TestFanpageCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "")
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	c.SetFanpage(ctx, &models.Fanpage{PageID: "111"})
	mr.FastForward(fanpageTTL + 1)

	if got := c.GetFanpage(ctx, "111"); got != nil {
		t.Errorf("expired entry should be gone, got %+v", got)
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *FanpageCache
	ctx := context.Background()

	if c := New("", ""); c != nil {
		t.Errorf("empty addr should disable the cache")
	}
	if got := c.GetFanpage(ctx, "111"); got != nil {
		t.Errorf("nil cache get = %+v", got)
	}
	c.SetFanpage(ctx, &models.Fanpage{PageID: "111"})
	c.InvalidateFanpage(ctx, "111")
	if err := c.Close(); err != nil {
		t.Errorf("nil cache close: %v", err)
	}
}
