package store

import (
	"context"

	"github.com/vuthevietgps/chatbot2-sub001/internal/cache"
	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

// CachedFanpageStore fronts the fanpage store with the Redis cache for the
// webhook hot path. A nil cache passes straight through.
type CachedFanpageStore struct {
	inner *FanpageStore
	cache *cache.FanpageCache
}

func NewCachedFanpageStore(inner *FanpageStore, c *cache.FanpageCache) *CachedFanpageStore {
	return &CachedFanpageStore{inner: inner, cache: c}
}

func (s *CachedFanpageStore) ByPageID(ctx context.Context, pageID string) (*models.Fanpage, error) {
	if page := s.cache.GetFanpage(ctx, pageID); page != nil {
		return page, nil
	}
	page, err := s.inner.ByPageID(ctx, pageID)
	if err != nil || page == nil {
		return page, err
	}
	s.cache.SetFanpage(ctx, page)
	return page, nil
}

// IncrementMonthlySent passes through and drops the cached copy so the stale
// counter is not served for a full TTL.
func (s *CachedFanpageStore) IncrementMonthlySent(ctx context.Context, pageID string) error {
	err := s.inner.IncrementMonthlySent(ctx, pageID)
	if err == nil {
		s.cache.InvalidateFanpage(ctx, pageID)
	}
	return err
}

// Invalidate drops a cached fanpage after an operator update.
func (s *CachedFanpageStore) Invalidate(ctx context.Context, pageID string) {
	s.cache.InvalidateFanpage(ctx, pageID)
}
