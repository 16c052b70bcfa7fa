package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"

	"github.com/redis/go-redis/v9"
)

const fanpageTTL = 5 * time.Minute

// FanpageCache keeps hot fanpage lookups out of the database. A nil cache is
// valid and passes every call through.
type FanpageCache struct {
	client *redis.Client
}

// New connects to Redis. An empty addr disables caching (returns nil).
func New(addr, password string) *FanpageCache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &FanpageCache{client: client}
}

func fanpageKey(pageID string) string {
	return "fanpage:" + pageID
}

// GetFanpage returns the cached fanpage or nil on miss or error.
func (c *FanpageCache) GetFanpage(ctx context.Context, pageID string) *models.Fanpage {
	if c == nil {
		return nil
	}
	data, err := c.client.Get(ctx, fanpageKey(pageID)).Bytes()
	if err != nil {
		return nil
	}
	var page models.Fanpage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil
	}
	return &page
}

// SetFanpage caches a fanpage for a short TTL.
func (c *FanpageCache) SetFanpage(ctx context.Context, page *models.Fanpage) {
	if c == nil || page == nil {
		return
	}
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	c.client.Set(ctx, fanpageKey(page.PageID), data, fanpageTTL)
}

// InvalidateFanpage drops a cached fanpage after an operator update.
func (c *FanpageCache) InvalidateFanpage(ctx context.Context, pageID string) {
	if c == nil {
		return
	}
	c.client.Del(ctx, fanpageKey(pageID))
}

// Close releases the underlying connection.
func (c *FanpageCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
