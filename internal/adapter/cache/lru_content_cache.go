package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"hotel-curator/internal/domain"
	"hotel-curator/internal/infra/metrics"
)

const lruBackend = "lru"

// LRUContentCache keeps static hotel content in process memory.
type LRUContentCache struct {
	entries *expirable.LRU[string, domain.RawContent]
}

func NewLRUContentCache(size int, ttl time.Duration) *LRUContentCache {
	if size <= 0 {
		size = 10000
	}
	return &LRUContentCache{entries: expirable.NewLRU[string, domain.RawContent](size, nil, ttl)}
}

var _ domain.ContentCache = (*LRUContentCache)(nil)

func (c *LRUContentCache) Get(_ context.Context, hid int64, language string) (domain.RawContent, bool) {
	content, ok := c.entries.Get(contentKey(hid, language))
	metrics.RecordCacheLookup(lruBackend, ok)
	return content, ok
}

func (c *LRUContentCache) Set(_ context.Context, language string, content domain.RawContent) {
	c.entries.Add(contentKey(content.HID, language), content)
}

// Len reports the number of live entries.
func (c *LRUContentCache) Len() int {
	return c.entries.Len()
}

func contentKey(hid int64, language string) string {
	return language + ":" + strconv.FormatInt(hid, 10)
}
