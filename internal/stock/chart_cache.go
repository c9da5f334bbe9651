package stock

import (
	"sync"
	"time"
)

const chartCacheTTL = 60 * time.Second

type chartCacheEntry struct {
	createdAt time.Time
	image     []byte
}

// chartCache holds rendered PNG history charts for a short window so
// repeated loads from the extension UI do not re-hit the provider.
type chartCache struct {
	mu      sync.Mutex
	entries map[string]chartCacheEntry
	now     func() time.Time
}

func newChartCache() *chartCache {
	return &chartCache{entries: map[string]chartCacheEntry{}, now: time.Now}
}

func (c *chartCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.createdAt) >= chartCacheTTL {
		return nil, false
	}
	img := make([]byte, len(entry.image))
	copy(img, entry.image)
	return img, true
}

func (c *chartCache) set(key string, img []byte) {
	c.mu.Lock()
	c.entries[key] = chartCacheEntry{createdAt: c.now(), image: img}
	c.mu.Unlock()
}
