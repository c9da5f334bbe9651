package stock

import (
	"sync"
	"time"
)

const quoteCacheTTL = 300 * time.Second

type quoteCacheEntry struct {
	quote     Quote
	fetchedAt time.Time
}

// QuoteCache is a TTL-gated quote store keyed by ticker. Entries are only
// readable while younger than the TTL; stale entries stay put until the
// next successful fetch overwrites them. There is no background sweeper.
type QuoteCache struct {
	mu      sync.Mutex
	entries map[string]quoteCacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewQuoteCache(ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = quoteCacheTTL
	}
	return &QuoteCache{
		entries: map[string]quoteCacheEntry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached quote for ticker if it is still fresh.
func (c *QuoteCache) Get(ticker string) (Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[ticker]
	if !ok {
		return Quote{}, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		return Quote{}, false
	}
	return entry.quote, true
}

// Put stores quote unconditionally, replacing any prior entry.
func (c *QuoteCache) Put(ticker string, quote Quote) {
	c.mu.Lock()
	c.entries[ticker] = quoteCacheEntry{quote: quote, fetchedAt: c.now()}
	c.mu.Unlock()
}
