package price

import (
	"sync"
	"time"

	"github.com/greenshelf/scorer/pkg/models"
)

// quoteCache memoizes online quotes by normalized product name for a short
// TTL. Purely an optimization; correctness never depends on a hit.
type quoteCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cachedQuotes
}

type cachedQuotes struct {
	fetchedAt time.Time
	quotes    []models.PriceQuote
}

func newQuoteCache(ttl time.Duration) *quoteCache {
	return &quoteCache{
		ttl:     ttl,
		entries: make(map[string]cachedQuotes),
	}
}

func (c *quoteCache) get(identity string) ([]models.PriceQuote, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[identity]
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		delete(c.entries, identity)
		return nil, false
	}

	// quotes keep their original FetchedAt; within the TTL a hit may
	// report a fetch time up to ttl old, which is the honest value
	return entry.quotes, true
}

func (c *quoteCache) put(identity string, quotes []models.PriceQuote) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[identity] = cachedQuotes{
		fetchedAt: time.Now(),
		quotes:    quotes,
	}
}
