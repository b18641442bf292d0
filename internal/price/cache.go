package price

import (
	"context"
	"sync"
	"time"

	"sentiment-alerts/internal/interfaces"
	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/types"
)

// CachedSource wraps a PriceSource with an in-process TTL cache
// (cache-aside: lookup, miss, fetch, store).
type CachedSource struct {
	source interfaces.PriceSource

	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	sample    types.PriceSample
	timestamp time.Time
}

var _ interfaces.PriceSource = (*CachedSource)(nil)

// NewCachedSource wraps source with a TTL cache. A background goroutine
// evicts expired entries.
func NewCachedSource(source interfaces.PriceSource, ttl time.Duration) *CachedSource {
	c := &CachedSource{
		source: source,
		data:   make(map[string]*cacheEntry),
		ttl:    ttl,
	}
	go c.cleanupLoop()
	return c
}

func (c *CachedSource) CurrentPrice(ctx context.Context, ticker string) (*types.PriceSample, error) {
	if sample, ok := c.get(ticker); ok {
		logger.Debug(ctx, "Price cache hit", "ticker", ticker)
		return &sample, nil
	}

	sample, err := c.source.CurrentPrice(ctx, ticker)
	if err != nil || sample == nil {
		return sample, err
	}

	c.set(ticker, *sample)
	return sample, nil
}

// Fresh reports whether a live cache entry exists for the ticker, letting
// callers surface cache vs live provenance.
func (c *CachedSource) Fresh(ticker string) bool {
	_, ok := c.get(ticker)
	return ok
}

func (c *CachedSource) get(ticker string) (types.PriceSample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[ticker]
	if !exists || time.Since(entry.timestamp) > c.ttl {
		return types.PriceSample{}, false
	}
	return entry.sample, true
}

func (c *CachedSource) set(ticker string, sample types.PriceSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[ticker] = &cacheEntry{sample: sample, timestamp: time.Now()}
}

func (c *CachedSource) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *CachedSource) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for ticker, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, ticker)
		}
	}
}
