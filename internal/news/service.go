package news

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sentiment-alerts/internal/interfaces"
	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/store"
	"sentiment-alerts/internal/trace"
	"sentiment-alerts/internal/types"
)

// Service provides ticker-scoped news retrieval with deduplication and an
// in-process TTL cache.
type Service struct {
	scraper     *Scraper
	maxArticles int
	cache       *articleCache
}

var _ interfaces.NewsProvider = (*Service)(nil)

// NewService creates the news service from configuration.
func NewService(cfg *store.Config) *Service {
	return &Service{
		scraper:     NewScraper(time.Duration(cfg.News.ScraperTimeoutSeconds) * time.Second),
		maxArticles: cfg.News.MaxArticles,
		cache:       newArticleCache(time.Duration(cfg.News.CacheTTLSeconds) * time.Second),
	}
}

// RecentArticles returns deduplicated articles for a ticker within the
// window, capped at the configured maximum. Articles are deduplicated by
// case-insensitive headline; ordering is by source, not strict recency.
func (s *Service) RecentArticles(ctx context.Context, ticker string, hours int) ([]types.NewsArticle, error) {
	ctx, span := trace.StartSpan(ctx, "news.RecentArticles")
	defer span.End()

	ticker = strings.ToUpper(ticker)
	key := cacheKey(ticker, hours)

	if cached, ok := s.cache.get(key); ok {
		logger.Debug(ctx, "News cache hit", "ticker", ticker, "hours", hours)
		return cached, nil
	}

	articles := s.scraper.Scrape(ctx, ticker, hours)
	unique := dedupeByHeadline(articles)

	if len(unique) > s.maxArticles {
		unique = unique[:s.maxArticles]
	}

	s.cache.set(key, unique)
	return unique, nil
}

func dedupeByHeadline(articles []types.NewsArticle) []types.NewsArticle {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]types.NewsArticle, 0, len(articles))
	for _, a := range articles {
		if a.Headline == "" {
			continue
		}
		lower := strings.ToLower(a.Headline)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		unique = append(unique, a)
	}
	return unique
}

func cacheKey(ticker string, hours int) string {
	return fmt.Sprintf("%s:%d", ticker, hours)
}

// articleCache stores scraped article lists temporarily.
type articleCache struct {
	mu   sync.RWMutex
	data map[string]*articleEntry
	ttl  time.Duration
}

type articleEntry struct {
	articles  []types.NewsArticle
	timestamp time.Time
}

func newArticleCache(ttl time.Duration) *articleCache {
	c := &articleCache{
		data: make(map[string]*articleEntry),
		ttl:  ttl,
	}
	go c.cleanupLoop()
	return c
}

func (c *articleCache) get(key string) ([]types.NewsArticle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists || time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.articles, true
}

func (c *articleCache) set(key string, articles []types.NewsArticle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = &articleEntry{articles: articles, timestamp: time.Now()}
}

func (c *articleCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *articleCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, key)
		}
	}
}
