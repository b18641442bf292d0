package price

import (
	"time"

	"sentiment-alerts/internal/interfaces"
	"sentiment-alerts/internal/store"
)

// New builds the configured price source wrapped in a TTL cache.
func New(cfg *store.Config) *CachedSource {
	var src interfaces.PriceSource
	if cfg.DataSource == "LIVE" {
		src = NewYahooSource()
	} else {
		src = NewMockSource()
	}
	return NewCachedSource(src, time.Duration(cfg.Cache.PriceTTLSeconds)*time.Second)
}
