package interfaces

import (
	"context"

	"sentiment-alerts/internal/types"
)

// NewsProvider fetches recent articles for a ticker. Results are
// deduplicated by case-insensitive headline and capped; callers must not
// assume strict recency ordering.
type NewsProvider interface {
	RecentArticles(ctx context.Context, ticker string, hours int) ([]types.NewsArticle, error)
}
