package price

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/quote"

	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/trace"
	"sentiment-alerts/internal/types"
)

// YahooSource fetches live quotes from Yahoo Finance.
type YahooSource struct{}

func NewYahooSource() *YahooSource {
	return &YahooSource{}
}

func (y *YahooSource) CurrentPrice(ctx context.Context, ticker string) (*types.PriceSample, error) {
	ctx, span := trace.StartSpan(ctx, "price.CurrentPrice")
	defer span.End()

	ticker = strings.ToUpper(ticker)

	q, err := quote.Get(ticker)
	if err != nil {
		return nil, fmt.Errorf("yahoo quote for %s: %w", ticker, err)
	}
	if q == nil || q.RegularMarketPrice <= 0 {
		// Unknown ticker: absent, not an error.
		logger.Debug(ctx, "No quote data", "ticker", ticker)
		return nil, nil
	}

	return &types.PriceSample{
		Ticker:        ticker,
		Price:         q.RegularMarketPrice,
		ChangePercent: round2(q.RegularMarketChangePercent),
		Volume:        int64(q.RegularMarketVolume),
		Timestamp:     time.Now().UTC(),
	}, nil
}
