package price

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"sentiment-alerts/internal/types"
)

// basePrices anchors the mock quotes so repeated lookups stay plausible.
var basePrices = map[string]float64{
	"AAPL": 185.50, "SPY": 478.25, "MSFT": 420.75,
	"GOOGL": 142.30, "TSLA": 248.90, "NVDA": 505.20,
	"META": 388.65, "AMZN": 178.40, "JPM": 195.80,
}

// MockSource serves synthetic quotes for offline and test runs. It knows
// every ticker and never fails.
type MockSource struct {
	rng *rand.Rand
}

func NewMockSource() *MockSource {
	return &MockSource{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (m *MockSource) CurrentPrice(_ context.Context, ticker string) (*types.PriceSample, error) {
	ticker = strings.ToUpper(ticker)

	base, ok := basePrices[ticker]
	if !ok {
		base = 100.0
	}

	price := base + m.rng.Float64()*4 - 2
	change := m.rng.Float64()*6 - 3

	return &types.PriceSample{
		Ticker:        ticker,
		Price:         round2(price),
		ChangePercent: round2(change),
		Volume:        5_000_000 + m.rng.Int63n(45_000_000),
		Timestamp:     time.Now().UTC(),
	}, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
