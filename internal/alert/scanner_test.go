package alert

import (
	"context"
	"testing"

	"sentiment-alerts/internal/store"
	"sentiment-alerts/internal/types"
)

// failingNews errors for one ticker and serves articles for the rest.
type failingNews struct {
	stubNews
	failFor string
}

func (f *failingNews) RecentArticles(ctx context.Context, ticker string, hours int) ([]types.NewsArticle, error) {
	if ticker == f.failFor {
		return nil, context.DeadlineExceeded
	}
	return f.stubNews.RecentArticles(ctx, ticker, hours)
}

func scanFixture(t *testing.T) (*store.Config, *stubPrices) {
	t.Helper()
	cfg := store.DefaultConfig()
	prices := &stubPrices{samples: map[string]*types.PriceSample{
		"AAPL": {Ticker: "AAPL", Price: 180.0, ChangePercent: -2.5},
		"TSLA": {Ticker: "TSLA", Price: 250.0, ChangePercent: 1.8},
		"MSFT": {Ticker: "MSFT", Price: 410.0, ChangePercent: -3.0},
	}}
	return cfg, prices
}

func TestCheckMultipleTickersReturnsOnlyHits(t *testing.T) {
	cfg, prices := scanFixture(t)
	news := &stubNews{articles: positiveHeadlines(5)}

	engine := NewEngine(cfg, prices, news, positiveClassifier(), nil)
	alerts := engine.CheckMultipleTickers(context.Background(), []string{"AAPL", "TSLA", "MSFT"}, 24)

	// AAPL and MSFT dropped against positive news; TSLA agrees and ZZZZ
	// is absent from the fixture.
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 divergences, got %d", len(alerts))
	}
	seen := map[string]int{}
	for _, a := range alerts {
		seen[a.Ticker]++
	}
	if seen["AAPL"] != 1 || seen["MSFT"] != 1 {
		t.Errorf("Expected AAPL and MSFT exactly once each, got %v", seen)
	}
}

func TestCheckMultipleTickersSkipsFailures(t *testing.T) {
	cfg, prices := scanFixture(t)
	news := &failingNews{
		stubNews: stubNews{articles: positiveHeadlines(5)},
		failFor:  "AAPL",
	}

	engine := NewEngine(cfg, prices, news, positiveClassifier(), nil)
	alerts := engine.CheckMultipleTickers(context.Background(), []string{"AAPL", "MSFT"}, 24)

	if len(alerts) != 1 {
		t.Fatalf("Failing ticker must not abort the batch, got %d alerts", len(alerts))
	}
	if alerts[0].Ticker != "MSFT" {
		t.Errorf("Expected MSFT, got %s", alerts[0].Ticker)
	}
}

func TestCheckMultipleTickersNormalizesInput(t *testing.T) {
	cfg, prices := scanFixture(t)
	news := &stubNews{articles: positiveHeadlines(5)}

	engine := NewEngine(cfg, prices, news, positiveClassifier(), nil)
	alerts := engine.CheckMultipleTickers(context.Background(), []string{"  aapl ", "msft"}, 24)

	if len(alerts) != 2 {
		t.Fatalf("Expected 2 divergences from lowercase padded input, got %d", len(alerts))
	}
	for _, a := range alerts {
		if a.Ticker != "AAPL" && a.Ticker != "MSFT" {
			t.Errorf("Unexpected ticker %q", a.Ticker)
		}
	}
}

func TestCheckMultipleTickersEmptyInput(t *testing.T) {
	cfg, prices := scanFixture(t)
	news := &stubNews{articles: positiveHeadlines(5)}

	engine := NewEngine(cfg, prices, news, positiveClassifier(), nil)
	alerts := engine.CheckMultipleTickers(context.Background(), nil, 24)
	if len(alerts) != 0 {
		t.Errorf("Expected no alerts for empty input, got %d", len(alerts))
	}
}

func TestScanRespectsConfiguredConcurrency(t *testing.T) {
	cfg, prices := scanFixture(t)
	cfg.Scan.Concurrency = 1
	news := &stubNews{articles: positiveHeadlines(5)}

	engine := NewEngine(cfg, prices, news, positiveClassifier(), nil)
	results := engine.scan(context.Background(), []string{"AAPL", "TSLA", "MSFT"}, 24)

	if len(results) != 3 {
		t.Fatalf("Expected one result per ticker, got %d", len(results))
	}
	// Results keep input order regardless of worker scheduling.
	for i, want := range []string{"AAPL", "TSLA", "MSFT"} {
		if results[i].Ticker != want {
			t.Errorf("Result %d: expected %s, got %s", i, want, results[i].Ticker)
		}
	}
}
