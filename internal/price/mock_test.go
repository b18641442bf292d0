package price

import (
	"context"
	"math"
	"testing"
	"time"

	"sentiment-alerts/internal/types"
)

func TestMockSourceKnownTicker(t *testing.T) {
	src := NewMockSource()

	sample, err := src.CurrentPrice(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Mock source must not fail: %v", err)
	}
	if sample == nil {
		t.Fatal("Expected a price sample")
	}
	if sample.Ticker != "AAPL" {
		t.Errorf("Expected normalized ticker AAPL, got %s", sample.Ticker)
	}
	// Jitter stays within +-2 of the anchor price.
	if math.Abs(sample.Price-185.50) > 2.01 {
		t.Errorf("Price %.2f too far from anchor 185.50", sample.Price)
	}
	if math.Abs(sample.ChangePercent) > 3.01 {
		t.Errorf("Change %.2f outside +-3 band", sample.ChangePercent)
	}
	if sample.Volume < 5_000_000 || sample.Volume >= 50_000_000 {
		t.Errorf("Volume %d outside expected range", sample.Volume)
	}
	if sample.Timestamp.IsZero() {
		t.Error("Expected non-zero timestamp")
	}
}

func TestMockSourceUnknownTickerUsesFallbackAnchor(t *testing.T) {
	src := NewMockSource()

	sample, err := src.CurrentPrice(context.Background(), "ZZZZ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(sample.Price-100.0) > 2.01 {
		t.Errorf("Expected fallback anchor 100, got %.2f", sample.Price)
	}
}

// fixedSource counts upstream fetches and serves a constant sample.
type fixedSource struct {
	calls  int
	sample types.PriceSample
}

func (f *fixedSource) CurrentPrice(_ context.Context, ticker string) (*types.PriceSample, error) {
	f.calls++
	s := f.sample
	s.Ticker = ticker
	return &s, nil
}

type absentSource struct{}

func (absentSource) CurrentPrice(_ context.Context, _ string) (*types.PriceSample, error) {
	return nil, nil
}

func TestCachedSourceServesFromCache(t *testing.T) {
	upstream := &fixedSource{sample: types.PriceSample{Price: 185.5, ChangePercent: 1.2}}
	cached := NewCachedSource(upstream, time.Minute)

	first, err := cached.CurrentPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := cached.CurrentPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if upstream.calls != 1 {
		t.Errorf("Expected 1 upstream fetch, got %d", upstream.calls)
	}
	if first.Price != second.Price {
		t.Errorf("Cached sample must match: %.2f vs %.2f", first.Price, second.Price)
	}
}

func TestCachedSourceExpiry(t *testing.T) {
	upstream := &fixedSource{sample: types.PriceSample{Price: 185.5}}
	cached := NewCachedSource(upstream, 30*time.Millisecond)

	if _, err := cached.CurrentPrice(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := cached.CurrentPrice(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}

	if upstream.calls != 2 {
		t.Errorf("Expected refetch after TTL, got %d upstream calls", upstream.calls)
	}
}

func TestCachedSourceFresh(t *testing.T) {
	upstream := &fixedSource{sample: types.PriceSample{Price: 185.5}}
	cached := NewCachedSource(upstream, time.Minute)

	if cached.Fresh("AAPL") {
		t.Error("Fresh must be false before any fetch")
	}
	if _, err := cached.CurrentPrice(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	if !cached.Fresh("AAPL") {
		t.Error("Fresh must be true after a fetch within the TTL")
	}
}

func TestCachedSourceDoesNotCacheAbsence(t *testing.T) {
	cached := NewCachedSource(absentSource{}, time.Minute)

	sample, err := cached.CurrentPrice(context.Background(), "ZZZZ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sample != nil {
		t.Error("Expected nil sample for absent ticker")
	}
	if cached.Fresh("ZZZZ") {
		t.Error("Absence must not create a cache entry")
	}
}
