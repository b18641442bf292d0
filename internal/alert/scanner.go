package alert

import (
	"context"
	"strings"
	"sync"

	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/trace"
	"sentiment-alerts/internal/types"
)

// CheckMultipleTickers fans the detection pipeline out across tickers with
// a bounded worker pool. A failing ticker is skipped and logged; it never
// aborts the batch. Only positive hits are returned, each exactly once.
func (e *Engine) CheckMultipleTickers(ctx context.Context, tickers []string, hours int) []types.Alert {
	ctx, span := trace.StartSpan(ctx, "alert.CheckMultipleTickers")
	defer span.End()

	logger.Info(ctx, "Starting divergence scan", "tickers", len(tickers), "hours", hours)

	results := e.scan(ctx, tickers, hours)

	alerts := make([]types.Alert, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.ErrorWithErr(ctx, "Ticker scan failed, skipping", r.Err, "ticker", r.Ticker)
			continue
		}
		if r.Alert != nil {
			alerts = append(alerts, *r.Alert)
		}
	}

	logger.Info(ctx, "Divergence scan completed",
		"tickers", len(tickers), "divergences", len(alerts), "failed", failed)
	return alerts
}

// scan produces one ScanResult per ticker. Pipelines share no mutable
// state, so per-ticker concurrency needs no locking beyond the result
// slice indices.
func (e *Engine) scan(ctx context.Context, tickers []string, hours int) []types.ScanResult {
	concurrency := e.cfg.Scan.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]types.ScanResult, len(tickers))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ticker = strings.ToUpper(strings.TrimSpace(ticker))
			a, err := e.DetectDivergence(ctx, ticker, hours)
			results[i] = types.ScanResult{Ticker: ticker, Alert: a, Err: err}
		}(i, ticker)
	}

	wg.Wait()
	return results
}
