package interfaces

import (
	"context"

	"sentiment-alerts/internal/types"
)

// Detector runs the divergence pipeline for one or many tickers.
type Detector interface {
	// DetectDivergence returns nil when no price data is available, when
	// no qualifying news exists, or when thresholds are not crossed.
	DetectDivergence(ctx context.Context, ticker string, hours int) (*types.Alert, error)

	// CheckMultipleTickers runs DetectDivergence per ticker and returns
	// only the positive hits. A failing ticker is skipped, never aborts
	// the batch.
	CheckMultipleTickers(ctx context.Context, tickers []string, hours int) []types.Alert
}
