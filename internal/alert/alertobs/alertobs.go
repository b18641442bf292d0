package alertobs

import (
	"context"

	"sentiment-alerts/internal/interfaces"
	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/trace"
	"sentiment-alerts/internal/types"
)

// observableDetector wraps a Detector with observability (logging & tracing)
type observableDetector struct {
	detector interfaces.Detector
}

// Compile-time interface check
var _ interfaces.Detector = (*observableDetector)(nil)

// Wrap wraps a detector with observability middleware
func Wrap(detector interfaces.Detector) interfaces.Detector {
	return &observableDetector{detector: detector}
}

func (od *observableDetector) DetectDivergence(ctx context.Context, ticker string, hours int) (*types.Alert, error) {
	ctx, span := trace.StartSpan(ctx, "detector.DetectDivergence")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Divergence check requested", "ticker", ticker, "hours", hours)

	a, err := od.detector.DetectDivergence(ctx, ticker, hours)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Divergence check failed", err, "ticker", ticker)
		return nil, err
	}

	if a == nil {
		logger.InfoSkip(ctx, 1, "No divergence found", "ticker", ticker, "hours", hours)
		return nil, nil
	}

	logger.InfoSkip(ctx, 1, "Divergence check completed",
		"ticker", ticker,
		"alert_type", a.AlertType,
		"signal", a.Divergence.Signal,
		"magnitude", a.Divergence.Magnitude,
		"confidence", a.Divergence.Confidence,
	)
	return a, nil
}

func (od *observableDetector) CheckMultipleTickers(ctx context.Context, tickers []string, hours int) []types.Alert {
	ctx, span := trace.StartSpan(ctx, "detector.CheckMultipleTickers")
	defer span.End()

	alerts := od.detector.CheckMultipleTickers(ctx, tickers, hours)

	logger.InfoSkip(ctx, 1, "Batch scan completed",
		"tickers", len(tickers),
		"divergences", len(alerts),
	)
	return alerts
}
