package alert

import (
	"math"

	"sentiment-alerts/internal/store"
	"sentiment-alerts/internal/types"
)

// Thresholds are the tunables of the divergence decision. The default
// sentiment/price pair (0.1 / 0.1) is deliberately aggressive to maximize
// recall; production deployments should raise them.
type Thresholds struct {
	Sentiment float64
	Price     float64
	// Price change percent runs well beyond the [-1,1] sentiment scale,
	// so it is scaled down before combining. MagnitudeDivisor and
	// ConfidenceDivisor are independent constants; do not conflate them.
	MagnitudeDivisor  float64
	ConfidenceDivisor float64
}

// ThresholdsFromConfig reads the decision tunables from configuration.
func ThresholdsFromConfig(cfg *store.Config) Thresholds {
	return Thresholds{
		Sentiment:         cfg.Divergence.SentimentThreshold,
		Price:             cfg.Divergence.PriceThreshold,
		MagnitudeDivisor:  cfg.Divergence.MagnitudePriceDivisor,
		ConfidenceDivisor: cfg.Divergence.ConfidencePriceDivisor,
	}
}

// Decide is the pure divergence decision. Rules are evaluated in order and
// the first match wins; nil means no actionable signal. It performs no I/O
// and is total over its inputs.
func Decide(sentimentScore, priceChange float64, t Thresholds) *types.Divergence {
	if math.Abs(sentimentScore) < t.Sentiment {
		return nil
	}
	if math.Abs(priceChange) < t.Price {
		return nil
	}

	// Bullish: good news, falling price. Contrarian buy.
	if sentimentScore > t.Sentiment && priceChange < -t.Price {
		return &types.Divergence{
			Type:       types.BullishDivergence,
			Signal:     types.SignalBuy,
			Magnitude:  magnitude(sentimentScore, priceChange, t),
			Confidence: confidence(sentimentScore, priceChange, t),
		}
	}

	// Bearish: bad news, rising price. Contrarian sell.
	if sentimentScore < -t.Sentiment && priceChange > t.Price {
		return &types.Divergence{
			Type:       types.BearishDivergence,
			Signal:     types.SignalSell,
			Magnitude:  magnitude(sentimentScore, priceChange, t),
			Confidence: confidence(sentimentScore, priceChange, t),
		}
	}

	// Sentiment and price agree: no divergence.
	return nil
}

func magnitude(sentimentScore, priceChange float64, t Thresholds) float64 {
	m := math.Abs(sentimentScore) + math.Abs(priceChange)/t.MagnitudeDivisor
	return math.Round(m*100) / 100
}

// confidence is capped by the weaker of the two signals.
func confidence(sentimentScore, priceChange float64, t Thresholds) float64 {
	return math.Min(math.Abs(sentimentScore), math.Abs(priceChange/t.ConfidenceDivisor))
}
