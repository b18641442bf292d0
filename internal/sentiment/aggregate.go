package sentiment

import (
	"math"

	"sentiment-alerts/internal/types"
)

// Aggregator reduces per-text classifications into one overall sentiment
// using a confidence-weighted average. The reduction is commutative, so
// callers may classify headlines in any order.
type Aggregator struct {
	labelBand float64
}

// NewAggregator creates an aggregator. labelBand is the |score| band
// beyond which the overall label leaves neutral.
func NewAggregator(labelBand float64) *Aggregator {
	return &Aggregator{labelBand: labelBand}
}

// Aggregate computes the overall sentiment. Empty input or zero total
// weight yields a neutral zero-score result, never a division by zero.
func (a *Aggregator) Aggregate(classifications []types.TextClassification) types.AggregatedSentiment {
	agg := types.AggregatedSentiment{
		OverallLabel: types.LabelNeutral,
		ArticleCount: len(classifications),
	}
	if len(classifications) == 0 {
		return agg
	}

	totalWeight := 0.0
	weightedSum := 0.0
	for _, c := range classifications {
		weightedSum += c.Score * c.Confidence
		totalWeight += c.Confidence

		switch c.Label {
		case types.LabelPositive:
			agg.PositiveCount++
		case types.LabelNegative:
			agg.NegativeCount++
		default:
			agg.NeutralCount++
		}
	}

	avg := 0.0
	if totalWeight > 0 {
		avg = weightedSum / totalWeight
	}
	agg.OverallScore = round3(avg)

	switch {
	case avg > a.labelBand:
		agg.OverallLabel = types.LabelPositive
	case avg < -a.labelBand:
		agg.OverallLabel = types.LabelNegative
	}
	return agg
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
