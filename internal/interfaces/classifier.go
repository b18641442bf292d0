package interfaces

import (
	"context"

	"sentiment-alerts/internal/types"
)

// Classifier maps free text to a sentiment classification. Classify never
// fails: implementations that depend on an external backend must degrade
// to a rule-based result rather than return an error.
type Classifier interface {
	Classify(ctx context.Context, text string) types.TextClassification
}
