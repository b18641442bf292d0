package interfaces

import (
	"context"

	"sentiment-alerts/internal/types"
)

// PriceSource supplies current quotes. A nil sample with a nil error means
// the ticker is unknown to the source.
type PriceSource interface {
	CurrentPrice(ctx context.Context, ticker string) (*types.PriceSample, error)
}
