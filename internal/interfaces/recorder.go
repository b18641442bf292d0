package interfaces

import (
	"context"

	"sentiment-alerts/internal/types"
)

// AlertRecorder persists detected alerts for later inspection. Recording
// failures must not fail detection.
type AlertRecorder interface {
	Record(ctx context.Context, alert types.Alert) error
	Recent(ctx context.Context, limit int) ([]types.Alert, error)
}
