package sentiment

import (
	"time"

	"sentiment-alerts/internal/interfaces"
	"sentiment-alerts/internal/store"
)

// NewClassifier builds the classifier selected by the configuration.
func NewClassifier(cfg *store.Config) interfaces.Classifier {
	if cfg.Classifier.Provider == "MODEL" {
		return NewModelClassifier(
			cfg.Classifier.Endpoint,
			time.Duration(cfg.Classifier.TimeoutSeconds)*time.Second,
			cfg.Classifier.MaxInputBytes,
		)
	}
	return NewRuleClassifier(cfg.Classifier.MaxInputBytes)
}
