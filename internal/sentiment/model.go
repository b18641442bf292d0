package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/trace"
	"sentiment-alerts/internal/types"
)

// backendState tracks the model backend lifecycle. It transitions exactly
// once at first use, guarded by sync.Once.
type backendState int

const (
	backendUnloaded backendState = iota
	backendReady
	backendUnavailable
)

// ModelClassifier scores text through an external inference endpoint that
// serves a FinBERT-style 3-way distribution over {negative, neutral,
// positive}. Any backend failure degrades to the rule-based scorer; the
// caller never sees an error.
type ModelClassifier struct {
	endpoint   string
	httpClient *http.Client
	fallback   *RuleClassifier
	maxInput   int

	loadOnce sync.Once
	mu       sync.RWMutex
	state    backendState
}

// NewModelClassifier creates a model-backed classifier with a rule-based
// fallback. The backend is probed lazily on first Classify call.
func NewModelClassifier(endpoint string, timeout time.Duration, maxInputBytes int) *ModelClassifier {
	return &ModelClassifier{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		fallback:   NewRuleClassifier(maxInputBytes),
		maxInput:   maxInputBytes,
		state:      backendUnloaded,
	}
}

type inferenceRequest struct {
	Text string `json:"text"`
}

type inferenceResponse struct {
	Probabilities struct {
		Negative float64 `json:"negative"`
		Neutral  float64 `json:"neutral"`
		Positive float64 `json:"positive"`
	} `json:"probabilities"`
}

func (mc *ModelClassifier) Classify(ctx context.Context, text string) types.TextClassification {
	ctx, span := trace.StartSpan(ctx, "sentiment.Classify")
	defer span.End()

	mc.ensureLoaded(ctx)

	if mc.currentState() != backendReady {
		return mc.fallback.Classify(ctx, text)
	}

	result, err := mc.score(ctx, truncate(text, mc.maxInput))
	if err != nil {
		logger.ErrorWithErr(ctx, "Model inference failed, using rule-based fallback", err)
		return mc.fallback.Classify(ctx, text)
	}
	result.Text = displayText(text)
	return result
}

// ensureLoaded probes the backend exactly once. Concurrent callers block
// on the same in-flight probe rather than issuing duplicates.
func (mc *ModelClassifier) ensureLoaded(ctx context.Context) {
	mc.loadOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, mc.endpoint+"/health", nil)
		if err != nil {
			mc.setState(backendUnavailable)
			return
		}
		resp, err := mc.httpClient.Do(req)
		if err != nil {
			logger.Warn(ctx, "Sentiment model backend unavailable, rule-based fallback active",
				"endpoint", mc.endpoint, "error", err)
			mc.setState(backendUnavailable)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			logger.Warn(ctx, "Sentiment model backend unhealthy, rule-based fallback active",
				"endpoint", mc.endpoint, "status", resp.StatusCode)
			mc.setState(backendUnavailable)
			return
		}

		logger.Info(ctx, "Sentiment model backend ready", "endpoint", mc.endpoint)
		mc.setState(backendReady)
	})
}

func (mc *ModelClassifier) score(ctx context.Context, text string) (types.TextClassification, error) {
	bb, _ := json.Marshal(inferenceRequest{Text: text})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mc.endpoint+"/classify", bytes.NewReader(bb))
	if err != nil {
		return types.TextClassification{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := mc.httpClient.Do(req)
	if err != nil {
		return types.TextClassification{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return types.TextClassification{}, fmt.Errorf("inference http %d", resp.StatusCode)
	}

	var r inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return types.TextClassification{}, err
	}

	return fromDistribution(r.Probabilities.Negative, r.Probabilities.Neutral, r.Probabilities.Positive)
}

// fromDistribution maps a 3-way probability distribution to a
// classification. The score mapping is deliberately asymmetric: neutral is
// exactly 0.0, positive is +confidence and negative is -confidence, so
// score magnitude tracks model certainty rather than a fixed -1/0/+1 grid.
func fromDistribution(neg, neu, pos float64) (types.TextClassification, error) {
	if neg < 0 || neu < 0 || pos < 0 {
		return types.TextClassification{}, errors.New("malformed distribution: negative probability")
	}

	label := types.LabelNegative
	confidence := neg
	if neu > confidence {
		label = types.LabelNeutral
		confidence = neu
	}
	if pos > confidence {
		label = types.LabelPositive
		confidence = pos
	}

	score := 0.0
	switch label {
	case types.LabelPositive:
		score = confidence
	case types.LabelNegative:
		score = -confidence
	}

	return types.TextClassification{
		Label:      label,
		Score:      round3(score),
		Confidence: round3(confidence),
	}, nil
}

func (mc *ModelClassifier) currentState() backendState {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.state
}

func (mc *ModelClassifier) setState(s backendState) {
	mc.mu.Lock()
	mc.state = s
	mc.mu.Unlock()
}
