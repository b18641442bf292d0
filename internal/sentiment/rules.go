package sentiment

import (
	"context"
	"strings"

	"sentiment-alerts/internal/types"
)

// Financial vocabulary for the fallback scorer. Matching is by
// case-insensitive substring, so "earnings beat" also matches "beat".
var positiveTerms = []string{
	"profit", "gain", "growth", "up", "rise", "high", "beat",
	"exceed", "strong", "record", "success", "positive", "bull",
	"upgrade", "outperform", "revenue", "earnings beat",
}

var negativeTerms = []string{
	"loss", "decline", "down", "fall", "drop", "low", "miss",
	"weak", "bear", "downgrade", "underperform", "lawsuit",
	"fraud", "scandal", "bankruptcy", "layoff", "cut",
}

// ruleConfidence reflects lower trust in the lexical scorer versus a model.
const ruleConfidence = 0.5

// RuleClassifier scores text by counting indicator terms. It is fully
// deterministic and never fails, which makes it the fallback of last
// resort for every other classifier.
type RuleClassifier struct {
	maxInputBytes int
}

// NewRuleClassifier creates a lexical rule-based classifier. maxInputBytes
// bounds the text length considered when scoring; <=0 disables truncation.
func NewRuleClassifier(maxInputBytes int) *RuleClassifier {
	return &RuleClassifier{maxInputBytes: maxInputBytes}
}

func (rc *RuleClassifier) Classify(_ context.Context, text string) types.TextClassification {
	scored := truncate(text, rc.maxInputBytes)
	lower := strings.ToLower(scored)

	posCount := 0
	for _, term := range positiveTerms {
		if strings.Contains(lower, term) {
			posCount++
		}
	}
	negCount := 0
	for _, term := range negativeTerms {
		if strings.Contains(lower, term) {
			negCount++
		}
	}

	label := types.LabelNeutral
	score := 0.0
	switch {
	case posCount > negCount:
		label = types.LabelPositive
		score = capScore(float64(posCount) * 0.3)
	case negCount > posCount:
		label = types.LabelNegative
		score = -capScore(float64(negCount) * 0.3)
	}

	return types.TextClassification{
		Text:       displayText(text),
		Label:      label,
		Score:      score,
		Confidence: ruleConfidence,
	}
}

func capScore(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	return s
}

// displayText keeps the first 100 chars of the original text.
func displayText(text string) string {
	return truncate(text, 100)
}

func truncate(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	return text[:n]
}
