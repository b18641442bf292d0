package types

import "time"

// SentimentLabel classifies the direction of a piece of text.
type SentimentLabel string

const (
	LabelNegative SentimentLabel = "negative"
	LabelNeutral  SentimentLabel = "neutral"
	LabelPositive SentimentLabel = "positive"
)

// TextClassification is the result of classifying a single text.
// Text is truncated to 100 chars for display purposes.
type TextClassification struct {
	Text       string         `json:"text"`
	Label      SentimentLabel `json:"sentiment"`
	Score      float64        `json:"score"`
	Confidence float64        `json:"confidence"`
}

// AggregatedSentiment combines per-text classifications for one ticker.
// The label counts and the weighted score are independent views and may
// legitimately disagree (many weak positives vs few strong negatives).
type AggregatedSentiment struct {
	OverallLabel  SentimentLabel `json:"overall_sentiment"`
	OverallScore  float64        `json:"overall_score"`
	ArticleCount  int            `json:"article_count"`
	PositiveCount int            `json:"positive_count"`
	NegativeCount int            `json:"negative_count"`
	NeutralCount  int            `json:"neutral_count"`
}

// PriceSample is a point-in-time quote for a ticker.
type PriceSample struct {
	Ticker        string    `json:"ticker"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewsArticle is a single scraped headline.
type NewsArticle struct {
	Headline      string `json:"headline"`
	Source        string `json:"source"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
	Summary       string `json:"summary,omitempty"`
}

// DivergenceType identifies the direction of a detected divergence.
type DivergenceType string

const (
	BullishDivergence DivergenceType = "bullish_divergence"
	BearishDivergence DivergenceType = "bearish_divergence"
)

// Signal is the trading action implied by a divergence.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
)

// Divergence exists only when both thresholds are crossed. A nil
// *Divergence means "no actionable signal", never a zero-valued record.
type Divergence struct {
	Type       DivergenceType `json:"type"`
	Signal     Signal         `json:"signal"`
	Magnitude  float64        `json:"magnitude"`
	Confidence float64        `json:"confidence"`
}

// SentimentSummary is the sentiment slice embedded in an alert.
type SentimentSummary struct {
	Score         float64        `json:"score"`
	Label         SentimentLabel `json:"label"`
	ArticleCount  int            `json:"article_count"`
	PositiveCount int            `json:"positive_count"`
	NegativeCount int            `json:"negative_count"`
}

// PriceSummary is the price slice embedded in an alert.
type PriceSummary struct {
	Current       float64 `json:"current"`
	ChangePercent float64 `json:"change_percent"`
}

// Alert is created fresh per detection call and never mutated.
type Alert struct {
	Ticker       string               `json:"ticker"`
	AlertType    DivergenceType       `json:"alert_type"`
	DetectedAt   time.Time            `json:"detected_at"`
	Sentiment    SentimentSummary     `json:"sentiment"`
	Price        PriceSummary         `json:"price"`
	Divergence   Divergence           `json:"divergence"`
	Message      string               `json:"message"`
	TopHeadlines []TextClassification `json:"top_headlines"`
}

// ScanResult is the per-ticker outcome of a batch scan. Exactly one of
// Alert and Err is meaningful: a skipped ticker carries Err, a clean
// ticker with no divergence carries a nil Alert.
type ScanResult struct {
	Ticker string `json:"ticker"`
	Alert  *Alert `json:"alert,omitempty"`
	Err    error  `json:"-"`
}
