package alert

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"sentiment-alerts/internal/interfaces"
	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/sentiment"
	"sentiment-alerts/internal/store"
	"sentiment-alerts/internal/trace"
	"sentiment-alerts/internal/types"
)

// Engine runs the per-ticker divergence pipeline: fetch price, fetch news,
// classify headlines, aggregate, decide.
type Engine struct {
	cfg        *store.Config
	prices     interfaces.PriceSource
	news       interfaces.NewsProvider
	classifier interfaces.Classifier
	aggregator *sentiment.Aggregator
	recorder   interfaces.AlertRecorder // optional
	thresholds Thresholds
}

var _ interfaces.Detector = (*Engine)(nil)

// NewEngine wires the pipeline dependencies explicitly. recorder may be
// nil when alert history persistence is disabled.
func NewEngine(
	cfg *store.Config,
	prices interfaces.PriceSource,
	news interfaces.NewsProvider,
	classifier interfaces.Classifier,
	recorder interfaces.AlertRecorder,
) *Engine {
	return &Engine{
		cfg:        cfg,
		prices:     prices,
		news:       news,
		classifier: classifier,
		aggregator: sentiment.NewAggregator(cfg.Sentiment.LabelBand),
		recorder:   recorder,
		thresholds: ThresholdsFromConfig(cfg),
	}
}

// DetectDivergence checks one ticker. A nil alert with a nil error means
// no price data, insufficient news, or thresholds not crossed.
func (e *Engine) DetectDivergence(ctx context.Context, ticker string, hours int) (*types.Alert, error) {
	ctx, span := trace.StartSpan(ctx, "alert.DetectDivergence")
	defer span.End()

	ticker = strings.ToUpper(ticker)
	logger.Debug(ctx, "Checking divergence", "ticker", ticker, "hours", hours)

	sample, err := e.prices.CurrentPrice(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("price lookup for %s: %w", ticker, err)
	}
	if sample == nil {
		logger.Debug(ctx, "No price data", "ticker", ticker)
		return nil, nil
	}

	// News is sparse; a strict short window frequently yields zero
	// articles and suppresses valid signals, so the lookback is widened
	// for news only. The price sample is NOT widened.
	newsHours := hours
	if newsHours < e.cfg.News.LookbackFloorHours {
		newsHours = e.cfg.News.LookbackFloorHours
	}

	articles, err := e.news.RecentArticles(ctx, ticker, newsHours)
	if err != nil {
		return nil, fmt.Errorf("news lookup for %s: %w", ticker, err)
	}
	if len(articles) < e.cfg.News.MinArticles {
		logger.Debug(ctx, "Insufficient news", "ticker", ticker, "articles", len(articles))
		return nil, nil
	}

	classifications := e.classifyHeadlines(ctx, articles)
	aggregated := e.aggregator.Aggregate(classifications)

	logger.Debug(ctx, "Sentiment aggregated",
		"ticker", ticker,
		"label", aggregated.OverallLabel,
		"score", aggregated.OverallScore,
		"price_change", sample.ChangePercent,
	)

	divergence := Decide(aggregated.OverallScore, sample.ChangePercent, e.thresholds)
	if divergence == nil {
		logger.Debug(ctx, "No divergence", "ticker", ticker,
			"reason", e.absenceReason(aggregated.OverallScore, sample.ChangePercent))
		return nil, nil
	}

	a := e.buildAlert(ticker, sample, aggregated, *divergence, classifications)

	logger.Alert(ctx, ticker, string(divergence.Type), string(divergence.Signal),
		divergence.Magnitude, divergence.Confidence)

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, a); err != nil {
			logger.ErrorWithErr(ctx, "Failed to record alert", err, "ticker", ticker)
		}
	}

	return &a, nil
}

// classifyHeadlines classifies up to the configured headline limit.
func (e *Engine) classifyHeadlines(ctx context.Context, articles []types.NewsArticle) []types.TextClassification {
	limit := e.cfg.News.ClassifyLimit
	if len(articles) < limit {
		limit = len(articles)
	}

	classifications := make([]types.TextClassification, 0, limit)
	for _, a := range articles[:limit] {
		classifications = append(classifications, e.classifier.Classify(ctx, a.Headline))
	}
	return classifications
}

func (e *Engine) buildAlert(
	ticker string,
	sample *types.PriceSample,
	aggregated types.AggregatedSentiment,
	divergence types.Divergence,
	classifications []types.TextClassification,
) types.Alert {
	top := classifications
	if len(top) > 3 {
		top = top[:3]
	}

	return types.Alert{
		Ticker:     ticker,
		AlertType:  divergence.Type,
		DetectedAt: time.Now().UTC(),
		Sentiment: types.SentimentSummary{
			Score:         aggregated.OverallScore,
			Label:         aggregated.OverallLabel,
			ArticleCount:  aggregated.ArticleCount,
			PositiveCount: aggregated.PositiveCount,
			NegativeCount: aggregated.NegativeCount,
		},
		Price: types.PriceSummary{
			Current:       sample.Price,
			ChangePercent: sample.ChangePercent,
		},
		Divergence:   divergence,
		Message:      buildMessage(ticker, divergence, aggregated.OverallScore, sample.ChangePercent),
		TopHeadlines: top,
	}
}

func buildMessage(ticker string, d types.Divergence, sentimentScore, priceChange float64) string {
	if d.Type == types.BullishDivergence {
		return fmt.Sprintf(
			"BULLISH DIVERGENCE detected for %s! Despite positive news (sentiment: %+.2f), "+
				"the stock has dropped %.1f%%. Market may have overreacted - potential buying opportunity. "+
				"Magnitude: %.2f",
			ticker, sentimentScore, math.Abs(priceChange), d.Magnitude)
	}
	return fmt.Sprintf(
		"BEARISH DIVERGENCE detected for %s! Despite negative news (sentiment: %+.2f), "+
			"the stock has risen %.1f%%. Price may be unsustainable - potential selling opportunity. "+
			"Magnitude: %.2f",
		ticker, sentimentScore, priceChange, d.Magnitude)
}

// absenceReason explains why the decision came back empty, for debug logs.
func (e *Engine) absenceReason(sentimentScore, priceChange float64) string {
	switch {
	case math.Abs(sentimentScore) < e.thresholds.Sentiment:
		return fmt.Sprintf("sentiment too weak (%.2f < %.2f)", math.Abs(sentimentScore), e.thresholds.Sentiment)
	case math.Abs(priceChange) < e.thresholds.Price:
		return fmt.Sprintf("price change too small (%.2f%% < %.2f%%)", math.Abs(priceChange), e.thresholds.Price)
	default:
		return "sentiment and price agree"
	}
}
