package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/types"
)

type scanRequest struct {
	Tickers []string `json:"tickers" binding:"required"`
	Hours   int      `json:"hours"`
}

type stockSentiment struct {
	types.AggregatedSentiment
	RecentHeadlines []types.TextClassification `json:"recent_headlines"`
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "Sentiment Market Alerts API",
		"version":     "1.0.0",
		"description": "Real-time market sentiment analysis with divergence detection",
		"endpoints": gin.H{
			"health":     "/health",
			"stock_data": "/api/v1/stocks/{ticker}",
			"news":       "/api/v1/news/{ticker}",
			"alerts":     "/api/v1/alerts/{ticker}",
			"scan":       "/api/v1/alerts/scan",
			"recent":     "/api/v1/alerts/recent",
		},
	})
}

func (s *Server) health(c *gin.Context) {
	dbStatus := "healthy"
	if s.history != nil {
		if err := s.history.Ping(); err != nil {
			dbStatus = "degraded"
		}
	} else {
		dbStatus = "disabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"database": dbStatus,
		},
	})
}

// getStock returns the current quote plus a sentiment summary when enough
// recent coverage exists.
func (s *Server) getStock(c *gin.Context) {
	ctx := c.Request.Context()
	ticker := strings.ToUpper(c.Param("ticker"))

	source := "live"
	if s.prices.Fresh(ticker) {
		source = "cache"
	}

	sample, err := s.prices.CurrentPrice(ctx, ticker)
	if err != nil {
		logger.ErrorWithErr(ctx, "Price lookup failed", err, "ticker", ticker)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "PRICE_LOOKUP_FAILED",
			"ticker": ticker,
		})
		return
	}
	if sample == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "TICKER_NOT_FOUND",
			"ticker": ticker,
		})
		return
	}

	var sentimentData *stockSentiment
	articles, err := s.news.RecentArticles(ctx, ticker, 24)
	if err != nil {
		// Sentiment is best-effort on this endpoint.
		logger.ErrorWithErr(ctx, "Sentiment lookup failed", err, "ticker", ticker)
	} else if len(articles) >= 3 {
		limit := s.cfg.News.ClassifyLimit
		if len(articles) < limit {
			limit = len(articles)
		}

		classifications := make([]types.TextClassification, 0, limit)
		for _, a := range articles[:limit] {
			classifications = append(classifications, s.classifier.Classify(ctx, a.Headline))
		}
		aggregated := s.aggregator.Aggregate(classifications)
		aggregated.ArticleCount = len(articles)

		recent := classifications
		if len(recent) > 5 {
			recent = recent[:5]
		}
		sentimentData = &stockSentiment{
			AggregatedSentiment: aggregated,
			RecentHeadlines:     recent,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":    ticker,
		"price":     sample,
		"sentiment": sentimentData,
		"source":    source,
	})
}

func (s *Server) getNews(c *gin.Context) {
	ctx := c.Request.Context()
	ticker := strings.ToUpper(c.Param("ticker"))
	hours := queryInt(c, "hours", 24)

	articles, err := s.news.RecentArticles(ctx, ticker, hours)
	if err != nil {
		logger.ErrorWithErr(ctx, "News lookup failed", err, "ticker", ticker)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "NEWS_LOOKUP_FAILED",
			"ticker": ticker,
		})
		return
	}
	if len(articles) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "NO_NEWS_FOUND",
			"ticker": ticker,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":           ticker,
		"articles_found":   len(articles),
		"time_range_hours": hours,
		"articles":         articles,
	})
}

func (s *Server) checkAlert(c *gin.Context) {
	ctx := c.Request.Context()
	ticker := strings.ToUpper(c.Param("ticker"))
	hours := queryInt(c, "hours", 1)

	a, err := s.detector.DetectDivergence(ctx, ticker, hours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "INTERNAL_ERROR",
			"ticker": ticker,
		})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":         "NO_DIVERGENCE_FOUND",
			"message":       "No divergence detected for " + ticker + ". Sentiment and price are aligned.",
			"ticker":        ticker,
			"hours_checked": hours,
		})
		return
	}

	c.JSON(http.StatusOK, a)
}

func (s *Server) scanAlerts(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": err.Error()})
		return
	}
	if req.Hours <= 0 {
		req.Hours = 1
	}
	s.runScan(c, req.Tickers, req.Hours)
}

func (s *Server) quickScan(c *gin.Context) {
	raw := strings.Split(c.Param("tickers"), ",")
	tickers := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			tickers = append(tickers, t)
		}
	}

	s.runScan(c, tickers, queryInt(c, "hours", 1))
}

// runScan enforces the batch cap before invoking the detector.
func (s *Server) runScan(c *gin.Context, tickers []string, hours int) {
	if len(tickers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": "no tickers provided"})
		return
	}
	if len(tickers) > s.cfg.Scan.MaxTickers {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "TOO_MANY_TICKERS",
			"message": "Maximum " + strconv.Itoa(s.cfg.Scan.MaxTickers) + " tickers per scan",
		})
		return
	}

	alerts := s.detector.CheckMultipleTickers(c.Request.Context(), tickers, hours)

	c.JSON(http.StatusOK, gin.H{
		"scan_timestamp":    time.Now().UTC().Format(time.RFC3339),
		"tickers_checked":   len(tickers),
		"divergences_found": len(alerts),
		"alerts":            alerts,
	})
}

func (s *Server) recentAlerts(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "HISTORY_DISABLED"})
		return
	}

	limit := queryInt(c, "limit", 50)
	alerts, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.ErrorWithErr(c.Request.Context(), "Failed to load alert history", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "HISTORY_LOOKUP_FAILED"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
