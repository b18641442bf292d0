package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"sentiment-alerts/internal/alertlog"
	"sentiment-alerts/internal/interfaces"
	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/sentiment"
	"sentiment-alerts/internal/store"
)

// Server exposes the sentiment alerts HTTP API.
type Server struct {
	cfg        *store.Config
	detector   interfaces.Detector
	prices     PriceProvider
	news       interfaces.NewsProvider
	classifier interfaces.Classifier
	aggregator *sentiment.Aggregator
	history    *alertlog.Store
}

// PriceProvider extends the plain price source with cache provenance, so
// responses can report cache vs live.
type PriceProvider interface {
	interfaces.PriceSource
	Fresh(ticker string) bool
}

// NewServer wires the API handlers. history may be nil when persistence
// is disabled.
func NewServer(
	cfg *store.Config,
	detector interfaces.Detector,
	prices PriceProvider,
	news interfaces.NewsProvider,
	classifier interfaces.Classifier,
	history *alertlog.Store,
) *Server {
	return &Server{
		cfg:        cfg,
		detector:   detector,
		prices:     prices,
		news:       news,
		classifier: classifier,
		aggregator: sentiment.NewAggregator(cfg.Sentiment.LabelBand),
		history:    history,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware(), processTimeMiddleware())

	r.GET("/", s.root)
	r.GET("/health", s.health)

	api := r.Group("/api/v1")
	{
		api.GET("/stocks/:ticker", s.getStock)
		api.GET("/news/:ticker", s.getNews)
		api.GET("/alerts/recent", s.recentAlerts)
		api.GET("/alerts/:ticker", s.checkAlert)
		api.POST("/alerts/scan", s.scanAlerts)
		api.GET("/alerts/scan/:tickers", s.quickScan)
	}

	return r
}

// Run starts the HTTP server on the configured address.
func (s *Server) Run() error {
	addr := s.cfg.Server.Addr
	logger.Info(context.Background(), "Starting HTTP server", "addr", addr)
	return s.Router().Run(addr)
}

// processTimeMiddleware reports handler latency and warns on slow requests.
func processTimeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		c.Header("X-Process-Time", elapsed.String())
		if elapsed > time.Second {
			logger.Warn(c.Request.Context(), "Slow request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"duration_ms", elapsed.Milliseconds(),
			)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
