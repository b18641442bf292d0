package alertlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sentiment-alerts/internal/interfaces"
	"sentiment-alerts/internal/types"
)

// AlertRecord is the persisted form of a divergence alert.
type AlertRecord struct {
	ID             uint      `gorm:"primaryKey"`
	Ticker         string    `gorm:"index;size:10"`
	AlertType      string    `gorm:"size:32"`
	Signal         string    `gorm:"size:8"`
	SentimentScore float64
	SentimentLabel string `gorm:"size:16"`
	ArticleCount   int
	Price          float64
	ChangePercent  float64
	Magnitude      float64
	Confidence     float64
	Message        string
	HeadlinesJSON  string
	DetectedAt     time.Time `gorm:"index"`
	CreatedAt      time.Time
}

// Store persists alerts to sqlite.
type Store struct {
	db *gorm.DB
}

var _ interfaces.AlertRecorder = (*Store)(nil)

// Open opens (and migrates) the alert history database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open alert db: %w", err)
	}
	if err := db.AutoMigrate(&AlertRecord{}); err != nil {
		return nil, fmt.Errorf("migrate alert db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, a types.Alert) error {
	headlines, _ := json.Marshal(a.TopHeadlines)

	rec := AlertRecord{
		Ticker:         a.Ticker,
		AlertType:      string(a.AlertType),
		Signal:         string(a.Divergence.Signal),
		SentimentScore: a.Sentiment.Score,
		SentimentLabel: string(a.Sentiment.Label),
		ArticleCount:   a.Sentiment.ArticleCount,
		Price:          a.Price.Current,
		ChangePercent:  a.Price.ChangePercent,
		Magnitude:      a.Divergence.Magnitude,
		Confidence:     a.Divergence.Confidence,
		Message:        a.Message,
		HeadlinesJSON:  string(headlines),
		DetectedAt:     a.DetectedAt,
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

func (s *Store) Recent(ctx context.Context, limit int) ([]types.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []AlertRecord
	err := s.db.WithContext(ctx).
		Order("detected_at desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	alerts := make([]types.Alert, 0, len(records))
	for _, rec := range records {
		alerts = append(alerts, rec.toAlert())
	}
	return alerts, nil
}

// Ping reports database availability for health checks.
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (rec AlertRecord) toAlert() types.Alert {
	var headlines []types.TextClassification
	_ = json.Unmarshal([]byte(rec.HeadlinesJSON), &headlines)

	return types.Alert{
		Ticker:     rec.Ticker,
		AlertType:  types.DivergenceType(rec.AlertType),
		DetectedAt: rec.DetectedAt,
		Sentiment: types.SentimentSummary{
			Score:        rec.SentimentScore,
			Label:        types.SentimentLabel(rec.SentimentLabel),
			ArticleCount: rec.ArticleCount,
		},
		Price: types.PriceSummary{
			Current:       rec.Price,
			ChangePercent: rec.ChangePercent,
		},
		Divergence: types.Divergence{
			Type:       types.DivergenceType(rec.AlertType),
			Signal:     types.Signal(rec.Signal),
			Magnitude:  rec.Magnitude,
			Confidence: rec.Confidence,
		},
		Message:      rec.Message,
		TopHeadlines: headlines,
	}
}
