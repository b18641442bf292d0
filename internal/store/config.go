package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	// STATIC uses the deterministic mock quote table, LIVE hits Yahoo.
	DataSource string `yaml:"data_source"`

	Classifier struct {
		Provider       string `yaml:"provider"` // RULES or MODEL
		Endpoint       string `yaml:"endpoint"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxInputBytes  int    `yaml:"max_input_bytes"`
	} `yaml:"classifier"`

	Divergence struct {
		// Intentionally aggressive defaults (0.1 / 0.1) to maximize
		// recall; raise toward 0.5 / 1.0 for production use.
		SentimentThreshold float64 `yaml:"sentiment_threshold"`
		PriceThreshold     float64 `yaml:"price_threshold"`
		// Price change is numerically larger than the [-1,1] sentiment
		// scale, so it is divided down before combining. The two
		// divisors are independent constants.
		MagnitudePriceDivisor  float64 `yaml:"magnitude_price_divisor"`
		ConfidencePriceDivisor float64 `yaml:"confidence_price_divisor"`
	} `yaml:"divergence"`

	Sentiment struct {
		// |avg| beyond this band flips the overall label off neutral.
		LabelBand float64 `yaml:"label_band"`
	} `yaml:"sentiment"`

	News struct {
		MaxArticles           int `yaml:"max_articles"`
		ClassifyLimit         int `yaml:"classify_limit"`
		MinArticles           int `yaml:"min_articles"`
		LookbackFloorHours    int `yaml:"lookback_floor_hours"`
		ScraperTimeoutSeconds int `yaml:"scraper_timeout_seconds"`
		CacheTTLSeconds       int `yaml:"cache_ttl_seconds"`
	} `yaml:"news"`

	Cache struct {
		PriceTTLSeconds int `yaml:"price_ttl_seconds"`
	} `yaml:"cache"`

	Scan struct {
		MaxTickers  int `yaml:"max_tickers"`
		Concurrency int `yaml:"concurrency"`
	} `yaml:"scan"`

	DB struct {
		Path string `yaml:"path"`
	} `yaml:"db"`
}

func (c *Config) Validate() error {
	if c.DataSource != "STATIC" && c.DataSource != "LIVE" {
		return fmt.Errorf("invalid data_source '%s': must be 'STATIC' or 'LIVE'", c.DataSource)
	}
	if c.Classifier.Provider != "RULES" && c.Classifier.Provider != "MODEL" {
		return fmt.Errorf("invalid classifier.provider '%s': must be 'RULES' or 'MODEL'", c.Classifier.Provider)
	}
	if c.Classifier.Provider == "MODEL" && c.Classifier.Endpoint == "" {
		return fmt.Errorf("classifier.endpoint required when provider is MODEL")
	}
	if c.Divergence.SentimentThreshold <= 0 || c.Divergence.PriceThreshold <= 0 {
		return fmt.Errorf("divergence thresholds must be positive, got sentiment=%.2f price=%.2f",
			c.Divergence.SentimentThreshold, c.Divergence.PriceThreshold)
	}
	if c.Divergence.MagnitudePriceDivisor <= 0 || c.Divergence.ConfidencePriceDivisor <= 0 {
		return fmt.Errorf("divergence divisors must be positive")
	}
	if c.Scan.MaxTickers <= 0 {
		return fmt.Errorf("scan.max_tickers must be positive, got %d", c.Scan.MaxTickers)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// DefaultConfig returns a config with every default applied, used by tests
// and by callers that run without a config file.
func DefaultConfig() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.DataSource == "" {
		c.DataSource = "STATIC"
	}
	if c.Classifier.Provider == "" {
		c.Classifier.Provider = "RULES"
	}
	if c.Classifier.TimeoutSeconds == 0 {
		c.Classifier.TimeoutSeconds = 10
	}
	if c.Classifier.MaxInputBytes == 0 {
		c.Classifier.MaxInputBytes = 2048
	}
	if c.Divergence.SentimentThreshold == 0 {
		c.Divergence.SentimentThreshold = 0.1
	}
	if c.Divergence.PriceThreshold == 0 {
		c.Divergence.PriceThreshold = 0.1
	}
	if c.Divergence.MagnitudePriceDivisor == 0 {
		c.Divergence.MagnitudePriceDivisor = 10
	}
	if c.Divergence.ConfidencePriceDivisor == 0 {
		c.Divergence.ConfidencePriceDivisor = 5
	}
	if c.Sentiment.LabelBand == 0 {
		c.Sentiment.LabelBand = 0.2
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 20
	}
	if c.News.ClassifyLimit == 0 {
		c.News.ClassifyLimit = 10
	}
	if c.News.MinArticles == 0 {
		c.News.MinArticles = 1
	}
	if c.News.LookbackFloorHours == 0 {
		c.News.LookbackFloorHours = 48
	}
	if c.News.ScraperTimeoutSeconds == 0 {
		c.News.ScraperTimeoutSeconds = 30
	}
	if c.News.CacheTTLSeconds == 0 {
		c.News.CacheTTLSeconds = 300
	}
	if c.Cache.PriceTTLSeconds == 0 {
		c.Cache.PriceTTLSeconds = 60
	}
	if c.Scan.MaxTickers == 0 {
		c.Scan.MaxTickers = 20
	}
	if c.Scan.Concurrency == 0 {
		c.Scan.Concurrency = 5
	}
	if c.DB.Path == "" {
		c.DB.Path = "alerts.db"
	}
}
