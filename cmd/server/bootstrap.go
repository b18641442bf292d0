package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"sentiment-alerts/internal/alert"
	"sentiment-alerts/internal/alert/alertobs"
	"sentiment-alerts/internal/alertlog"
	"sentiment-alerts/internal/httpapi"
	"sentiment-alerts/internal/interfaces"
	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/news"
	"sentiment-alerts/internal/price"
	"sentiment-alerts/internal/sentiment"
	"sentiment-alerts/internal/store"
	"sentiment-alerts/internal/trace"
)

// initializeSystem initializes env, logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads the configuration, falling back to defaults when no
// config file is present.
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn(ctx, "No config file found, using defaults", "path", path)
		return store.DefaultConfig(), nil
	}

	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// buildServer wires every component with explicit dependency injection.
func buildServer(ctx context.Context, cfg *store.Config) (*httpapi.Server, error) {
	classifier := sentiment.NewClassifier(cfg)
	logger.Info(ctx, "Classifier initialized", "provider", cfg.Classifier.Provider)

	prices := price.New(cfg)
	if cfg.DataSource == "LIVE" {
		logger.Info(ctx, "Using LIVE Yahoo Finance quotes")
	} else {
		logger.Info(ctx, "Using STATIC mock quotes for testing")
	}

	newsSvc := news.NewService(cfg)

	var recorder interfaces.AlertRecorder
	var history *alertlog.Store
	if cfg.DB.Path != "" {
		h, err := alertlog.Open(cfg.DB.Path)
		if err != nil {
			logger.Warn(ctx, "Alert history disabled", "error", err, "path", cfg.DB.Path)
		} else {
			history = h
			recorder = h
			logger.Info(ctx, "Alert history enabled", "path", cfg.DB.Path)
		}
	}

	engine := alert.NewEngine(cfg, prices, newsSvc, classifier, recorder)
	detector := alertobs.Wrap(engine)

	return httpapi.NewServer(cfg, detector, prices, newsSvc, classifier, history), nil
}
