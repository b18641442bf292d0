package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sentiment-alerts/internal/store"
	"sentiment-alerts/internal/types"
)

type stubDetector struct {
	alerts map[string]*types.Alert
	err    error
	hours  []int
}

func (d *stubDetector) DetectDivergence(_ context.Context, ticker string, hours int) (*types.Alert, error) {
	d.hours = append(d.hours, hours)
	if d.err != nil {
		return nil, d.err
	}
	return d.alerts[ticker], nil
}

func (d *stubDetector) CheckMultipleTickers(ctx context.Context, tickers []string, hours int) []types.Alert {
	out := make([]types.Alert, 0, len(tickers))
	for _, t := range tickers {
		if a, _ := d.DetectDivergence(ctx, t, hours); a != nil {
			out = append(out, *a)
		}
	}
	return out
}

type stubHTTPPrices struct {
	samples map[string]*types.PriceSample
	fresh   map[string]bool
}

func (s *stubHTTPPrices) CurrentPrice(_ context.Context, ticker string) (*types.PriceSample, error) {
	return s.samples[ticker], nil
}

func (s *stubHTTPPrices) Fresh(ticker string) bool { return s.fresh[ticker] }

type stubHTTPNews struct {
	articles []types.NewsArticle
	err      error
}

func (s *stubHTTPNews) RecentArticles(_ context.Context, _ string, _ int) ([]types.NewsArticle, error) {
	return s.articles, s.err
}

type neutralClassifier struct{}

func (neutralClassifier) Classify(_ context.Context, text string) types.TextClassification {
	return types.TextClassification{Text: text, Label: types.LabelNeutral, Score: 0, Confidence: 0.5}
}

func testAlert(ticker string) *types.Alert {
	return &types.Alert{
		Ticker:     ticker,
		AlertType:  types.BullishDivergence,
		DetectedAt: time.Now().UTC(),
		Divergence: types.Divergence{
			Type:      types.BullishDivergence,
			Signal:    types.SignalBuy,
			Magnitude: 0.8,
		},
		Message: "BULLISH DIVERGENCE detected for " + ticker + "!",
	}
}

func newTestServer(detector *stubDetector, prices *stubHTTPPrices, news *stubHTTPNews) *Server {
	cfg := store.DefaultConfig()
	return NewServer(cfg, detector, prices, news, neutralClassifier{}, nil)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&stubDetector{}, &stubHTTPPrices{}, &stubHTTPNews{})
	w := doRequest(s, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", body["status"])
	}
	checks := body["checks"].(map[string]any)
	if checks["database"] != "disabled" {
		t.Errorf("Expected database disabled without history store, got %v", checks["database"])
	}
}

func TestGetStockNotFound(t *testing.T) {
	s := newTestServer(&stubDetector{},
		&stubHTTPPrices{samples: map[string]*types.PriceSample{}},
		&stubHTTPNews{})
	w := doRequest(s, http.MethodGet, "/api/v1/stocks/ZZZZ", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "TICKER_NOT_FOUND" {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestGetStockReportsSourceProvenance(t *testing.T) {
	prices := &stubHTTPPrices{
		samples: map[string]*types.PriceSample{
			"AAPL": {Ticker: "AAPL", Price: 185.5, ChangePercent: 1.2},
		},
		fresh: map[string]bool{"AAPL": true},
	}
	s := newTestServer(&stubDetector{}, prices, &stubHTTPNews{})
	w := doRequest(s, http.MethodGet, "/api/v1/stocks/aapl", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["source"] != "cache" {
		t.Errorf("Expected cache provenance, got %v", body["source"])
	}
	if body["ticker"] != "AAPL" {
		t.Errorf("Expected normalized ticker, got %v", body["ticker"])
	}
}

func TestGetStockSentimentRequiresCoverage(t *testing.T) {
	prices := &stubHTTPPrices{samples: map[string]*types.PriceSample{
		"AAPL": {Ticker: "AAPL", Price: 185.5},
	}}
	news := &stubHTTPNews{articles: []types.NewsArticle{
		{Headline: "Apple headline one"},
		{Headline: "Apple headline two"},
	}}
	s := newTestServer(&stubDetector{}, prices, news)
	w := doRequest(s, http.MethodGet, "/api/v1/stocks/AAPL", "")

	body := decodeBody(t, w)
	if body["sentiment"] != nil {
		t.Errorf("Expected nil sentiment with fewer than 3 articles, got %v", body["sentiment"])
	}
}

func TestGetNewsNotFound(t *testing.T) {
	s := newTestServer(&stubDetector{}, &stubHTTPPrices{}, &stubHTTPNews{})
	w := doRequest(s, http.MethodGet, "/api/v1/news/AAPL", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "NO_NEWS_FOUND" {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestCheckAlertNoDivergence(t *testing.T) {
	s := newTestServer(&stubDetector{alerts: map[string]*types.Alert{}},
		&stubHTTPPrices{}, &stubHTTPNews{})
	w := doRequest(s, http.MethodGet, "/api/v1/alerts/AAPL", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "NO_DIVERGENCE_FOUND" {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestCheckAlertFound(t *testing.T) {
	detector := &stubDetector{alerts: map[string]*types.Alert{
		"AAPL": testAlert("AAPL"),
	}}
	s := newTestServer(detector, &stubHTTPPrices{}, &stubHTTPNews{})
	w := doRequest(s, http.MethodGet, "/api/v1/alerts/AAPL?hours=6", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["ticker"] != "AAPL" || body["alert_type"] != "bullish_divergence" {
		t.Errorf("Unexpected alert body: %s", w.Body.String())
	}
	if len(detector.hours) != 1 || detector.hours[0] != 6 {
		t.Errorf("Expected hours=6 passed through, got %v", detector.hours)
	}
}

func TestScanRejectsTooManyTickers(t *testing.T) {
	s := newTestServer(&stubDetector{}, &stubHTTPPrices{}, &stubHTTPNews{})

	tickers := make([]string, 21)
	for i := range tickers {
		tickers[i] = "T" + strings.Repeat("A", i%3+1)
	}
	payload, _ := json.Marshal(map[string]any{"tickers": tickers})

	w := doRequest(s, http.MethodPost, "/api/v1/alerts/scan", string(payload))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "TOO_MANY_TICKERS" {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestScanRejectsMissingTickers(t *testing.T) {
	s := newTestServer(&stubDetector{}, &stubHTTPPrices{}, &stubHTTPNews{})
	w := doRequest(s, http.MethodPost, "/api/v1/alerts/scan", `{"hours": 1}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing tickers field, got %d", w.Code)
	}
}

func TestScanReturnsAlerts(t *testing.T) {
	detector := &stubDetector{alerts: map[string]*types.Alert{
		"AAPL": testAlert("AAPL"),
	}}
	s := newTestServer(detector, &stubHTTPPrices{}, &stubHTTPNews{})

	w := doRequest(s, http.MethodPost, "/api/v1/alerts/scan",
		`{"tickers": ["AAPL", "TSLA"], "hours": 2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["tickers_checked"].(float64) != 2 {
		t.Errorf("Expected 2 tickers checked, got %v", body["tickers_checked"])
	}
	if body["divergences_found"].(float64) != 1 {
		t.Errorf("Expected 1 divergence, got %v", body["divergences_found"])
	}
}

func TestQuickScanParsesCommaList(t *testing.T) {
	detector := &stubDetector{alerts: map[string]*types.Alert{
		"AAPL": testAlert("AAPL"),
		"MSFT": testAlert("MSFT"),
	}}
	s := newTestServer(detector, &stubHTTPPrices{}, &stubHTTPNews{})

	w := doRequest(s, http.MethodGet, "/api/v1/alerts/scan/aapl,%20msft,,tsla", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["tickers_checked"].(float64) != 3 {
		t.Errorf("Empty segments must be dropped, got %v", body["tickers_checked"])
	}
	if body["divergences_found"].(float64) != 2 {
		t.Errorf("Expected 2 divergences, got %v", body["divergences_found"])
	}
}

func TestRecentAlertsDisabledWithoutHistory(t *testing.T) {
	s := newTestServer(&stubDetector{}, &stubHTTPPrices{}, &stubHTTPNews{})
	w := doRequest(s, http.MethodGet, "/api/v1/alerts/recent", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "HISTORY_DISABLED" {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestCheckAlertInternalError(t *testing.T) {
	s := newTestServer(&stubDetector{err: errors.New("upstream down")},
		&stubHTTPPrices{}, &stubHTTPNews{})
	w := doRequest(s, http.MethodGet, "/api/v1/alerts/AAPL", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&stubDetector{}, &stubHTTPPrices{}, &stubHTTPNews{})
	w := doRequest(s, http.MethodOptions, "/health", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header on preflight response")
	}
}
