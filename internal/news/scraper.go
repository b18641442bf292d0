package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"sentiment-alerts/internal/logger"
	"sentiment-alerts/internal/types"
)

// Scraper collects headlines from general-market RSS feeds plus a
// ticker-scoped Google News query.
type Scraper struct {
	feeds   []Feed
	timeout time.Duration
}

// Feed is a general financial RSS feed; entries are kept only when they
// mention the requested ticker.
type Feed struct {
	Name string
	URL  string
}

func defaultFeeds() []Feed {
	return []Feed{
		{Name: "Bloomberg Markets", URL: "https://feeds.bloomberg.com/markets/news.rss"},
		{Name: "CNBC Finance", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
		{Name: "Investing.com", URL: "https://www.investing.com/rss/news.rss"},
	}
}

// NewScraper creates a scraper with the default feed set.
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{feeds: defaultFeeds(), timeout: timeout}
}

// Scrape fetches articles for a ticker published within the last `hours`.
// Feed failures are logged and skipped; the Google News query acts as a
// second source, not a replacement.
func (s *Scraper) Scrape(ctx context.Context, ticker string, hours int) []types.NewsArticle {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	articles := []types.NewsArticle{}

	for _, feed := range s.feeds {
		found, err := s.scrapeFeed(ctx, feed, ticker, cutoff)
		if err != nil {
			logger.ErrorWithErr(ctx, "Feed scrape failed", err, "feed", feed.Name, "ticker", ticker)
			continue
		}
		articles = append(articles, found...)
	}

	googleArticles, err := s.scrapeGoogleNews(ctx, ticker, cutoff)
	if err != nil {
		logger.ErrorWithErr(ctx, "Google News scrape failed", err, "ticker", ticker)
	} else {
		articles = append(articles, googleArticles...)
	}

	logger.Info(ctx, "News scraping completed", "ticker", ticker, "articles", len(articles))
	return articles
}

// scrapeFeed pulls a general feed and keeps entries mentioning the ticker.
func (s *Scraper) scrapeFeed(ctx context.Context, feed Feed, ticker string, cutoff time.Time) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}
	upper := strings.ToUpper(ticker)

	c := s.newCollector()

	c.OnXML("//channel/item", func(e *colly.XMLElement) {
		title := strings.TrimSpace(e.ChildText("title"))
		summary := cleanSummary(e.ChildText("description"))

		if !strings.Contains(strings.ToUpper(title+" "+summary), upper) {
			return
		}

		published := parsePubDate(e.ChildText("pubDate"))
		if !published.IsZero() && published.Before(cutoff) {
			return
		}

		articles = append(articles, types.NewsArticle{
			Headline:      title,
			Source:        feed.Name,
			URL:           strings.TrimSpace(e.ChildText("link")),
			PublishedDate: publishedOrNow(published),
			Summary:       summary,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Feed request error", err, "feed", feed.Name, "url", r.Request.URL.String())
	})

	if err := c.Visit(feed.URL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", feed.URL, err)
	}
	c.Wait()

	return articles, nil
}

// scrapeGoogleNews queries the Google News RSS search endpoint for the
// ticker directly.
func (s *Scraper) scrapeGoogleNews(ctx context.Context, ticker string, cutoff time.Time) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := s.newCollector()

	c.OnXML("//channel/item", func(e *colly.XMLElement) {
		if len(articles) >= 15 {
			return
		}

		published := parsePubDate(e.ChildText("pubDate"))
		if !published.IsZero() && published.Before(cutoff) {
			return
		}

		source := strings.TrimSpace(e.ChildText("source"))
		if source == "" {
			source = "Google News"
		}

		articles = append(articles, types.NewsArticle{
			Headline:      strings.TrimSpace(e.ChildText("title")),
			Source:        source,
			URL:           strings.TrimSpace(e.ChildText("link")),
			PublishedDate: publishedOrNow(published),
			Summary:       cleanSummary(e.ChildText("description")),
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Google News request error", err, "url", r.Request.URL.String())
	})

	query := url.QueryEscape(ticker + " stock")
	searchURL := fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en", query)

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("visit google news: %w", err)
	}
	c.Wait()

	return articles, nil
}

func (s *Scraper) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.MaxDepth(1))
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})
	return c
}

// cleanSummary strips embedded markup from RSS descriptions and bounds
// them to 200 chars.
func cleanSummary(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if strings.Contains(raw, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			raw = strings.TrimSpace(doc.Text())
		}
	}

	if len(raw) > 200 {
		raw = raw[:200]
	}
	return raw
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

func parsePubDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func publishedOrNow(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.Format(time.RFC3339)
}
