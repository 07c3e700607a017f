package provider

import (
	"context"
	"strings"
	"time"

	"crypto-oracle/internal/domain"
	"crypto-oracle/internal/overrides"

	"go.opentelemetry.io/otel/trace"
)

// MockNewsProvider serves canned headlines. Coins with headlines in the
// override table get those; every other coin gets a generic set.
type MockNewsProvider struct {
	tracer trace.Tracer
	table  *overrides.Table
	now    func() time.Time
}

func NewMockNewsProvider(tracer trace.Tracer, table *overrides.Table) *MockNewsProvider {
	return &MockNewsProvider{tracer: tracer, table: table, now: time.Now}
}

func (p *MockNewsProvider) FetchNews(ctx context.Context, coinID string) ([]domain.NewsItem, error) {
	_, span := p.tracer.Start(ctx, "mock-news.fetch-news")
	defer span.End()

	now := p.now().UTC()
	if e, ok := p.table.Lookup(coinID); ok && len(e.Headlines) > 0 {
		items := make([]domain.NewsItem, 0, len(e.Headlines))
		for _, h := range e.Headlines {
			items = append(items, domain.NewsItem{
				Title:       h.Title,
				URL:         "#",
				Source:      h.Source,
				PublishedAt: now.AddDate(0, 0, -h.AgeDays),
				Sentiment:   h.Sentiment,
			})
		}
		return items, nil
	}

	name := displayName(coinID)
	return []domain.NewsItem{
		{Title: name + " shows promising growth potential", URL: "#", Source: "CryptoNews", PublishedAt: now, Sentiment: domain.SentimentPositive},
		{Title: "Market analysts predict stability for " + name, URL: "#", Source: "BlockchainReport", PublishedAt: now.AddDate(0, 0, -1), Sentiment: domain.SentimentNeutral},
		{Title: "New developments in " + name + " ecosystem", URL: "#", Source: "CoinInsider", PublishedAt: now.AddDate(0, 0, -2), Sentiment: domain.SentimentPositive},
	}, nil
}

func displayName(coinID string) string {
	coinID = strings.TrimSpace(coinID)
	if coinID == "" {
		return ""
	}
	return strings.ToUpper(coinID[:1]) + coinID[1:]
}
