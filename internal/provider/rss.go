package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"crypto-oracle/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HeadlineLabeler assigns a sentiment to each item.
type HeadlineLabeler interface {
	Label(ctx context.Context, items []domain.NewsItem) []domain.NewsItem
}

// RSSNewsProvider pulls headlines from RSS feeds and keeps the ones that
// mention the requested coin.
type RSSNewsProvider struct {
	client   *http.Client
	tracer   trace.Tracer
	feeds    []string
	labeler  HeadlineLabeler
	maxItems int
}

func NewRSSNewsProvider(tracer trace.Tracer, feeds []string, labeler HeadlineLabeler) *RSSNewsProvider {
	clean := make([]string, 0, len(feeds))
	for _, f := range feeds {
		if f = strings.TrimSpace(f); f != "" {
			clean = append(clean, f)
		}
	}
	return &RSSNewsProvider{
		client:   &http.Client{Timeout: 20 * time.Second},
		tracer:   tracer,
		feeds:    clean,
		labeler:  labeler,
		maxItems: 10,
	}
}

// FetchNews reads every feed, filters by coin and labels the result. A feed
// failure only fails the call when no feed could be read.
func (p *RSSNewsProvider) FetchNews(ctx context.Context, coinID string) ([]domain.NewsItem, error) {
	ctx, span := p.tracer.Start(ctx, "rss.fetch-news")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", coinID))

	if len(p.feeds) == 0 {
		return nil, fmt.Errorf("no news feeds configured")
	}

	terms := matchTerms(coinID)
	var (
		items    []domain.NewsItem
		failures int
		lastErr  error
	)
	for _, feed := range p.feeds {
		feedItems, err := p.FetchFeed(ctx, feed)
		if err != nil {
			failures++
			lastErr = err
			log.Printf("rss feed %s error: %v", feed, err)
			continue
		}
		for _, item := range feedItems {
			if mentions(item.Title, terms) {
				items = append(items, item)
			}
		}
	}
	if failures == len(p.feeds) {
		return nil, fmt.Errorf("all feeds failed: %w", lastErr)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if len(items) > p.maxItems {
		items = items[:p.maxItems]
	}
	if p.labeler != nil {
		items = p.labeler.Label(ctx, items)
	}
	return items, nil
}

// FetchFeed returns the unlabeled items of one feed.
func (p *RSSNewsProvider) FetchFeed(ctx context.Context, feedURL string) ([]domain.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rss fetch error %d: %s", resp.StatusCode, string(body))
	}

	var rss struct {
		Channel struct {
			Title string `xml:"title"`
			Items []struct {
				Title   string `xml:"title"`
				Link    string `xml:"link"`
				PubDate string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&rss); err != nil {
		return nil, fmt.Errorf("decode rss payload: %w", err)
	}

	source := sanitizeText(rss.Channel.Title, 120)
	items := make([]domain.NewsItem, 0, len(rss.Channel.Items))
	for _, row := range rss.Channel.Items {
		title := sanitizeText(row.Title, 300)
		if title == "" {
			continue
		}
		publishedAt := parseRSSDate(row.PubDate)
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		link := sanitizeText(row.Link, 500)
		if link == "" {
			link = "#"
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			URL:         link,
			Source:      source,
			PublishedAt: publishedAt,
			Sentiment:   domain.SentimentNeutral,
		})
	}
	return items, nil
}

func matchTerms(coinID string) []string {
	id := strings.ToLower(strings.TrimSpace(coinID))
	if id == "" {
		return nil
	}
	terms := []string{id}
	if spaced := strings.ReplaceAll(id, "-", " "); spaced != id {
		terms = append(terms, spaced)
	}
	return terms
}

func mentions(title string, terms []string) bool {
	lower := strings.ToLower(title)
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func parseRSSDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
