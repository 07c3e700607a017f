package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crypto-oracle/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	redditBaseURL      = "https://www.reddit.com"
	defaultRedditUA    = "crypto-oracle/1.0"
	defaultSubreddit   = "CryptoCurrency"
	defaultRedditLimit = 10
)

// RedditNewsProvider treats recent subreddit posts about a coin as headlines.
type RedditNewsProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	subreddit string
	tracer    trace.Tracer
	labeler   HeadlineLabeler
}

func NewRedditNewsProvider(tracer trace.Tracer, subreddit string, labeler HeadlineLabeler) *RedditNewsProvider {
	subreddit = strings.TrimSpace(subreddit)
	if subreddit == "" {
		subreddit = defaultSubreddit
	}
	return &RedditNewsProvider{
		client:    &http.Client{Timeout: 20 * time.Second},
		baseURL:   redditBaseURL,
		userAgent: defaultRedditUA,
		subreddit: subreddit,
		tracer:    tracer,
		labeler:   labeler,
	}
}

func (p *RedditNewsProvider) FetchNews(ctx context.Context, coinID string) ([]domain.NewsItem, error) {
	ctx, span := p.tracer.Start(ctx, "reddit.fetch-news")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", coinID), attribute.String("subreddit", p.subreddit))

	terms := matchTerms(coinID)
	if len(terms) == 0 {
		return nil, fmt.Errorf("coin id is required")
	}

	base := strings.TrimRight(p.baseURL, "/")
	q := url.Values{}
	q.Set("q", terms[len(terms)-1])
	q.Set("restrict_sr", "1")
	q.Set("sort", "new")
	q.Set("limit", fmt.Sprintf("%d", defaultRedditLimit))
	u := fmt.Sprintf("%s/r/%s/search.json?%s", base, url.PathEscape(p.subreddit), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reddit API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			Children []struct {
				Data struct {
					ID         string  `json:"id"`
					Title      string  `json:"title"`
					CreatedUTC float64 `json:"created_utc"`
					Permalink  string  `json:"permalink"`
					URL        string  `json:"url"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}

	items := make([]domain.NewsItem, 0, len(payload.Data.Children))
	for _, row := range payload.Data.Children {
		data := row.Data
		title := sanitizeText(data.Title, 300)
		if strings.TrimSpace(data.ID) == "" || title == "" {
			continue
		}
		itemURL := strings.TrimSpace(data.URL)
		if permalink := strings.TrimSpace(data.Permalink); permalink != "" {
			itemURL = base + permalink
		}
		if itemURL == "" {
			itemURL = "#"
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			URL:         itemURL,
			Source:      "r/" + p.subreddit,
			PublishedAt: time.Unix(int64(data.CreatedUTC), 0).UTC(),
			Sentiment:   domain.SentimentNeutral,
		})
	}

	if p.labeler != nil {
		items = p.labeler.Label(ctx, items)
	}
	return items, nil
}

func sanitizeText(in string, maxLen int) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	in = strings.ReplaceAll(in, "\n", " ")
	in = strings.ReplaceAll(in, "\r", " ")
	in = strings.Join(strings.Fields(in), " ")
	if maxLen > 0 && len(in) > maxLen {
		in = in[:maxLen]
	}
	return in
}
