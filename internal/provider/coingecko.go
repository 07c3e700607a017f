package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"crypto-oracle/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"
	maxPerPage       = 250
)

// CoinGeckoProvider fetches market listings and price history from the
// CoinGecko free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a new provider with built-in rate limiting.
// Rate limited to a burst of 8 requests, refilled one every 7.5 seconds.
// An empty baseURL selects the public endpoint.
func NewCoinGeckoProvider(tracer trace.Tracer, baseURL string) *CoinGeckoProvider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// WithLimiter replaces the default rate limiter.
func (p *CoinGeckoProvider) WithLimiter(l *RateLimiter) *CoinGeckoProvider {
	if l != nil {
		p.limiter = l
	}
	return p
}

// FetchMarkets returns the first page of coins ordered by market cap.
func (p *CoinGeckoProvider) FetchMarkets(ctx context.Context, perPage int) ([]domain.Coin, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()

	if perPage <= 0 {
		perPage = 100
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	span.SetAttributes(attribute.Int("per_page", perPage))

	u := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1",
		p.baseURL, perPage)

	body, err := p.doRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	var coins []domain.Coin
	if err := json.Unmarshal(body, &coins); err != nil {
		return nil, fmt.Errorf("parse markets: %w", err)
	}

	out := coins[:0]
	for _, c := range coins {
		if strings.TrimSpace(c.ID) == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// FetchMarketChart returns the daily-or-finer USD price series for the last
// days days, oldest first.
func (p *CoinGeckoProvider) FetchMarketChart(ctx context.Context, coinID string, days int) ([]domain.PricePoint, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-market-chart")
	defer span.End()

	coinID = strings.TrimSpace(coinID)
	if coinID == "" {
		return nil, fmt.Errorf("coin id is required")
	}
	if days <= 0 {
		days = 1
	}
	span.SetAttributes(attribute.String("coin_id", coinID), attribute.Int("days", days))

	u := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
		p.baseURL, url.PathEscape(coinID), days)

	body, err := p.doRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch market chart for %s: %w", coinID, err)
	}

	var raw struct {
		Prices       [][]float64 `json:"prices"`
		MarketCaps   [][]float64 `json:"market_caps"`
		TotalVolumes [][]float64 `json:"total_volumes"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse market chart for %s: %w", coinID, err)
	}

	return buildPricePoints(raw.Prices, raw.MarketCaps, raw.TotalVolumes), nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// buildPricePoints zips the market_chart arrays by timestamp. Caps and
// volumes are optional and matched on exact timestamps.
func buildPricePoints(prices, caps, volumes [][]float64) []domain.PricePoint {
	if len(prices) == 0 {
		return nil
	}

	capByTS := pairIndex(caps)
	volByTS := pairIndex(volumes)

	points := make([]domain.PricePoint, 0, len(prices))
	for _, pt := range prices {
		if len(pt) < 2 {
			continue
		}
		ts := int64(pt[0])
		points = append(points, domain.PricePoint{
			Timestamp: time.UnixMilli(ts).UTC(),
			Price:     pt[1],
			Volume:    volByTS[ts],
			MarketCap: capByTS[ts],
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

func pairIndex(rows [][]float64) map[int64]float64 {
	out := make(map[int64]float64, len(rows))
	for _, r := range rows {
		if len(r) >= 2 {
			out[int64(r[0])] = r[1]
		}
	}
	return out
}
