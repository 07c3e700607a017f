package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func TestBuildPricePoints(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	prices := [][]float64{
		{float64(base.Add(day).UnixMilli()), 12},
		{float64(base.UnixMilli()), 10},
		{1},
	}
	caps := [][]float64{
		{float64(base.UnixMilli()), 1000},
	}
	volumes := [][]float64{
		{float64(base.Add(day).UnixMilli()), 200},
	}

	points := buildPricePoints(prices, caps, volumes)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if !points[0].Timestamp.Equal(base) || points[0].Price != 10 || points[0].MarketCap != 1000 {
		t.Fatalf("unexpected first point: %+v", points[0])
	}
	if points[1].Price != 12 || points[1].Volume != 200 || points[1].MarketCap != 0 {
		t.Fatalf("unexpected second point: %+v", points[1])
	}
	if buildPricePoints(nil, nil, nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, v any) *http.Response {
	data, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     make(http.Header),
	}
}

func TestNewCoinGeckoProviderBaseURL(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	if p := NewCoinGeckoProvider(tracer, ""); p.baseURL != coingeckoBaseURL {
		t.Fatalf("expected default base url, got %s", p.baseURL)
	}
	if p := NewCoinGeckoProvider(tracer, "http://proxy/api/"); p.baseURL != "http://proxy/api" {
		t.Fatalf("expected trimmed base url, got %s", p.baseURL)
	}
}

func TestCoinGeckoProviderFetchMarkets(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.HasSuffix(req.URL.Path, "/coins/markets") {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			q := req.URL.Query()
			if q.Get("vs_currency") != "usd" || q.Get("order") != "market_cap_desc" || q.Get("per_page") != "100" || q.Get("page") != "1" {
				t.Fatalf("unexpected query: %s", req.URL.RawQuery)
			}
			return jsonResponse(http.StatusOK, []map[string]any{
				{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "current_price": 50000, "market_cap": 1e12, "market_cap_rank": 1, "price_change_percentage_24h": 1.5},
				{"id": "", "symbol": "bad"},
			}), nil
		}),
	}
	provider.limiter = NewRateLimiter(10, time.Millisecond)

	coins, err := provider.FetchMarkets(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coins) != 1 {
		t.Fatalf("expected 1 coin, got %d", len(coins))
	}
	c := coins[0]
	if c.ID != "bitcoin" || c.CurrentPrice != 50000 || c.MarketCapRank != 1 || c.PriceChange24h != 1.5 {
		t.Fatalf("unexpected coin: %+v", c)
	}
}

func TestCoinGeckoProviderFetchMarketsHTTPError(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusTooManyRequests, map[string]string{"error": "slow down"}), nil
		}),
	}
	provider.limiter = NewRateLimiter(10, time.Millisecond)

	if _, err := provider.FetchMarkets(context.Background(), 10); err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected 429 error, got %v", err)
	}
}

func TestCoinGeckoProviderFetchMarketChart(t *testing.T) {
	t.Parallel()

	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "http://example")
	provider.client = &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.Contains(req.URL.Path, "/coins/bitcoin/market_chart") {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if req.URL.Query().Get("days") != "365" {
				t.Fatalf("unexpected days: %s", req.URL.RawQuery)
			}
			now := time.Now()
			return jsonResponse(http.StatusOK, map[string]any{
				"prices": [][]float64{
					{float64(now.Add(-24 * time.Hour).UnixMilli()), 10},
					{float64(now.UnixMilli()), 12},
				},
				"total_volumes": [][]float64{
					{float64(now.UnixMilli()), 100},
				},
			}), nil
		}),
	}
	provider.limiter = NewRateLimiter(10, time.Millisecond)

	points, err := provider.FetchMarketChart(context.Background(), "bitcoin", 365)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 || points[1].Price != 12 || points[1].Volume != 100 {
		t.Fatalf("unexpected points: %+v", points)
	}
}

func TestCoinGeckoProviderFetchMarketChartRequiresID(t *testing.T) {
	provider := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	if _, err := provider.FetchMarketChart(context.Background(), " ", 30); err == nil {
		t.Fatal("expected error for empty coin id")
	}
}
