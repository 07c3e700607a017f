// Package mcpserver exposes the market, forecast and news services as MCP
// tools so assistants can query the dashboard data directly.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"crypto-oracle/internal/dashboard"
	"crypto-oracle/internal/domain"
	"crypto-oracle/internal/forecast"
	"crypto-oracle/internal/overrides"
	"crypto-oracle/internal/provider"
	"crypto-oracle/internal/sentiment"
	"crypto-oracle/pkg/tracing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultListLimit = 20
	maxHistoryDays   = 365
)

var ErrRateLimited = errors.New("rate limit exceeded, try again in a minute")

type Market interface {
	ListCoins(ctx context.Context) ([]domain.Coin, error)
	GetCoin(ctx context.Context, coinID string) (domain.Coin, error)
	GetHistory(ctx context.Context, coinID string, days int) ([]domain.PricePoint, error)
}

type Forecaster interface {
	Generate(ctx context.Context, coin domain.Coin) (*domain.Forecast, error)
}

type NewsReader interface {
	GetNews(ctx context.Context, coinID string) ([]domain.NewsItem, error)
}

type Services struct {
	Market    Market
	Forecasts Forecaster
	News      NewsReader
	Preferred []string
	Table     *overrides.Table
	// Limiter caps tool calls across all sessions. Nil disables the cap.
	Limiter *provider.RateLimiter
}

type ListCoinsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of coins to return (default 20)"`
}

type CoinInput struct {
	CoinID string `json:"coin_id" jsonschema:"coin id as listed by list_coins, e.g. bitcoin"`
}

type HistoryInput struct {
	CoinID string `json:"coin_id" jsonschema:"coin id as listed by list_coins"`
	Days   int    `json:"days,omitempty" jsonschema:"days of history between 1 and 365 (default 30)"`
}

type listCoinsResult struct {
	Coins         []domain.Coin `json:"coins"`
	DefaultCoinID string        `json:"default_coin_id,omitempty"`
}

type forecastResult struct {
	Forecast  *domain.Forecast        `json:"forecast"`
	Summaries []domain.HorizonSummary `json:"summaries"`
	Note      string                  `json:"note,omitempty"`
}

type newsResult struct {
	CoinID         string                   `json:"coin_id"`
	News           []domain.NewsItem        `json:"news"`
	SentimentScore float64                  `json:"sentiment_score"`
	Counts         map[domain.Sentiment]int `json:"counts"`
}

type historyResult struct {
	CoinID string              `json:"coin_id"`
	Days   int                 `json:"days"`
	Points []domain.PricePoint `json:"points"`
}

type tools struct {
	tracer trace.Tracer
	svc    Services
}

// New builds an MCP server with the dashboard tools registered.
func New(tracer trace.Tracer, svc Services) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    tracing.ServiceName,
		Version: tracing.ServiceVersion,
	}, nil)

	t := &tools{tracer: tracer, svc: svc}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_coins",
		Description: "List the top cryptocurrencies by market cap with current price and 24h change.",
	}, t.listCoins)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_forecast",
		Description: "Generate a fresh 7-day, 4-week and 12-month price forecast for a coin.",
	}, t.getForecast)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_news",
		Description: "Recent headlines for a coin with sentiment labels and the aggregate sentiment score.",
	}, t.getNews)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_price_history",
		Description: "Daily price history for a coin.",
	}, t.getHistory)
	return server
}

func (t *tools) listCoins(ctx context.Context, _ *mcp.CallToolRequest, in ListCoinsInput) (*mcp.CallToolResult, any, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.list-coins")
	defer span.End()

	if !t.allow() {
		return errorResult(ErrRateLimited.Error()), nil, nil
	}

	coins, err := t.svc.Market.ListCoins(ctx)
	if err != nil {
		log.Printf("mcp list_coins: %v", err)
		return errorResult(dashboard.UserMessage(dashboard.OpListing, err)), nil, nil
	}

	out := listCoinsResult{Coins: coins}
	if def, ok := dashboard.SelectDefault(coins, t.svc.Preferred...); ok {
		out.DefaultCoinID = def.ID
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(out.Coins) > limit {
		out.Coins = out.Coins[:limit]
	}
	return jsonResult(out)
}

func (t *tools) getForecast(ctx context.Context, _ *mcp.CallToolRequest, in CoinInput) (*mcp.CallToolResult, any, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.get-forecast")
	defer span.End()

	coinID := normalizeID(in.CoinID)
	span.SetAttributes(attribute.String("coin_id", coinID))
	if !t.allow() {
		return errorResult(ErrRateLimited.Error()), nil, nil
	}

	coin, res := t.lookup(ctx, coinID)
	if res != nil {
		return res, nil, nil
	}

	f, err := t.svc.Forecasts.Generate(ctx, coin)
	if err != nil {
		log.Printf("mcp get_forecast %s: %v", coinID, err)
		return errorResult(dashboard.UserMessage(dashboard.OpSelect, err)), nil, nil
	}
	return jsonResult(forecastResult{
		Forecast:  f,
		Summaries: forecast.Summarize(f),
		Note:      t.svc.Table.Note(coinID),
	})
}

func (t *tools) getNews(ctx context.Context, _ *mcp.CallToolRequest, in CoinInput) (*mcp.CallToolResult, any, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.get-news")
	defer span.End()

	coinID := normalizeID(in.CoinID)
	span.SetAttributes(attribute.String("coin_id", coinID))
	if !t.allow() {
		return errorResult(ErrRateLimited.Error()), nil, nil
	}

	if _, res := t.lookup(ctx, coinID); res != nil {
		return res, nil, nil
	}

	items, err := t.svc.News.GetNews(ctx, coinID)
	if err != nil {
		log.Printf("mcp get_news %s: %v", coinID, err)
		return errorResult(dashboard.UserMessage(dashboard.OpNews, err)), nil, nil
	}
	return jsonResult(newsResult{
		CoinID:         coinID,
		News:           items,
		SentimentScore: sentiment.Score(items),
		Counts:         sentiment.Counts(items),
	})
}

func (t *tools) getHistory(ctx context.Context, _ *mcp.CallToolRequest, in HistoryInput) (*mcp.CallToolResult, any, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.get-price-history")
	defer span.End()

	coinID := normalizeID(in.CoinID)
	days := in.Days
	if days == 0 {
		days = 30
	}
	span.SetAttributes(attribute.String("coin_id", coinID), attribute.Int("days", days))
	if days < 1 || days > maxHistoryDays {
		return errorResult(fmt.Sprintf("days must be between 1 and %d", maxHistoryDays)), nil, nil
	}
	if !t.allow() {
		return errorResult(ErrRateLimited.Error()), nil, nil
	}

	if _, res := t.lookup(ctx, coinID); res != nil {
		return res, nil, nil
	}

	points, err := t.svc.Market.GetHistory(ctx, coinID, days)
	if err != nil {
		log.Printf("mcp get_price_history %s: %v", coinID, err)
		return errorResult(fmt.Sprintf("Price history for %s is unavailable right now.", coinID)), nil, nil
	}
	return jsonResult(historyResult{CoinID: coinID, Days: days, Points: points})
}

func (t *tools) allow() bool {
	return t.svc.Limiter == nil || t.svc.Limiter.Allow()
}

// lookup resolves coinID, returning a tool error result when it cannot.
func (t *tools) lookup(ctx context.Context, coinID string) (domain.Coin, *mcp.CallToolResult) {
	if coinID == "" {
		return domain.Coin{}, errorResult("coin_id is required")
	}
	coin, err := t.svc.Market.GetCoin(ctx, coinID)
	switch {
	case err == nil:
		return coin, nil
	case errors.Is(err, domain.ErrUnknownCoin):
		return domain.Coin{}, errorResult("unknown coin: " + coinID)
	default:
		log.Printf("mcp lookup %s: %v", coinID, err)
		return domain.Coin{}, errorResult(dashboard.UserMessage(dashboard.OpListing, err))
	}
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
