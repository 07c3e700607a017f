// Package app wires the providers and services shared by every binary.
package app

import (
	"fmt"
	"log"
	"time"

	"crypto-oracle/internal/cache"
	"crypto-oracle/internal/config"
	"crypto-oracle/internal/db"
	"crypto-oracle/internal/noise"
	"crypto-oracle/internal/overrides"
	"crypto-oracle/internal/provider"
	"crypto-oracle/internal/repository"
	"crypto-oracle/internal/sentiment"
	"crypto-oracle/internal/service"

	"go.opentelemetry.io/otel/trace"
)

type App struct {
	Table     *overrides.Table
	Repo      *repository.PriceHistoryRepository
	Market    *service.MarketService
	News      *service.NewsService
	Forecasts *service.ForecastService
	Preferred []string
}

var loadOverridesFunc = overrides.Load

// Backends returns the shared Postgres pool and Redis client as interfaces,
// nil when the corresponding connection was not initialised.
func Backends() (repository.PgxPool, cache.Store) {
	var pool repository.PgxPool
	if db.Pool != nil {
		pool = db.Pool
	}
	var store cache.Store
	if cache.Client != nil {
		store = cache.Client
	}
	return pool, store
}

// Build assembles the service graph. pool and redisClient may be nil, which
// disables persistence and caching respectively.
func Build(cfg *config.Config, tracer trace.Tracer, pool repository.PgxPool, redisClient cache.Store) (*App, error) {
	table, err := loadOverridesFunc(cfg.OverridesFile)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	var repo *repository.PriceHistoryRepository
	var history service.PriceHistoryRepository
	if pool != nil {
		repo = repository.NewPriceHistoryRepository(pool, tracer)
		history = repo
	}

	src := noise.New()
	gecko := provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoBaseURL).
		WithLimiter(provider.PerMinute(cfg.CoinGeckoRateLimit))
	synthetic := provider.NewSyntheticHistoryProvider(tracer, table, src)

	market := service.NewMarketService(tracer, gecko, synthetic, history, redisClient, table, service.MarketOptions{
		PerPage:    cfg.CoinGeckoPerPage,
		ListingTTL: time.Duration(cfg.ListingCacheSecs) * time.Second,
		HistoryTTL: time.Duration(cfg.HistoryCacheSecs) * time.Second,
	})
	news := service.NewNewsService(tracer, newsProvider(cfg, tracer, table))

	return &App{
		Table:     table,
		Repo:      repo,
		Market:    market,
		News:      news,
		Forecasts: service.NewForecastService(tracer, market, news, table, src),
		Preferred: cfg.DefaultCoinIDs,
	}, nil
}

func newsProvider(cfg *config.Config, tracer trace.Tracer, table *overrides.Table) service.NewsProvider {
	switch cfg.NewsProvider {
	case "rss":
		log.Printf("News provider: rss (%d feeds)", len(cfg.NewsFeeds))
		return provider.NewRSSNewsProvider(tracer, cfg.NewsFeeds, headlineLabeler(cfg))
	case "reddit":
		log.Println("News provider: reddit")
		return provider.NewRedditNewsProvider(tracer, cfg.RedditSubreddit, headlineLabeler(cfg))
	default:
		return provider.NewMockNewsProvider(tracer, table)
	}
}

func headlineLabeler(cfg *config.Config) *sentiment.Labeler {
	if llm := sentiment.NewOpenAILabeler(cfg.OpenAIAPIKey, cfg.OpenAIModel); llm != nil {
		return sentiment.NewLabeler(llm, 0)
	}
	return sentiment.NewLabeler(nil, 0)
}
