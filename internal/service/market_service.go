package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"crypto-oracle/internal/cache"
	"crypto-oracle/internal/domain"
	"crypto-oracle/internal/overrides"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultListingTTL = 60 * time.Second
	defaultHistoryTTL = 15 * time.Minute
)

type MarketProvider interface {
	FetchMarkets(ctx context.Context, perPage int) ([]domain.Coin, error)
	FetchMarketChart(ctx context.Context, coinID string, days int) ([]domain.PricePoint, error)
}

// SyntheticHistory serves history for coins the market endpoint does not
// know about.
type SyntheticHistory interface {
	Supports(coinID string) bool
	FetchMarketChart(ctx context.Context, coinID string, days int) ([]domain.PricePoint, error)
}

type PriceHistoryRepository interface {
	UpsertHistory(ctx context.Context, coinID string, points []domain.PricePoint) error
	GetHistory(ctx context.Context, coinID string, since time.Time) ([]domain.PricePoint, error)
}

type RedisClient = cache.Store

type MarketOptions struct {
	PerPage    int
	ListingTTL time.Duration
	HistoryTTL time.Duration
}

// MarketService orchestrates listing and history retrieval with a redis
// cache in front of the provider and Postgres behind it.
type MarketService struct {
	tracer    trace.Tracer
	provider  MarketProvider
	synthetic SyntheticHistory
	repo      PriceHistoryRepository
	redis     RedisClient
	table     *overrides.Table
	opts      MarketOptions
	now       func() time.Time
}

// NewMarketService wires the service. synthetic, repo and redisClient may be
// nil.
func NewMarketService(
	tracer trace.Tracer,
	provider MarketProvider,
	synthetic SyntheticHistory,
	repo PriceHistoryRepository,
	redisClient RedisClient,
	table *overrides.Table,
	opts MarketOptions,
) *MarketService {
	if opts.ListingTTL <= 0 {
		opts.ListingTTL = defaultListingTTL
	}
	if opts.HistoryTTL <= 0 {
		opts.HistoryTTL = defaultHistoryTTL
	}
	return &MarketService{
		tracer:    tracer,
		provider:  provider,
		synthetic: synthetic,
		repo:      repo,
		redis:     redisClient,
		table:     table,
		opts:      opts,
		now:       time.Now,
	}
}

// ListCoins returns the override listings followed by the top coins by
// market cap. Override rows are always present and replace any market row
// with the same id, so their price matches the synthetic history served for
// them. The market listing is cached; override rows never are.
func (s *MarketService) ListCoins(ctx context.Context) ([]domain.Coin, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.list-coins")
	defer span.End()

	var coins []domain.Coin
	hit := false
	if s.redis != nil {
		var err error
		hit, err = cache.GetJSON(ctx, s.redis, cache.ListingKey, &coins)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
	}

	if !hit {
		fetched, err := s.fetchListing(ctx)
		if err != nil {
			return nil, err
		}
		coins = fetched
	}
	span.SetAttributes(attribute.Bool("cache_hit", hit), attribute.Int("count", len(coins)))

	return s.withOverrides(coins), nil
}

// RefreshListing fetches the listing and rewrites the cache entry.
func (s *MarketService) RefreshListing(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-listing")
	defer span.End()

	coins, err := s.fetchListing(ctx)
	if err != nil {
		return err
	}
	log.Printf("Refreshed listing (%d coins)", len(coins))
	return nil
}

// GetCoin looks a coin up in the current listing.
func (s *MarketService) GetCoin(ctx context.Context, coinID string) (domain.Coin, error) {
	coins, err := s.ListCoins(ctx)
	if err != nil {
		return domain.Coin{}, err
	}
	coin, ok := domain.FindCoin(coins, coinID)
	if !ok {
		return domain.Coin{}, fmt.Errorf("%w: %s", domain.ErrUnknownCoin, coinID)
	}
	return coin, nil
}

// GetHistory returns daily prices for the last days days. When the provider
// fails the persisted series is used if there is one.
func (s *MarketService) GetHistory(ctx context.Context, coinID string, days int) ([]domain.PricePoint, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-history")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", coinID), attribute.Int("days", days))

	if s.synthetic != nil && s.synthetic.Supports(coinID) {
		return s.synthetic.FetchMarketChart(ctx, coinID, days)
	}

	key := cache.HistoryKey(coinID, days)
	if s.redis != nil {
		var cached []domain.PricePoint
		hit, err := cache.GetJSON(ctx, s.redis, key, &cached)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if hit {
			return cached, nil
		}
	}

	points, err := s.provider.FetchMarketChart(ctx, coinID, days)
	if err != nil {
		if stored := s.storedHistory(ctx, coinID, days); len(stored) > 0 {
			log.Printf("history fetch for %s failed, serving %d stored points: %v", coinID, len(stored), err)
			return stored, nil
		}
		return nil, fmt.Errorf("fetch history for %s: %w", coinID, err)
	}

	if s.redis != nil {
		if err := cache.SetJSON(ctx, s.redis, key, points, s.opts.HistoryTTL); err != nil {
			log.Printf("redis cache write error for %s: %v", key, err)
		}
	}
	if s.repo != nil {
		if err := s.repo.UpsertHistory(ctx, coinID, points); err != nil {
			log.Printf("persist history for %s: %v", coinID, err)
		}
	}
	return points, nil
}

func (s *MarketService) fetchListing(ctx context.Context) ([]domain.Coin, error) {
	coins, err := s.provider.FetchMarkets(ctx, s.opts.PerPage)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrListingFetchFailed, err)
	}
	if s.redis != nil {
		if err := cache.SetJSON(ctx, s.redis, cache.ListingKey, coins, s.opts.ListingTTL); err != nil {
			log.Printf("redis cache write error for %s: %v", cache.ListingKey, err)
		}
	}
	return coins, nil
}

func (s *MarketService) storedHistory(ctx context.Context, coinID string, days int) []domain.PricePoint {
	if s.repo == nil {
		return nil
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	points, err := s.repo.GetHistory(ctx, coinID, since)
	if err != nil {
		log.Printf("read stored history for %s: %v", coinID, err)
		return nil
	}
	return points
}

func (s *MarketService) withOverrides(coins []domain.Coin) []domain.Coin {
	extra := s.table.Listings()
	if len(extra) == 0 {
		return coins
	}
	out := make([]domain.Coin, 0, len(extra)+len(coins))
	out = append(out, extra...)
	for _, c := range coins {
		if _, overridden := domain.FindCoin(extra, c.ID); overridden {
			continue
		}
		out = append(out, c)
	}
	return out
}
