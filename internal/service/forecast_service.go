package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"crypto-oracle/internal/domain"
	"crypto-oracle/internal/forecast"
	"crypto-oracle/internal/noise"
	"crypto-oracle/internal/overrides"
	"crypto-oracle/internal/sentiment"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HistoryDays is how much history a forecast requires to exist.
const HistoryDays = 365

type HistoryReader interface {
	GetHistory(ctx context.Context, coinID string, days int) ([]domain.PricePoint, error)
}

type NewsReader interface {
	GetNews(ctx context.Context, coinID string) ([]domain.NewsItem, error)
}

type ForecastService struct {
	tracer  trace.Tracer
	history HistoryReader
	news    NewsReader
	table   *overrides.Table
	noise   noise.Source
	now     func() time.Time
}

func NewForecastService(tracer trace.Tracer, history HistoryReader, news NewsReader, table *overrides.Table, src noise.Source) *ForecastService {
	if src == nil {
		src = noise.New()
	}
	return &ForecastService{
		tracer:  tracer,
		history: history,
		news:    news,
		table:   table,
		noise:   src,
		now:     time.Now,
	}
}

// Generate builds a fresh forecast for coin. Nothing is cached between calls.
func (s *ForecastService) Generate(ctx context.Context, coin domain.Coin) (*domain.Forecast, error) {
	ctx, span := s.tracer.Start(ctx, "forecast-service.generate")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", coin.ID))

	points, err := s.history.GetHistory(ctx, coin.ID, HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrPredictionUnavailable, coin.ID, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no price history for %s", domain.ErrPredictionUnavailable, coin.ID)
	}

	score := 0.0
	items, err := s.news.GetNews(ctx, coin.ID)
	if err != nil {
		log.Printf("news unavailable for %s, forecasting with neutral sentiment: %v", coin.ID, err)
	} else {
		score = sentiment.Score(items)
	}
	span.SetAttributes(attribute.Float64("sentiment_score", score))

	return forecast.Build(forecast.Input{
		Coin:  coin,
		Score: score,
		Boost: s.table.Boost(coin.ID),
		Now:   s.now(),
		Noise: s.noise,
	})
}
