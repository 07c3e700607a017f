package service

import (
	"context"
	"fmt"

	"crypto-oracle/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type NewsProvider interface {
	FetchNews(ctx context.Context, coinID string) ([]domain.NewsItem, error)
}

type NewsService struct {
	tracer   trace.Tracer
	provider NewsProvider
}

func NewNewsService(tracer trace.Tracer, provider NewsProvider) *NewsService {
	return &NewsService{tracer: tracer, provider: provider}
}

// GetNews returns labeled headlines for coinID. Any provider failure is
// reported as ErrNewsFetchFailed.
func (s *NewsService) GetNews(ctx context.Context, coinID string) ([]domain.NewsItem, error) {
	ctx, span := s.tracer.Start(ctx, "news-service.get-news")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", coinID))

	items, err := s.provider.FetchNews(ctx, coinID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrNewsFetchFailed, coinID, err)
	}
	span.SetAttributes(attribute.Int("count", len(items)))
	return items, nil
}
