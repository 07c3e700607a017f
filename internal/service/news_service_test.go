package service

import (
	"context"
	"errors"
	"testing"

	"crypto-oracle/internal/domain"
)

func TestNewsService_GetNews(t *testing.T) {
	t.Parallel()

	provider := &mockNews{items: []domain.NewsItem{{Title: "a", Sentiment: domain.SentimentPositive}}}
	svc := NewNewsService(testTracer, provider)

	items, err := svc.GetNews(context.Background(), "bitcoin")
	if err != nil || len(items) != 1 {
		t.Fatalf("unexpected result %v %v", items, err)
	}
	if provider.lastCoin != "bitcoin" {
		t.Fatalf("unexpected coin %s", provider.lastCoin)
	}
}

func TestNewsService_WrapsFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("feed down")
	svc := NewNewsService(testTracer, &mockNews{err: cause})

	_, err := svc.GetNews(context.Background(), "bitcoin")
	if !errors.Is(err, domain.ErrNewsFetchFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped news failure, got %v", err)
	}
}

type mockNews struct {
	items    []domain.NewsItem
	err      error
	lastCoin string
}

func (m *mockNews) FetchNews(ctx context.Context, coinID string) ([]domain.NewsItem, error) {
	m.lastCoin = coinID
	return m.items, m.err
}

func (m *mockNews) GetNews(ctx context.Context, coinID string) ([]domain.NewsItem, error) {
	return m.FetchNews(ctx, coinID)
}
