package handler

import (
	"context"

	"crypto-oracle/internal/dashboard"
	"crypto-oracle/internal/domain"
	"crypto-oracle/internal/overrides"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type MarketReader interface {
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

type Options struct {
	Preferred []string
	Table     *overrides.Table
	// Persistence and Caching report whether Postgres and Redis are wired.
	Persistence bool
	Caching     bool
}

type Handler struct {
	tracer    trace.Tracer
	market    MarketReader
	forecasts Forecaster
	news      NewsReader
	preferred []string
	table     *overrides.Table
	backends  map[string]string
}

func New(tracer trace.Tracer, market MarketReader, forecasts Forecaster, news NewsReader, opts Options) *Handler {
	return &Handler{
		tracer:    tracer,
		market:    market,
		forecasts: forecasts,
		news:      news,
		preferred: opts.Preferred,
		table:     opts.Table,
		backends: map[string]string{
			"postgres": enabled(opts.Persistence),
			"redis":    enabled(opts.Caching),
		},
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/coins", h.ListCoins)
	api.GET("/coins/:id/history", h.GetHistory)
	api.GET("/coins/:id/forecast", NoStore(), h.GetForecast)
	api.GET("/coins/:id/news", NoStore(), h.GetNews)

	r.GET("/ws/dashboard", h.DashboardSocket)
}

func (h *Handler) newSession() *dashboard.Session {
	return dashboard.NewSession(h.tracer, h.market, h.forecasts, h.news, dashboard.Options{
		Preferred: h.preferred,
		Table:     h.table,
	})
}
