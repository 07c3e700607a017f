package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-oracle/internal/app"
	"crypto-oracle/internal/bot"
	"crypto-oracle/internal/cache"
	"crypto-oracle/internal/config"
	"crypto-oracle/internal/db"
	"crypto-oracle/internal/handler"
	"crypto-oracle/internal/job"
	"crypto-oracle/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "crypto-oracle/docs"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	buildAppFunc        = app.Build
	backendsFunc        = app.Backends
	newListingJobFunc   = job.NewListingJob
	startListingJobFunc = func(j *job.ListingJob, ctx context.Context) {
		go func() {
			if err := j.Start(ctx); err != nil {
				log.Printf("Warning: listing refresher not running: %v", err)
			}
		}()
	}
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           CryptoOracle API
// @version         1.0
// @description     Market listings, price history, sentiment-weighted forecasts and news for crypto assets.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, "server")
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	pool, redisClient := backendsFunc()
	a, err := buildAppFunc(cfg, tracer, pool, redisClient)
	if err != nil {
		log.Fatalf("failed to build services: %v", err)
	}
	if a.Repo != nil {
		if err := a.Repo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Keep the cached listing warm (background, stopped by ctx cancel)
	listingJob := newListingJobFunc(tracer, a.Market, cfg.ListingRefreshCron)
	startListingJobFunc(listingJob, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(bot.Services{
		Market:    a.Market,
		Forecasts: a.Forecasts,
		News:      a.News,
		Preferred: a.Preferred,
		Note:      a.Table.Note,
	})

	h := newHandlerFunc(tracer, a.Market, a.Forecasts, a.News, handler.Options{
		Preferred:   a.Preferred,
		Table:       a.Table,
		Persistence: pool != nil,
		Caching:     redisClient != nil,
	})

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		log.Printf("HTTP server listening on %s", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
