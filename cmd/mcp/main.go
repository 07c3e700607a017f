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
	"crypto-oracle/internal/cache"
	"crypto-oracle/internal/config"
	"crypto-oracle/internal/db"
	"crypto-oracle/internal/mcpserver"
	"crypto-oracle/internal/provider"
	"crypto-oracle/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	buildAppFunc     = app.Build
	backendsFunc     = app.Backends
	runStdioFunc     = func(ctx context.Context, s *mcp.Server) error {
		return s.Run(ctx, &mcp.StdioTransport{})
	}
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
)

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
	tp, tracer, err := initTracerFunc(ctx, "mcp")
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

	server := mcpserver.New(tracer, mcpserver.Services{
		Market:    a.Market,
		Forecasts: a.Forecasts,
		News:      a.News,
		Preferred: a.Preferred,
		Table:     a.Table,
		Limiter:   provider.PerMinute(cfg.MCPRateLimitPerMin),
	})

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)

	if cfg.MCPTransport != "http" {
		// stdout carries the protocol; logs go to stderr.
		go func() {
			waitForSignalFunc(quit)
			cancel()
		}()
		log.Println("MCP server running on stdio")
		if err := runStdioFunc(ctx, server); err != nil && ctx.Err() == nil {
			log.Printf("MCP stdio session ended: %v", err)
		}
		log.Println("MCP server exited")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort),
		Handler: mux,
	}

	go func() {
		log.Printf("MCP server listening on http://%s/mcp", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	waitForSignalFunc(quit)
	log.Println("Shutting down MCP server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Printf("MCP server shutdown error: %v", err)
	}

	log.Println("MCP server exited")
}
