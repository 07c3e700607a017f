package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"crypto-oracle/internal/app"
	"crypto-oracle/internal/cache"
	"crypto-oracle/internal/config"
	"crypto-oracle/internal/db"
	"crypto-oracle/internal/tui"
	"crypto-oracle/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const fingerprintKey ctxKey = "ssh_fingerprint"

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initPostgresFunc  = db.InitPostgres
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	buildAppFunc      = app.Build
	backendsFunc      = app.Backends
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

// The dashboard is public: any key is accepted and only its fingerprint is
// recorded for the session banner and logs.
func acceptPublicKey(ctx ssh.Context, key ssh.PublicKey) bool {
	fingerprint := gossh.FingerprintSHA256(key)
	ctx.SetValue(fingerprintKey, fingerprint)
	log.Printf("SSH session: user=%s fingerprint=%s", ctx.User(), fingerprint)
	return true
}

func acceptKeyboardInteractive(ctx ssh.Context, _ gossh.KeyboardInteractiveChallenge) bool {
	log.Printf("SSH session: user=%s (keyboard-interactive)", ctx.User())
	return true
}

func sessionUsername(s ssh.Session) string {
	name := s.User()
	if name == "" {
		name = "guest"
	}
	if fp, ok := s.Context().Value(fingerprintKey).(string); ok && fp != "" {
		return fmt.Sprintf("%s (%s)", name, fp)
	}
	return name
}

func teaHandler(tracer trace.Tracer, a *app.App) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		model := tui.NewAppModel(tracer, tui.Services{
			Market:    a.Market,
			Forecasts: a.Forecasts,
			News:      a.News,
			Preferred: a.Preferred,
			Table:     a.Table,
			Username:  sessionUsername(s),
		})
		pty, _, _ := s.Pty()
		model.SetSize(pty.Window.Width, pty.Window.Height)

		go func() {
			<-s.Context().Done()
			model.Close()
		}()

		return model, []tea.ProgramOption{tea.WithAltScreen()}
	}
}

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
	tp, tracer, err := initTracerFunc(ctx, "ssh")
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

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(acceptPublicKey),
		wish.WithKeyboardInteractiveAuth(acceptKeyboardInteractive),
		wish.WithMiddleware(
			bubbletea.Middleware(teaHandler(tracer, a)),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
