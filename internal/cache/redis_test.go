package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestInitRedisWithCustomAddr(t *testing.T) {
	t.Setenv("REDIS_URL", "redis:9999")

	origNewClient := newRedisClient
	origPing := pingRedis
	t.Cleanup(func() {
		newRedisClient = origNewClient
		pingRedis = origPing
		Client = nil
	})

	var capturedAddr string
	newRedisClient = func(opts *redis.Options) *redis.Client {
		capturedAddr = opts.Addr
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return nil
	}

	InitRedis(context.Background())
	if capturedAddr != "redis:9999" {
		t.Fatalf("expected custom addr, got %s", capturedAddr)
	}
}

func TestInitRedisDefaults(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	origNewClient := newRedisClient
	origPing := pingRedis
	t.Cleanup(func() {
		newRedisClient = origNewClient
		pingRedis = origPing
		Client = nil
	})

	var capturedAddr string
	newRedisClient = func(opts *redis.Options) *redis.Client {
		capturedAddr = opts.Addr
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return nil
	}

	InitRedis(context.Background())
	if capturedAddr != "localhost:6379" {
		t.Fatalf("expected default addr, got %s", capturedAddr)
	}
}

func TestInitRedisParsesURL(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://:secret@cache:6380/2")

	origNewClient := newRedisClient
	origPing := pingRedis
	t.Cleanup(func() {
		newRedisClient = origNewClient
		pingRedis = origPing
		Client = nil
	})

	var captured *redis.Options
	newRedisClient = func(opts *redis.Options) *redis.Client {
		captured = opts
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error { return nil }

	InitRedis(context.Background())
	if captured.Addr != "cache:6380" || captured.DB != 2 || captured.Password != "secret" {
		t.Fatalf("unexpected options: addr=%s db=%d", captured.Addr, captured.DB)
	}
}

func TestInitRedisOff(t *testing.T) {
	t.Setenv("REDIS_URL", "off")

	origNewClient := newRedisClient
	t.Cleanup(func() {
		newRedisClient = origNewClient
		Client = nil
	})
	newRedisClient = func(opts *redis.Options) *redis.Client {
		t.Fatal("client should not be created")
		return nil
	}

	InitRedis(context.Background())
	if Client != nil {
		t.Fatal("expected nil client")
	}
}
