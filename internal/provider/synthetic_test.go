package provider

import (
	"context"
	"math"
	"testing"
	"time"

	"crypto-oracle/internal/noise"
	"crypto-oracle/internal/overrides"

	"go.opentelemetry.io/otel/trace"
)

func TestSyntheticHistoryShape(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := NewSyntheticHistoryProvider(trace.NewNoopTracerProvider().Tracer("test"), overrides.Default(), noise.Pinned(0))
	p.now = func() time.Time { return now }

	points, err := p.FetchMarketChart(context.Background(), "pi-network", 365)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 366 {
		t.Fatalf("expected 366 points, got %d", len(points))
	}
	if !points[365].Timestamp.Equal(now) || !points[0].Timestamp.Equal(now.AddDate(0, 0, -365)) {
		t.Fatalf("unexpected range %v .. %v", points[0].Timestamp, points[365].Timestamp)
	}
	if math.Abs(points[0].Price-0.4) > 1e-12 {
		t.Fatalf("expected base price on first day, got %f", points[0].Price)
	}
	want := 0.4 * (1 + 0.001*365)
	if math.Abs(points[365].Price-want) > 1e-12 {
		t.Fatalf("expected trended price %f, got %f", want, points[365].Price)
	}
	if math.Abs(points[365].MarketCap-points[365].Price*1e8) > 1e-3 {
		t.Fatalf("unexpected market cap %f", points[365].MarketCap)
	}
}

func TestSyntheticHistoryWobbleBounds(t *testing.T) {
	p := NewSyntheticHistoryProvider(trace.NewNoopTracerProvider().Tracer("test"), overrides.Default(), nil)
	points, err := p.FetchMarketChart(context.Background(), "pi-network", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, pt := range points {
		trend := 1 + 0.001*float64(i)
		lo, hi := 0.4*0.95*trend, 0.4*1.05*trend
		if pt.Price < lo-1e-12 || pt.Price > hi+1e-12 {
			t.Fatalf("point %d price %f outside [%f, %f]", i, pt.Price, lo, hi)
		}
		if pt.Volume < 0 || pt.Volume > 1e7 {
			t.Fatalf("point %d volume %f out of range", i, pt.Volume)
		}
	}
}

func TestSyntheticHistoryUnsupportedCoin(t *testing.T) {
	p := NewSyntheticHistoryProvider(trace.NewNoopTracerProvider().Tracer("test"), overrides.Default(), nil)
	if p.Supports("bitcoin") {
		t.Fatal("bitcoin should not be synthetic")
	}
	if !p.Supports("pi-network") {
		t.Fatal("pi-network should be synthetic")
	}
	if _, err := p.FetchMarketChart(context.Background(), "bitcoin", 10); err == nil {
		t.Fatal("expected error for unsupported coin")
	}
}
