package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"crypto-oracle/internal/overrides"
	"crypto-oracle/pkg/tracing"

	"github.com/gin-gonic/gin"
)

func TestHealthReportsBackends(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(testTracer, &stubMarket{}, &stubForecaster{}, &stubNews{}, Options{
		Table:       overrides.Default(),
		Persistence: true,
	})
	r := gin.New()
	r.GET("/health", h.Health)

	w := serve(r, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body struct {
		Status        string            `json:"status"`
		Service       string            `json:"service"`
		Backends      map[string]string `json:"backends"`
		OverrideCoins int               `json:"override_coins"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Service != tracing.ServiceName {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Backends["postgres"] != "enabled" || body.Backends["redis"] != "disabled" {
		t.Fatalf("unexpected backends: %v", body.Backends)
	}
	if body.OverrideCoins != 1 {
		t.Fatalf("expected 1 override coin, got %d", body.OverrideCoins)
	}
}

func TestHealthWithoutOverrideTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(testTracer, &stubMarket{}, &stubForecaster{}, &stubNews{}, Options{})
	r := gin.New()
	r.GET("/health", h.Health)

	if w := serve(r, "/health"); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
