package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crypto-oracle/internal/dashboard"

	"github.com/gorilla/websocket"
)

func TestDashboardSocket(t *testing.T) {
	r := newTestRouter(&stubMarket{coins: defaultCoins()}, &stubForecaster{}, &stubNews{})
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitFor := func(match func(dashboard.Snapshot) bool) dashboard.Snapshot {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for {
			var snap dashboard.Snapshot
			if err := conn.ReadJSON(&snap); err != nil {
				t.Fatalf("read: %v", err)
			}
			if match(snap) {
				return snap
			}
		}
	}

	snap := waitFor(func(s dashboard.Snapshot) bool {
		return s.Phase == dashboard.PhaseForecastReady
	})
	if snap.Selected == nil || snap.Selected.ID != "pi-network" {
		t.Fatalf("expected default selection, got %+v", snap.Selected)
	}

	if err := conn.WriteJSON(map[string]string{"action": "select", "coin_id": "bitcoin"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	snap = waitFor(func(s dashboard.Snapshot) bool {
		return s.Phase == dashboard.PhaseForecastReady && s.Selected != nil && s.Selected.ID == "bitcoin"
	})
	if snap.Forecast == nil || snap.Forecast.Coin.ID != "bitcoin" {
		t.Fatalf("unexpected forecast %+v", snap.Forecast)
	}
}
