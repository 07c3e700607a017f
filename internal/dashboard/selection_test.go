package dashboard

import (
	"testing"

	"crypto-oracle/internal/domain"
)

func TestSelectDefault(t *testing.T) {
	t.Parallel()

	pi := domain.Coin{ID: "pi-network"}
	btc := domain.Coin{ID: "bitcoin"}
	eth := domain.Coin{ID: "ethereum"}

	tests := []struct {
		name   string
		coins  []domain.Coin
		wantID string
		wantOK bool
	}{
		{name: "both present", coins: []domain.Coin{eth, btc, pi}, wantID: "pi-network", wantOK: true},
		{name: "second only", coins: []domain.Coin{eth, btc}, wantID: "bitcoin", wantOK: true},
		{name: "neither", coins: []domain.Coin{eth}, wantID: "ethereum", wantOK: true},
		{name: "empty", coins: nil, wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := SelectDefault(tt.coins, "pi-network", "bitcoin")
			if ok != tt.wantOK || got.ID != tt.wantID {
				t.Fatalf("got (%q, %v), want (%q, %v)", got.ID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestSelectDefaultWithoutPreference(t *testing.T) {
	t.Parallel()

	got, ok := SelectDefault([]domain.Coin{{ID: "solana"}, {ID: "bitcoin"}})
	if !ok || got.ID != "solana" {
		t.Fatalf("expected first coin, got %q", got.ID)
	}
}
