package domain

import "time"

// Coin is one row of the market listing. Field names follow the CoinGecko
// /coins/markets payload so the provider can decode straight into it.
type Coin struct {
	ID             string  `json:"id"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Image          string  `json:"image"`
	CurrentPrice   float64 `json:"current_price"`
	MarketCap      float64 `json:"market_cap"`
	MarketCapRank  int     `json:"market_cap_rank"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
}

// PricePoint is one sample of a historical price series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume,omitempty"`
	MarketCap float64   `json:"market_cap,omitempty"`
}

// PriceHistory is an ordered (oldest first) series for a single coin.
type PriceHistory struct {
	CoinID string       `json:"coin_id"`
	Days   int          `json:"days"`
	Points []PricePoint `json:"points"`
}

// Latest returns the newest point, or false for an empty series.
func (h PriceHistory) Latest() (PricePoint, bool) {
	if len(h.Points) == 0 {
		return PricePoint{}, false
	}
	return h.Points[len(h.Points)-1], true
}

// FindCoin returns the coin with the given id.
func FindCoin(coins []Coin, id string) (Coin, bool) {
	for _, c := range coins {
		if c.ID == id {
			return c, true
		}
	}
	return Coin{}, false
}
