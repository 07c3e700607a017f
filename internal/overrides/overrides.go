// Package overrides holds per-coin special cases: forecast boosts, listings
// that the market endpoint does not carry, synthetic price history and
// canned headlines. The table loads from YAML and falls back to Default.
package overrides

import (
	"fmt"
	"os"
	"strings"

	"crypto-oracle/internal/domain"

	"gopkg.in/yaml.v3"
)

type Listing struct {
	Symbol         string  `yaml:"symbol"`
	Name           string  `yaml:"name"`
	Image          string  `yaml:"image"`
	CurrentPrice   float64 `yaml:"current_price"`
	MarketCap      float64 `yaml:"market_cap"`
	MarketCapRank  int     `yaml:"market_cap_rank"`
	PriceChange24h float64 `yaml:"price_change_24h"`
}

type SyntheticHistory struct {
	BasePrice  float64 `yaml:"base_price"`
	Volatility float64 `yaml:"volatility"`
	DailyTrend float64 `yaml:"daily_trend"`
}

type Headline struct {
	Title     string           `yaml:"title"`
	Source    string           `yaml:"source"`
	Sentiment domain.Sentiment `yaml:"sentiment"`
	AgeDays   int              `yaml:"age_days"`
}

type Entry struct {
	Boost     float64           `yaml:"boost"`
	Listing   *Listing          `yaml:"listing"`
	History   *SyntheticHistory `yaml:"synthetic_history"`
	Headlines []Headline        `yaml:"headlines"`
	Note      string            `yaml:"note"`
}

type Table struct {
	Coins map[string]Entry `yaml:"coins"`
	order []string
}

// Default is the built-in table used when no file is configured.
func Default() *Table {
	t := &Table{Coins: map[string]Entry{
		"pi-network": {
			Boost: 1.5,
			Listing: &Listing{
				Symbol:         "pi",
				Name:           "PI Network",
				Image:          "https://cryptologos.cc/logos/pi-network-pi-logo.png",
				CurrentPrice:   0.42,
				PriceChange24h: 0.5,
			},
			History: &SyntheticHistory{BasePrice: 0.4, Volatility: 0.05, DailyTrend: 0.001},
			Headlines: []Headline{
				{Title: "PI Network approaches mainnet launch with growing community support", Source: "CryptoInsider", Sentiment: domain.SentimentPositive, AgeDays: 0},
				{Title: "PI Network's unique mining approach attracts millions of mobile users", Source: "BlockchainReport", Sentiment: domain.SentimentPositive, AgeDays: 1},
				{Title: "Analysts debate PI Network's potential value upon exchange listing", Source: "CryptoNews", Sentiment: domain.SentimentNeutral, AgeDays: 2},
			},
			Note: "PI Network is not yet traded on major exchanges. These predictions are based on estimated values and community expectations.",
		},
	}}
	t.order = []string{"pi-network"}
	return t
}

// Load reads a YAML table from path. A missing file yields Default.
func Load(path string) (*Table, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}
	t := &Table{}
	if root.Kind == 0 {
		t.Coins = map[string]Entry{}
		return t, nil
	}
	if err := root.Decode(t); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	if t.Coins == nil {
		t.Coins = map[string]Entry{}
	}
	t.order = coinOrder(&root)

	for id, e := range t.Coins {
		if e.Boost < 0 {
			return nil, fmt.Errorf("override %s: boost must not be negative", id)
		}
		for i, h := range e.Headlines {
			if h.Sentiment == "" {
				e.Headlines[i].Sentiment = domain.SentimentNeutral
			} else if !h.Sentiment.Valid() {
				return nil, fmt.Errorf("override %s: invalid sentiment %q", id, h.Sentiment)
			}
		}
	}
	return t, nil
}

// coinOrder keeps the file order of the coins mapping so listings are
// prepended in the order they were written.
func coinOrder(root *yaml.Node) []string {
	if root == nil || len(root.Content) == 0 {
		return nil
	}
	doc := root.Content[0]
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "coins" {
			continue
		}
		coins := doc.Content[i+1]
		var out []string
		for j := 0; j+1 < len(coins.Content); j += 2 {
			out = append(out, coins.Content[j].Value)
		}
		return out
	}
	return nil
}

// Boost returns the configured multiplier for coinID, or 0 when the coin
// gets no boost.
func (t *Table) Boost(coinID string) float64 {
	if t == nil {
		return 0
	}
	return t.Coins[coinID].Boost
}

func (t *Table) Lookup(coinID string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.Coins[coinID]
	return e, ok
}

// Listings returns the synthetic listing rows in table order.
func (t *Table) Listings() []domain.Coin {
	if t == nil {
		return nil
	}
	var out []domain.Coin
	for _, id := range t.ids() {
		l := t.Coins[id].Listing
		if l == nil {
			continue
		}
		out = append(out, domain.Coin{
			ID:             id,
			Symbol:         l.Symbol,
			Name:           l.Name,
			Image:          l.Image,
			CurrentPrice:   l.CurrentPrice,
			MarketCap:      l.MarketCap,
			MarketCapRank:  l.MarketCapRank,
			PriceChange24h: l.PriceChange24h,
		})
	}
	return out
}

// History returns the synthetic history parameters for coinID.
func (t *Table) History(coinID string) (SyntheticHistory, bool) {
	e, ok := t.Lookup(coinID)
	if !ok || e.History == nil {
		return SyntheticHistory{}, false
	}
	return *e.History, true
}

// Note returns the disclaimer shown next to the coin's forecast.
func (t *Table) Note(coinID string) string {
	e, _ := t.Lookup(coinID)
	return e.Note
}

func (t *Table) ids() []string {
	if len(t.order) == len(t.Coins) {
		return t.order
	}
	seen := make(map[string]bool, len(t.order))
	out := make([]string, 0, len(t.Coins))
	for _, id := range t.order {
		if _, ok := t.Coins[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for id := range t.Coins {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}
