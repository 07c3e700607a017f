package dashboard

import "crypto-oracle/internal/domain"

// SelectDefault picks the coin shown first: the first preferred id present
// in coins, else the first coin. It reports false for an empty listing.
func SelectDefault(coins []domain.Coin, preferred ...string) (domain.Coin, bool) {
	if len(coins) == 0 {
		return domain.Coin{}, false
	}
	for _, id := range preferred {
		if c, ok := domain.FindCoin(coins, id); ok {
			return c, true
		}
	}
	return coins[0], true
}
