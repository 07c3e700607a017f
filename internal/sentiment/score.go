package sentiment

import "crypto-oracle/internal/domain"

// Weights in hundredths: +0.05 per positive, -0.03 per negative.
const (
	positiveWeight = 5
	negativeWeight = 3
)

// Score sums the per-item weights of a news list. The result is not
// normalised, so long positive lists keep pushing it up. It is computed from
// the label tallies, so any ordering of the same list scores identically.
func Score(items []domain.NewsItem) float64 {
	counts := Counts(items)
	total := positiveWeight*counts[domain.SentimentPositive] - negativeWeight*counts[domain.SentimentNegative]
	return float64(total) / 100
}

// Counts tallies the labels of a news list.
func Counts(items []domain.NewsItem) map[domain.Sentiment]int {
	out := map[domain.Sentiment]int{
		domain.SentimentPositive: 0,
		domain.SentimentNeutral:  0,
		domain.SentimentNegative: 0,
	}
	for _, item := range items {
		if item.Sentiment.Valid() {
			out[item.Sentiment]++
		}
	}
	return out
}
