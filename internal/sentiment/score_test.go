package sentiment

import (
	"math"
	"testing"

	"crypto-oracle/internal/domain"
)

func newsOf(labels ...domain.Sentiment) []domain.NewsItem {
	items := make([]domain.NewsItem, 0, len(labels))
	for _, l := range labels {
		items = append(items, domain.NewsItem{Title: "headline", Sentiment: l})
	}
	return items
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.NewsItem
		want  float64
	}{
		{"empty", nil, 0},
		{"neutral only", newsOf(domain.SentimentNeutral, domain.SentimentNeutral), 0},
		{"mock list", newsOf(domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentPositive), 0.10},
		{"mixed", newsOf(domain.SentimentPositive, domain.SentimentNegative), 0.02},
		{"negative", newsOf(domain.SentimentNegative, domain.SentimentNegative), -0.06},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.items); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestScoreOrderIndependentAndAdditive(t *testing.T) {
	a := newsOf(domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral)
	b := newsOf(domain.SentimentNegative, domain.SentimentPositive, domain.SentimentPositive)

	joined := append(append([]domain.NewsItem(nil), a...), b...)
	if math.Abs(Score(joined)-(Score(a)+Score(b))) > 1e-12 {
		t.Fatalf("score is not additive: %f vs %f", Score(joined), Score(a)+Score(b))
	}
}

func TestScoreExactUnderReordering(t *testing.T) {
	labels := []domain.Sentiment{domain.SentimentPositive, domain.SentimentNegative}
	for n := 1; n <= 12; n++ {
		for mask := 0; mask < 1<<n; mask++ {
			items := make([]domain.NewsItem, n)
			reversed := make([]domain.NewsItem, n)
			for i := 0; i < n; i++ {
				s := labels[(mask>>i)&1]
				items[i] = domain.NewsItem{Sentiment: s}
				reversed[n-1-i] = domain.NewsItem{Sentiment: s}
			}
			if got, rev := Score(items), Score(reversed); got != rev {
				t.Fatalf("score depends on order for %v: %.20f vs %.20f", items, got, rev)
			}
		}
	}
}

func TestScoreMixedList(t *testing.T) {
	items := newsOf(domain.SentimentNegative, domain.SentimentPositive, domain.SentimentPositive, domain.SentimentPositive)
	if got := Score(items); got != 0.12 {
		t.Fatalf("expected 0.12, got %.20f", got)
	}
}

func TestCounts(t *testing.T) {
	counts := Counts(newsOf(domain.SentimentPositive, domain.SentimentPositive, domain.SentimentNegative))
	if counts[domain.SentimentPositive] != 2 || counts[domain.SentimentNegative] != 1 || counts[domain.SentimentNeutral] != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}
