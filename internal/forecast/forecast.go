// Package forecast builds the synthetic multi-horizon price projection.
// It is a closed-form function of the current price, a sentiment score and
// one random draw per point; nothing here is fitted to data.
package forecast

import (
	"fmt"
	"math"
	"time"

	"crypto-oracle/internal/domain"
	"crypto-oracle/internal/noise"

	"github.com/google/uuid"
)

type horizonSpec struct {
	horizon   domain.Horizon
	label     string
	points    int
	lo, hi    float64
	divisor   float64
	boostStep float64
	date      func(now time.Time, i int) time.Time
}

var horizonSpecs = []horizonSpec{
	{
		horizon: domain.HorizonShort, label: "Next 7 Days", points: 7,
		lo: -0.02, hi: 0.02, divisor: 10, boostStep: 0.01,
		date: func(now time.Time, i int) time.Time { return now.AddDate(0, 0, i+1) },
	},
	{
		horizon: domain.HorizonMedium, label: "Next 4 Weeks", points: 4,
		lo: -0.04, hi: 0.04, divisor: 8, boostStep: 0.03,
		date: func(now time.Time, i int) time.Time { return now.AddDate(0, 0, 7*(i+1)) },
	},
	{
		horizon: domain.HorizonLong, label: "Next 12 Months", points: 12,
		lo: -0.07, hi: 0.08, divisor: 6, boostStep: 0.08,
		date: func(now time.Time, i int) time.Time { return now.AddDate(0, i+1, 0) },
	},
}

// Label returns the display label of a horizon.
func Label(h domain.Horizon) string {
	for _, spec := range horizonSpecs {
		if spec.horizon == h {
			return spec.label
		}
	}
	return ""
}

// Input carries everything Build needs. Boost is the coin's configured
// multiplier; zero means the coin gets no boost.
type Input struct {
	Coin  domain.Coin
	Score float64
	Boost float64
	Now   time.Time
	Noise noise.Source
}

// Build computes a fresh forecast for in.Coin.
func Build(in Input) (*domain.Forecast, error) {
	p := in.Coin.CurrentPrice
	if !finite(p) || p < 0 {
		return nil, fmt.Errorf("%w: invalid current price %v for %s", domain.ErrGeneration, p, in.Coin.ID)
	}
	if !finite(in.Score) || !finite(in.Boost) {
		return nil, fmt.Errorf("%w: invalid inputs for %s", domain.ErrGeneration, in.Coin.ID)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	src := in.Noise
	if src == nil {
		src = noise.New()
	}

	series := make(map[domain.Horizon]domain.ForecastSeries, len(horizonSpecs))
	for _, spec := range horizonSpecs {
		s, err := buildSeries(spec, p, in.Score, in.Boost, now, src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s horizon for %s: %v", domain.ErrGeneration, spec.horizon, in.Coin.ID, err)
		}
		series[spec.horizon] = s
	}

	return &domain.Forecast{
		ID:   uuid.New(),
		Coin: in.Coin,
		Predictions: domain.Predictions{
			Short:  series[domain.HorizonShort],
			Medium: series[domain.HorizonMedium],
			Long:   series[domain.HorizonLong],
		},
		SentimentScore: in.Score,
		GeneratedAt:    now,
	}, nil
}

func buildSeries(spec horizonSpec, p, score, boost float64, now time.Time, src noise.Source) (domain.ForecastSeries, error) {
	points := make([]domain.PredictionPoint, 0, spec.points)
	for i := 0; i < spec.points; i++ {
		r := src.Uniform(spec.lo, spec.hi)
		sentimentFactor := 1 + score*float64(i+1)/spec.divisor
		boostFactor := 1 + float64(i)*spec.boostStep*boost

		raw := p * (1 + r) * sentimentFactor * boostFactor
		if !finite(raw) {
			return domain.ForecastSeries{}, fmt.Errorf("point %d is not finite", i)
		}
		price := Round2(raw)
		if price < 0 {
			price = 0
		}
		points = append(points, domain.PredictionPoint{
			Date:  spec.date(now, i),
			Price: price,
		})
	}
	return domain.ForecastSeries{Horizon: spec.horizon, Label: spec.label, Points: points}, nil
}

// Summarize reports where each horizon ends relative to the current price.
func Summarize(f *domain.Forecast) []domain.HorizonSummary {
	if f == nil {
		return nil
	}
	current := f.Coin.CurrentPrice
	out := make([]domain.HorizonSummary, 0, len(domain.Horizons))
	for _, h := range domain.Horizons {
		s := f.Predictions.Series(h)
		last, ok := s.Last()
		if !ok {
			continue
		}
		change := 0.0
		if current > 0 {
			change = Round2((last.Price - current) / current * 100)
		}
		out = append(out, domain.HorizonSummary{
			Horizon:   h,
			Label:     s.Label,
			EndDate:   last.Date.Format(domain.DateLayout),
			EndPrice:  last.Price,
			ChangePct: change,
		})
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
