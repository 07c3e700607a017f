package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Title is the badge form of the label ("Positive").
func (s Sentiment) Title() string {
	if s == "" {
		return ""
	}
	v := string(s)
	return strings.ToUpper(v[:1]) + v[1:]
}

type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	Sentiment   Sentiment `json:"sentiment"`
}

type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// Horizons lists every forecast horizon in display order.
var Horizons = []Horizon{HorizonShort, HorizonMedium, HorizonLong}

const DateLayout = "2006-01-02"

// PredictionPoint is one forecast sample. The date serialises as a calendar
// date, matching what the dashboard charts.
type PredictionPoint struct {
	Date  time.Time
	Price float64
}

type predictionPointJSON struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

func (p PredictionPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(predictionPointJSON{Date: p.Date.Format(DateLayout), Price: p.Price})
}

func (p *PredictionPoint) UnmarshalJSON(data []byte) error {
	var raw predictionPointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return err
	}
	p.Date = d
	p.Price = raw.Price
	return nil
}

type ForecastSeries struct {
	Horizon Horizon           `json:"horizon"`
	Label   string            `json:"label"`
	Points  []PredictionPoint `json:"points"`
}

// Last returns the final point of the series.
func (s ForecastSeries) Last() (PredictionPoint, bool) {
	if len(s.Points) == 0 {
		return PredictionPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

type Predictions struct {
	Short  ForecastSeries `json:"shortTerm"`
	Medium ForecastSeries `json:"mediumTerm"`
	Long   ForecastSeries `json:"longTerm"`
}

// Series returns the series for h.
func (p Predictions) Series(h Horizon) ForecastSeries {
	switch h {
	case HorizonMedium:
		return p.Medium
	case HorizonLong:
		return p.Long
	default:
		return p.Short
	}
}

// Forecast is created fresh per request and never mutated afterwards.
type Forecast struct {
	ID             uuid.UUID   `json:"id"`
	Coin           Coin        `json:"coin"`
	Predictions    Predictions `json:"predictions"`
	SentimentScore float64     `json:"sentiment_score"`
	GeneratedAt    time.Time   `json:"generated_at"`
}

type HorizonSummary struct {
	Horizon   Horizon `json:"horizon"`
	Label     string  `json:"label"`
	EndDate   string  `json:"end_date"`
	EndPrice  float64 `json:"end_price"`
	ChangePct float64 `json:"change_pct"`
}
