// Package dashboard coordinates one viewer's requests: listing, coin
// selection, forecast and news. Each user action starts a new sequence and
// only the latest sequence may change what the viewer sees.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"crypto-oracle/internal/domain"
	"crypto-oracle/internal/forecast"
	"crypto-oracle/internal/overrides"
	"crypto-oracle/internal/sentiment"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseLoadingListing     Phase = "loading_listing"
	PhaseListingLoaded      Phase = "listing_loaded"
	PhaseGeneratingForecast Phase = "generating_forecast"
	PhaseForecastReady      Phase = "forecast_ready"
	PhaseError              Phase = "error"
)

// Snapshot is an immutable view of the session. A new one replaces the old
// on every change.
type Snapshot struct {
	SessionID      uuid.UUID               `json:"session_id"`
	Seq            uint64                  `json:"seq"`
	Phase          Phase                   `json:"phase"`
	Coins          []domain.Coin           `json:"coins"`
	Selected       *domain.Coin            `json:"selected,omitempty"`
	Forecast       *domain.Forecast        `json:"forecast,omitempty"`
	Summaries      []domain.HorizonSummary `json:"summaries,omitempty"`
	News           []domain.NewsItem       `json:"news"`
	NewsLoading    bool                    `json:"news_loading"`
	NewsError      string                  `json:"news_error,omitempty"`
	SentimentScore float64                 `json:"sentiment_score"`
	Note           string                  `json:"note,omitempty"`
	Error          string                  `json:"error,omitempty"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

type CoinLister interface {
	ListCoins(ctx context.Context) ([]domain.Coin, error)
}

type Forecaster interface {
	Generate(ctx context.Context, coin domain.Coin) (*domain.Forecast, error)
}

type NewsReader interface {
	GetNews(ctx context.Context, coinID string) ([]domain.NewsItem, error)
}

type Options struct {
	Preferred []string
	Table     *overrides.Table
}

type Session struct {
	id        uuid.UUID
	tracer    trace.Tracer
	market    CoinLister
	forecasts Forecaster
	news      NewsReader
	preferred []string
	table     *overrides.Table
	now       func() time.Time

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int
}

func NewSession(tracer trace.Tracer, market CoinLister, forecasts Forecaster, news NewsReader, opts Options) *Session {
	s := &Session{
		id:        uuid.New(),
		tracer:    tracer,
		market:    market,
		forecasts: forecasts,
		news:      news,
		preferred: opts.Preferred,
		table:     opts.Table,
		now:       time.Now,
		subs:      make(map[int]chan Snapshot),
	}
	s.snap = Snapshot{SessionID: s.id, Phase: PhaseIdle}
	return s
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe returns a channel that receives every committed snapshot,
// starting with the current one. Slow readers miss intermediate snapshots
// but always get the newest.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snap

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close cancels any running sequence and closes all subscriptions.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// LoadListing fetches the coin list, applies the default selection and
// forecasts the chosen coin.
func (s *Session) LoadListing(ctx context.Context) error {
	ctx, seq, done := s.begin(ctx, "dashboard.load-listing")
	defer done()

	s.commit(seq, func(snap *Snapshot) {
		snap.Phase = PhaseLoadingListing
		snap.Error = ""
	})

	coins, err := s.market.ListCoins(ctx)
	if err != nil {
		if s.commit(seq, func(snap *Snapshot) {
			snap.Phase = PhaseError
			snap.Error = UserMessage(OpListing, err)
		}) {
			log.Printf("dashboard %s: listing: %v", s.id, err)
		}
		return err
	}

	coin, ok := SelectDefault(coins, s.preferred...)
	if !s.commit(seq, func(snap *Snapshot) {
		snap.Phase = PhaseListingLoaded
		snap.Coins = coins
	}) || !ok {
		return nil
	}
	return s.runForecast(ctx, seq, coin, OpSelect)
}

// Select switches the viewer to coinID and forecasts it.
func (s *Session) Select(ctx context.Context, coinID string) error {
	coin, ok := domain.FindCoin(s.Snapshot().Coins, coinID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCoin, coinID)
	}

	ctx, seq, done := s.begin(ctx, "dashboard.select")
	defer done()
	return s.runForecast(ctx, seq, coin, OpSelect)
}

// Refresh regenerates the forecast and news for the selected coin. Without a
// selection it reloads the listing.
func (s *Session) Refresh(ctx context.Context) error {
	selected := s.Snapshot().Selected
	if selected == nil {
		return s.LoadListing(ctx)
	}

	ctx, seq, done := s.begin(ctx, "dashboard.refresh")
	defer done()
	return s.runForecast(ctx, seq, *selected, OpRefresh)
}

// runForecast fetches the forecast and the displayed headlines
// independently, so either can fail alone. The forecast reads news on its own
// and live providers may return a different set, so once a forecast exists
// the snapshot reports the score that produced its prices.
func (s *Session) runForecast(ctx context.Context, seq uint64, coin domain.Coin, op Operation) error {
	s.commit(seq, func(snap *Snapshot) {
		snap.Phase = PhaseGeneratingForecast
		snap.Selected = &coin
		snap.Note = s.table.Note(coin.ID)
		snap.Error = ""
		snap.NewsLoading = true
		snap.NewsError = ""
		if op != OpRefresh {
			snap.Forecast = nil
			snap.Summaries = nil
			snap.News = nil
			snap.SentimentScore = 0
		}
	})

	var (
		wg      sync.WaitGroup
		f       *domain.Forecast
		fErr    error
		items   []domain.NewsItem
		newsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		f, fErr = s.forecasts.Generate(ctx, coin)
	}()
	go func() {
		defer wg.Done()
		items, newsErr = s.news.GetNews(ctx, coin.ID)
	}()
	wg.Wait()

	committed := s.commit(seq, func(snap *Snapshot) {
		snap.NewsLoading = false
		if newsErr != nil {
			snap.NewsError = UserMessage(OpNews, newsErr)
		} else {
			snap.News = items
			snap.SentimentScore = sentiment.Score(items)
		}
		if fErr != nil {
			snap.Phase = PhaseError
			snap.Error = UserMessage(op, fErr)
			snap.Forecast = nil
			snap.Summaries = nil
			return
		}
		snap.Phase = PhaseForecastReady
		snap.Forecast = f
		snap.Summaries = forecast.Summarize(f)
		snap.SentimentScore = f.SentimentScore
	})
	if !committed {
		return nil
	}
	if newsErr != nil {
		log.Printf("dashboard %s: news for %s: %v", s.id, coin.ID, newsErr)
	}
	if fErr != nil {
		log.Printf("dashboard %s: forecast for %s: %v", s.id, coin.ID, fErr)
		return fErr
	}
	return nil
}

// begin starts a new sequence, cancelling the previous one.
func (s *Session) begin(parent context.Context, name string) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(parent)
	ctx, span := s.tracer.Start(ctx, name)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	span.SetAttributes(attribute.String("session_id", s.id.String()), attribute.Int64("seq", int64(seq)))
	return ctx, seq, func() {
		span.End()
		cancel()
	}
}

// commit applies fn to a copy of the snapshot and publishes it, unless a
// newer sequence has started. It reports whether the change was applied.
func (s *Session) commit(seq uint64, fn func(*Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}

	next := s.snap
	fn(&next)
	next.Seq = seq
	next.UpdatedAt = s.now().UTC()
	s.snap = next

	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
	return true
}
