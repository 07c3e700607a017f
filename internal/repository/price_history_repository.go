package repository

import (
	"context"
	"time"

	"crypto-oracle/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const createPriceHistoryTable = `
CREATE TABLE IF NOT EXISTS price_history (
    coin_id     TEXT        NOT NULL,
    ts          TIMESTAMPTZ NOT NULL,
    price       NUMERIC     NOT NULL,
    volume      NUMERIC     NOT NULL DEFAULT 0,
    market_cap  NUMERIC     NOT NULL DEFAULT 0,
    PRIMARY KEY (coin_id, ts)
);

CREATE INDEX IF NOT EXISTS idx_price_history_coin_ts
    ON price_history (coin_id, ts DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PriceHistoryRepository persists market price series. Forecasts are never
// stored; this only keeps the history they are derived from.
type PriceHistoryRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPriceHistoryRepository(pool PgxPool, tracer trace.Tracer) *PriceHistoryRepository {
	return &PriceHistoryRepository{pool: pool, tracer: tracer}
}

func (r *PriceHistoryRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "price-history-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createPriceHistoryTable)
	return err
}

func (r *PriceHistoryRepository) UpsertHistory(ctx context.Context, coinID string, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "price-history-repo.upsert-history")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", coinID), attribute.Int("points", len(points)))

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(
			`INSERT INTO price_history (coin_id, ts, price, volume, market_cap)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (coin_id, ts) DO UPDATE SET
			     price = EXCLUDED.price,
			     volume = EXCLUDED.volume,
			     market_cap = EXCLUDED.market_cap`,
			coinID, p.Timestamp, p.Price, p.Volume, p.MarketCap,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range points {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetHistory returns the points recorded since the given time, oldest first.
func (r *PriceHistoryRepository) GetHistory(ctx context.Context, coinID string, since time.Time) ([]domain.PricePoint, error) {
	_, span := r.tracer.Start(ctx, "price-history-repo.get-history")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", coinID))

	rows, err := r.pool.Query(ctx,
		`SELECT ts, price, volume, market_cap
		 FROM price_history
		 WHERE coin_id = $1 AND ts >= $2
		 ORDER BY ts ASC`,
		coinID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Price, &p.Volume, &p.MarketCap); err != nil {
			return nil, err
		}
		p.Timestamp = p.Timestamp.UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}
