package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crypto-oracle/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func TestRunMigrationsCreatesTable(t *testing.T) {
	pool := &fakePool{}
	repo := NewPriceHistoryRepository(pool, testTracer)

	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execSQL) != 1 || !strings.Contains(pool.execSQL[0], "CREATE TABLE IF NOT EXISTS price_history") {
		t.Fatalf("unexpected exec calls: %+v", pool.execSQL)
	}
}

func TestUpsertHistoryQueuesOneStatementPerPoint(t *testing.T) {
	pool := &fakePool{}
	repo := NewPriceHistoryRepository(pool, testTracer)

	now := time.Now().UTC()
	points := []domain.PricePoint{
		{Timestamp: now.Add(-time.Hour), Price: 1},
		{Timestamp: now, Price: 2, Volume: 10, MarketCap: 100},
	}
	if err := repo.UpsertHistory(context.Background(), "bitcoin", points); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.batch == nil || pool.batch.Len() != 2 {
		t.Fatalf("expected 2 queued statements")
	}
	args := pool.batch.QueuedQueries[1].Arguments
	if args[0] != "bitcoin" || args[2] != 2.0 || args[4] != 100.0 {
		t.Fatalf("unexpected arguments: %+v", args)
	}
	if !pool.results.closed {
		t.Fatal("expected batch results to be closed")
	}
}

func TestUpsertHistoryEmptyIsNoop(t *testing.T) {
	pool := &fakePool{}
	repo := NewPriceHistoryRepository(pool, testTracer)
	if err := repo.UpsertHistory(context.Background(), "bitcoin", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.batch != nil {
		t.Fatal("expected no batch for empty input")
	}
}

func TestUpsertHistoryPropagatesExecError(t *testing.T) {
	pool := &fakePool{batchErr: errors.New("constraint")}
	repo := NewPriceHistoryRepository(pool, testTracer)
	err := repo.UpsertHistory(context.Background(), "bitcoin", []domain.PricePoint{{Timestamp: time.Now(), Price: 1}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetHistoryScansRows(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pool := &fakePool{rows: &fakeRows{data: [][]any{
		{ts, 10.0, 1.0, 100.0},
		{ts.Add(24 * time.Hour), 11.0, 2.0, 110.0},
	}}}
	repo := NewPriceHistoryRepository(pool, testTracer)

	points, err := repo.GetHistory(context.Background(), "bitcoin", ts.Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 || points[1].Price != 11 || points[1].MarketCap != 110 {
		t.Fatalf("unexpected points: %+v", points)
	}
	if pool.queryArgs[0] != "bitcoin" {
		t.Fatalf("unexpected query args: %+v", pool.queryArgs)
	}
	if !pool.rows.closed {
		t.Fatal("expected rows to be closed")
	}
}

func TestGetHistoryQueryError(t *testing.T) {
	pool := &fakePool{queryErr: errors.New("down")}
	repo := NewPriceHistoryRepository(pool, testTracer)
	if _, err := repo.GetHistory(context.Background(), "bitcoin", time.Now()); err == nil {
		t.Fatal("expected error")
	}
}

type fakePool struct {
	execSQL   []string
	batch     *pgx.Batch
	batchErr  error
	results   *fakeBatchResults
	rows      *fakeRows
	queryErr  error
	queryArgs []any
}

func (f *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakePool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batch = b
	f.results = &fakeBatchResults{err: f.batchErr}
	return f.results
}

func (f *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.queryArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.rows == nil {
		f.rows = &fakeRows{}
	}
	return f.rows, nil
}

type fakeBatchResults struct {
	err    error
	closed bool
}

func (f *fakeBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, f.err }
func (f *fakeBatchResults) Query() (pgx.Rows, error)         { return nil, f.err }
func (f *fakeBatchResults) QueryRow() pgx.Row                { return nil }
func (f *fakeBatchResults) Close() error {
	f.closed = true
	return nil
}

type fakeRows struct {
	data   [][]any
	idx    int
	closed bool
}

func (f *fakeRows) Close()                                       { f.closed = true }
func (f *fakeRows) Err() error                                   { return nil }
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return f.data[f.idx-1], nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Next() bool {
	if f.idx >= len(f.data) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.data[f.idx-1]
	*dest[0].(*time.Time) = row[0].(time.Time)
	for i := 1; i < len(dest); i++ {
		*dest[i].(*float64) = row[i].(float64)
	}
	return nil
}
