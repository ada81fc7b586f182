package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ ResultStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	strategy   TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	balance    REAL NOT NULL,
	total      REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS run_results (
	run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	ticker   TEXT NOT NULL,
	final    REAL NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE TABLE IF NOT EXISTS straddle_summaries (
	id           TEXT PRIMARY KEY,
	ticker       TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	exit_when    TEXT NOT NULL,
	crush_ratio  REAL NOT NULL,
	trades       INTEGER NOT NULL,
	mean_pnl     REAL,
	mean_pnl_pct REAL,
	win_rate     REAL
);
CREATE INDEX IF NOT EXISTS straddle_summaries_ticker ON straddle_summaries(ticker, created_at);
`

// SQLiteStore implements ResultStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies the
// schema and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;" + schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", dbPath, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Runs
// ---------------------------------------------------------------------------

// SaveRun inserts a run and its per-ticker results in one transaction. An
// empty ID is filled with a new UUID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunSummary) error {
	if len(run.Tickers) != len(run.Values) {
		return fmt.Errorf("run has %d tickers and %d values", len(run.Tickers), len(run.Values))
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, strategy, started_at, balance, total) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Strategy, run.StartedAt.UnixMilli(), run.Balance, run.Total(),
	); err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	for i, ticker := range run.Tickers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_results (run_id, position, ticker, final) VALUES (?, ?, ?, ?)`,
			run.ID, i, ticker, run.Values[i],
		); err != nil {
			return fmt.Errorf("inserting result %s/%s: %w", run.ID, ticker, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, strategy, started_at, balance FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var startedMs int64
		if err := rows.Scan(&r.ID, &r.Strategy, &startedMs, &r.Balance); err != nil {
			rows.Close()
			return nil, err
		}
		r.StartedAt = time.UnixMilli(startedMs).UTC()
		runs = append(runs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if err := s.loadResults(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *SQLiteStore) loadResults(ctx context.Context, run *RunSummary) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker, final FROM run_results WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ticker string
		var final float64
		if err := rows.Scan(&ticker, &final); err != nil {
			return err
		}
		run.Tickers = append(run.Tickers, ticker)
		run.Values = append(run.Values, final)
	}
	return rows.Err()
}

// ---------------------------------------------------------------------------
// Straddle summaries
// ---------------------------------------------------------------------------

// SaveStraddleSummary inserts a straddle summary. NaN statistics are stored
// as NULL. An empty ID is filled with a new UUID.
func (s *SQLiteStore) SaveStraddleSummary(ctx context.Context, sum *StraddleSummary) error {
	if sum.ID == "" {
		sum.ID = uuid.NewString()
	}
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO straddle_summaries
			(id, ticker, created_at, exit_when, crush_ratio, trades, mean_pnl, mean_pnl_pct, win_rate)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.Ticker, sum.CreatedAt.UnixMilli(), sum.ExitWhen, sum.CrushRatio, sum.Trades,
		nullable(sum.MeanPnL), nullable(sum.MeanPnLPct), nullable(sum.WinRate),
	)
	if err != nil {
		return fmt.Errorf("inserting straddle summary for %s: %w", sum.Ticker, err)
	}
	return nil
}

// ListStraddleSummaries returns the most recent summaries for ticker, newest
// first, up to limit. An empty ticker lists all tickers.
func (s *SQLiteStore) ListStraddleSummaries(ctx context.Context, ticker string, limit int) ([]StraddleSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ticker, created_at, exit_when, crush_ratio, trades, mean_pnl, mean_pnl_pct, win_rate
		   FROM straddle_summaries
		  WHERE ? = '' OR ticker = ?
		  ORDER BY created_at DESC, id
		  LIMIT ?`, ticker, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StraddleSummary
	for rows.Next() {
		var r StraddleSummary
		var createdMs int64
		var pnl, pct, win sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Ticker, &createdMs, &r.ExitWhen, &r.CrushRatio, &r.Trades, &pnl, &pct, &win); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(createdMs).UTC()
		r.MeanPnL, r.MeanPnLPct, r.WinRate = orNaN(pnl), orNaN(pct), orNaN(win)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
