// Package store persists cached market data and the aggregate results of
// backtest runs.
package store

import (
	"context"
	"time"

	"quantbench/internal/domain"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars sampled at tf.
	WriteBars(ctx context.Context, tf domain.Timeframe, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol within [start, end), oldest
	// first.
	ReadBars(ctx context.Context, symbol string, tf domain.Timeframe, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols stored at tf.
	ListSymbols(ctx context.Context, tf domain.Timeframe) ([]string, error)
}

// CoverageStore tracks which time ranges of a symbol have been fetched, so
// gaps without bars (weekends, halts) are not refetched.
type CoverageStore interface {
	// CoveredUntil returns the end of the recorded range containing start, or
	// the zero time when start is not covered.
	CoveredUntil(ctx context.Context, symbol string, tf domain.Timeframe, start time.Time) (time.Time, error)

	// MarkCovered records [start, end) as fetched.
	MarkCovered(ctx context.Context, symbol string, tf domain.Timeframe, start, end time.Time) error
}

// RunSummary is the aggregate outcome of one strategy comparison run.
type RunSummary struct {
	ID        string
	Strategy  string
	StartedAt time.Time
	Balance   float64
	Tickers   []string
	Values    []float64 // final equity per ticker, same order as Tickers
}

// Total returns the sum of the final values.
func (r RunSummary) Total() float64 {
	var sum float64
	for _, v := range r.Values {
		sum += v
	}
	return sum
}

// StraddleSummary is the aggregate outcome of one straddle backtest.
type StraddleSummary struct {
	ID         string
	Ticker     string
	CreatedAt  time.Time
	ExitWhen   string
	CrushRatio float64
	Trades     int
	MeanPnL    float64 // NaN when there were no trades
	MeanPnLPct float64
	WinRate    float64
}

// ResultStore persists aggregate run results. Nothing below the aggregate
// level is stored.
type ResultStore interface {
	SaveRun(ctx context.Context, run *RunSummary) error
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	SaveStraddleSummary(ctx context.Context, s *StraddleSummary) error
	ListStraddleSummaries(ctx context.Context, ticker string, limit int) ([]StraddleSummary, error)
}
