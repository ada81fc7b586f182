// Package marketdata supplies price series, daily history and earnings dates
// to the simulations. Implementations talk to Alpaca, a local parquet cache
// or a YAML earnings calendar.
package marketdata

import (
	"context"
	"time"

	"quantbench/internal/domain"
)

// MaxHourlyLookbackDays is the default and the maximum history requested for
// hourly series.
const MaxHourlyLookbackDays = 730

// SeriesOptions controls PriceSeries.
type SeriesOptions struct {
	// LookbackDays is how far back to fetch; zero means MaxHourlyLookbackDays.
	LookbackDays int
	// RTHOnly keeps only bars whose timestamp falls in 09:30–16:00
	// America/New_York.
	RTHOnly bool
}

// Days returns the effective lookback, clamped to [1, MaxHourlyLookbackDays].
func (o SeriesOptions) Days() int {
	if o.LookbackDays <= 0 || o.LookbackDays > MaxHourlyLookbackDays {
		return MaxHourlyLookbackDays
	}
	return o.LookbackDays
}

// PriceSource returns hourly closing prices for a ticker, oldest first. An
// unknown ticker or an empty window yields an empty slice, not an error.
type PriceSource interface {
	PriceSeries(ctx context.Context, ticker string, opts SeriesOptions) ([]float64, error)
}

// EarningsSource returns up to maxEvents of the most recent earnings dates
// for a ticker, oldest first.
type EarningsSource interface {
	EarningsDates(ctx context.Context, ticker string, maxEvents int) ([]time.Time, error)
}

// HistorySource returns split- and dividend-adjusted daily closes in
// [start, end], oldest first.
type HistorySource interface {
	DailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]domain.DailyClose, error)
}

// BarFetcher fetches raw bars for one symbol and timeframe in [start, end).
type BarFetcher interface {
	FetchBars(ctx context.Context, symbol string, tf domain.Timeframe, start, end time.Time) ([]domain.Bar, error)
}
