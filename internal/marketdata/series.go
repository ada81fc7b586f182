package marketdata

import (
	"context"
	"fmt"
	"time"

	"quantbench/internal/domain"
)

// Compile-time interface checks.
var (
	_ PriceSource   = (*SeriesSource)(nil)
	_ HistorySource = (*SeriesSource)(nil)
)

// Regular trading hours in America/New_York minutes past midnight. Both ends
// are inclusive.
const (
	rthOpenMinute  = 9*60 + 30
	rthCloseMinute = 16 * 60
	hourMinutes    = 60
)

// SeriesSource turns any BarFetcher into the close-price views the
// simulations consume.
type SeriesSource struct {
	fetcher BarFetcher
	now     func() time.Time
	newYork *time.Location
}

// NewSeriesSource creates a SeriesSource over fetcher. The New York time zone
// must be available (tzdata) for RTH filtering.
func NewSeriesSource(fetcher BarFetcher) (*SeriesSource, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("loading America/New_York: %w", err)
	}
	return &SeriesSource{fetcher: fetcher, now: time.Now, newYork: loc}, nil
}

// PriceSeries returns hourly closes over the trailing opts.Days() days,
// oldest first, optionally restricted to regular trading hours.
func (s *SeriesSource) PriceSeries(ctx context.Context, ticker string, opts SeriesOptions) ([]float64, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -opts.Days())

	bars, err := s.fetcher.FetchBars(ctx, ticker, domain.TimeframeHour, start, end)
	if err != nil {
		return nil, err
	}
	if opts.RTHOnly {
		bars = s.regularHours(bars)
	}
	return domain.Closes(bars), nil
}

// DailyHistory returns daily closes for every session date in [start, end].
func (s *SeriesSource) DailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]domain.DailyClose, error) {
	from := domain.Normalize(start)
	to := domain.Normalize(end).AddDate(0, 0, 1)

	bars, err := s.fetcher.FetchBars(ctx, ticker, domain.TimeframeDay, from, to)
	if err != nil {
		return nil, err
	}
	return domain.DailyCloses(bars), nil
}

// regularHours keeps hourly bars whose interval overlaps the 09:30-16:00 New
// York session. Bars are stamped with their start time, so the 09:00 bar
// carries the open and the 16:00 bar is entirely after hours.
func (s *SeriesSource) regularHours(bars []domain.Bar) []domain.Bar {
	out := bars[:0:0]
	for _, b := range bars {
		local := b.Timestamp.In(s.newYork)
		start := local.Hour()*60 + local.Minute()
		if start < rthCloseMinute && start+hourMinutes > rthOpenMinute {
			out = append(out, b)
		}
	}
	return out
}
