package util

import (
	"sort"
	"time"

	"quantbench/internal/domain"
)

// TradingCalendar answers trading-day questions from an observed set of
// session dates, typically the dates of a fetched daily bar history. Dates are
// compared at day granularity in UTC.
type TradingCalendar struct {
	days []time.Time // sorted ascending, unique, UTC midnight
}

// NewTradingCalendar creates a TradingCalendar from the given session dates.
// Input order does not matter and duplicates are dropped.
func NewTradingCalendar(days []time.Time) *TradingCalendar {
	norm := make([]time.Time, 0, len(days))
	for _, d := range days {
		norm = append(norm, domain.Normalize(d))
	}
	sort.Slice(norm, func(i, j int) bool { return norm[i].Before(norm[j]) })

	uniq := norm[:0]
	for i, d := range norm {
		if i > 0 && d.Equal(uniq[len(uniq)-1]) {
			continue
		}
		uniq = append(uniq, d)
	}
	return &TradingCalendar{days: uniq}
}

// Len returns the number of trading days known to the calendar.
func (tc *TradingCalendar) Len() int { return len(tc.days) }

// Contains reports whether d is a trading day.
func (tc *TradingCalendar) Contains(d time.Time) bool {
	d = domain.Normalize(d)
	i := tc.search(d)
	return i < len(tc.days) && tc.days[i].Equal(d)
}

// Prev returns the last trading day strictly before d.
func (tc *TradingCalendar) Prev(d time.Time) (time.Time, bool) {
	i := tc.search(domain.Normalize(d))
	if i == 0 {
		return time.Time{}, false
	}
	return tc.days[i-1], true
}

// Next returns the first trading day strictly after d.
func (tc *TradingCalendar) Next(d time.Time) (time.Time, bool) {
	d = domain.Normalize(d)
	i := sort.Search(len(tc.days), func(i int) bool { return tc.days[i].After(d) })
	if i == len(tc.days) {
		return time.Time{}, false
	}
	return tc.days[i], true
}

// Between returns the trading days in [from, to], inclusive on both ends.
func (tc *TradingCalendar) Between(from, to time.Time) []time.Time {
	lo := tc.search(domain.Normalize(from))
	to = domain.Normalize(to)
	hi := sort.Search(len(tc.days), func(i int) bool { return tc.days[i].After(to) })
	if lo >= hi {
		return nil
	}
	return tc.days[lo:hi]
}

// search returns the index of the first day not before d.
func (tc *TradingCalendar) search(d time.Time) int {
	return sort.Search(len(tc.days), func(i int) bool { return !tc.days[i].Before(d) })
}

// NearestFridayOnOrAfter returns d when it falls on a Friday, otherwise the
// next Friday. The result is normalised to UTC midnight.
func NearestFridayOnOrAfter(d time.Time) time.Time {
	d = domain.Normalize(d)
	offset := (int(time.Friday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// DaysBetween returns the whole calendar days from a to b (negative when b is
// before a).
func DaysBetween(a, b time.Time) int {
	return int(domain.Normalize(b).Sub(domain.Normalize(a)).Hours() / 24)
}
