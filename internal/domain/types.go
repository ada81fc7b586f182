// Package domain holds the types shared between the data collaborators and the
// simulation core.
package domain

import "time"

// Timeframe identifies the bar interval a series was sampled at.
type Timeframe string

const (
	TimeframeHour Timeframe = "1h"
	TimeframeDay  Timeframe = "1d"
)

// Bar is one OHLCV sample for a symbol.
type Bar struct {
	Symbol     string
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
	TradeCount int64
	VWAP       float64
}

// DailyClose is a daily closing price keyed by calendar date (UTC midnight).
type DailyClose struct {
	Date  time.Time
	Close float64
}

// Closes extracts the close prices of bars in their given order.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// DailyCloses converts daily bars into date-keyed closes.
func DailyCloses(bars []Bar) []DailyClose {
	out := make([]DailyClose, len(bars))
	for i, b := range bars {
		out[i] = DailyClose{Date: Normalize(b.Timestamp), Close: b.Close}
	}
	return out
}

// Normalize strips the time of day, returning midnight UTC of t's calendar date.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
