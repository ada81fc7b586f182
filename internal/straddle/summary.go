package straddle

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats is a descriptive summary of one column of results. NaN inputs are
// excluded; with no finite inputs every field except Count is NaN.
type Stats struct {
	Count  int
	Mean   float64
	Std    float64 // sample standard deviation; NaN for fewer than 2 values
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Summary aggregates a straddle backtest.
type Summary struct {
	Trades  int
	PnL     Stats
	PnLPct  Stats
	WinRate float64 // share of trades with positive PnL; NaN when empty
}

// Summarize computes descriptive statistics for PnL and PnL% over results.
func Summarize(results []TradeResult) Summary {
	pnl := make([]float64, 0, len(results))
	pct := make([]float64, 0, len(results))
	wins := 0
	for _, r := range results {
		pnl = append(pnl, r.PnL)
		pct = append(pct, r.PnLPct)
		if r.PnL > 0 {
			wins++
		}
	}

	s := Summary{
		Trades:  len(results),
		PnL:     describe(pnl),
		PnLPct:  describe(pct),
		WinRate: math.NaN(),
	}
	if len(results) > 0 {
		s.WinRate = float64(wins) / float64(len(results))
	}
	return s
}

func describe(values []float64) Stats {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, v)
		}
	}
	nan := math.NaN()
	st := Stats{Count: len(xs), Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan}
	if len(xs) == 0 {
		return st
	}

	sort.Float64s(xs)
	st.Mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		st.Std = stat.StdDev(xs, nil)
	}
	st.Min, st.Max = xs[0], xs[len(xs)-1]
	st.Q25 = quantile(0.25, xs)
	st.Median = quantile(0.5, xs)
	st.Q75 = quantile(0.75, xs)
	return st
}

// quantile interpolates linearly between the closest ranks of sorted xs,
// matching the common "linear" definition (rank = p*(n-1)).
func quantile(p float64, xs []float64) float64 {
	if len(xs) == 1 {
		return xs[0]
	}
	rank := p * float64(len(xs)-1)
	lo := math.Floor(rank)
	frac := rank - lo
	i := int(lo)
	if i+1 >= len(xs) {
		return xs[len(xs)-1]
	}
	return xs[i] + frac*(xs[i+1]-xs[i])
}
