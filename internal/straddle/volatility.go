package straddle

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear annualises daily volatility.
const TradingDaysPerYear = 252

// LogReturns returns ln(p[i]/p[i-1]) for consecutive closes.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out = append(out, math.Log(closes[i]/closes[i-1]))
	}
	return out
}

// AnnualizedHV returns the sample standard deviation of the daily log
// returns of closes scaled by sqrt(252). Fewer than two returns yield NaN.
func AnnualizedHV(closes []float64) float64 {
	rets := LogReturns(closes)
	if len(rets) < 2 {
		return math.NaN()
	}
	return stat.StdDev(rets, nil) * math.Sqrt(TradingDaysPerYear)
}
