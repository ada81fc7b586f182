// Package pricing values European options with the Black-Scholes model.
//
// All functions are pure. Invalid inputs do not fail: d1/d2 come back NaN and
// the prices built from them are NaN, which callers must treat as "no price".
package pricing

import (
	"math"

	"github.com/chobie/go-gaussian"
)

var norm = gaussian.NewGaussian(0, 1)

// D1 returns the Black-Scholes d1 term, or NaN when any of spot, strike,
// years or sigma is not positive.
func D1(spot, strike, years, rate, sigma float64) float64 {
	if spot <= 0 || strike <= 0 || years <= 0 || sigma <= 0 {
		return math.NaN()
	}
	return (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*years) / (sigma * math.Sqrt(years))
}

// D2 returns d1 - sigma*sqrt(years), propagating NaN.
func D2(spot, strike, years, rate, sigma float64) float64 {
	d1 := D1(spot, strike, years, rate, sigma)
	if math.IsNaN(d1) {
		return math.NaN()
	}
	return d1 - sigma*math.Sqrt(years)
}

// Call prices a European call. At or past expiry it is worth its intrinsic
// value max(S-K, 0).
func Call(spot, strike, years, rate, sigma float64) float64 {
	if years <= 0 {
		return math.Max(spot-strike, 0)
	}
	d1, d2 := D1(spot, strike, years, rate, sigma), D2(spot, strike, years, rate, sigma)
	if math.IsNaN(d1) {
		return math.NaN()
	}
	return spot*norm.Cdf(d1) - strike*math.Exp(-rate*years)*norm.Cdf(d2)
}

// Put prices a European put. At or past expiry it is worth its intrinsic
// value max(K-S, 0).
func Put(spot, strike, years, rate, sigma float64) float64 {
	if years <= 0 {
		return math.Max(strike-spot, 0)
	}
	d1, d2 := D1(spot, strike, years, rate, sigma), D2(spot, strike, years, rate, sigma)
	if math.IsNaN(d1) {
		return math.NaN()
	}
	return strike*math.Exp(-rate*years)*norm.Cdf(-d2) - spot*norm.Cdf(-d1)
}

// Straddle prices a long call plus a long put at the same strike and expiry.
func Straddle(spot, strike, years, rate, sigma float64) float64 {
	return Call(spot, strike, years, rate, sigma) + Put(spot, strike, years, rate, sigma)
}
