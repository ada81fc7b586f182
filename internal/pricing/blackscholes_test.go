package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutCallParity(t *testing.T) {
	cases := []struct {
		name                        string
		spot, strike, years, r, vol float64
	}{
		{"atm", 100, 100, 0.25, 0.03, 0.2},
		{"otm call", 90, 100, 7.0 / 365, 0.05, 0.75},
		{"itm call", 110, 100, 1, 0, 0.4},
		{"deep itm", 250, 100, 0.5, 0.03, 1.2},
		{"short dated", 100, 101, 1.0 / 365, 0.03, 0.55},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			call := Call(tc.spot, tc.strike, tc.years, tc.r, tc.vol)
			put := Put(tc.spot, tc.strike, tc.years, tc.r, tc.vol)
			want := tc.spot - tc.strike*math.Exp(-tc.r*tc.years)
			assert.InDelta(t, want, call-put, 1e-6)
		})
	}
}

func TestKnownValue(t *testing.T) {
	// Hull, Options Futures and Other Derivatives, example 15.6.
	call := Call(42, 40, 0.5, 0.1, 0.2)
	put := Put(42, 40, 0.5, 0.1, 0.2)
	assert.InDelta(t, 4.76, call, 0.005)
	assert.InDelta(t, 0.81, put, 0.005)
}

func TestIntrinsicAtExpiry(t *testing.T) {
	if got := Call(105, 100, 0, 0.03, 0.3); got != 5 {
		t.Errorf("Call at expiry = %v, want 5", got)
	}
	if got := Put(105, 100, 0, 0.03, 0.3); got != 0 {
		t.Errorf("Put at expiry = %v, want 0", got)
	}
	if got := Put(95, 100, -0.1, 0.03, 0.3); got != 5 {
		t.Errorf("Put past expiry = %v, want 5", got)
	}
	// Volatility plays no part once expired.
	if got := Straddle(95, 100, 0, 0.03, -1); got != 5 {
		t.Errorf("Straddle at expiry with bad sigma = %v, want 5", got)
	}
}

func TestInvalidInputsYieldNaN(t *testing.T) {
	if !math.IsNaN(D1(0, 100, 1, 0.03, 0.2)) {
		t.Error("D1 with zero spot should be NaN")
	}
	if !math.IsNaN(D2(100, 100, 1, 0.03, 0)) {
		t.Error("D2 with zero sigma should be NaN")
	}
	if !math.IsNaN(Call(100, -5, 1, 0.03, 0.2)) {
		t.Error("Call with negative strike should be NaN")
	}
	if !math.IsNaN(Straddle(100, 100, 1, 0.03, 0)) {
		t.Error("Straddle with zero sigma should be NaN")
	}
}

func TestStraddleIsCallPlusPut(t *testing.T) {
	s := Straddle(100, 100, 30.0/365, 0.03, 0.35)
	assert.InDelta(t, Call(100, 100, 30.0/365, 0.03, 0.35)+Put(100, 100, 30.0/365, 0.03, 0.35), s, 1e-12)
	if s <= 0 {
		t.Errorf("Straddle = %v, want > 0", s)
	}
}
