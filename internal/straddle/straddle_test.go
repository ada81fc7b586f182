package straddle

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantbench/internal/domain"
	"quantbench/internal/marketdata"
	"quantbench/internal/pricing"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// weekdays returns a deterministic daily history for every Monday-Friday in
// [from, to]. Overrides pin specific closes.
func weekdays(from, to string, overrides map[string]float64) []domain.DailyClose {
	var out []domain.DailyClose
	i := 0
	for d := date(from); !d.After(date(to)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		px := 100 + 5*math.Sin(float64(i)/3) + 0.05*float64(i)
		if v, ok := overrides[d.Format(time.DateOnly)]; ok {
			px = v
		}
		out = append(out, domain.DailyClose{Date: d, Close: px})
		i++
	}
	return out
}

// testHistory has a gap in October so that an early-November event has only
// two closes in its volatility window.
func testHistory() []domain.DailyClose {
	h := weekdays("2023-09-01", "2023-09-29", nil)
	return append(h, weekdays("2023-11-01", "2024-03-29", map[string]float64{
		"2024-01-24": 102.5,
		"2024-01-26": 109.0,
	})...)
}

func closeOn(h []domain.DailyClose, d string) float64 {
	for _, c := range h {
		if c.Date.Equal(date(d)) {
			return c.Close
		}
	}
	panic("no close on " + d)
}

func TestEvaluateNextClose(t *testing.T) {
	history := testHistory()
	cfg := DefaultConfig()

	got := Evaluate("aapl", []time.Time{date("2024-01-25")}, history, cfg)
	require.Len(t, got, 1)
	r := got[0]

	assert.Equal(t, "AAPL", r.Ticker)
	assert.Equal(t, date("2024-01-24"), r.EntryDate)
	assert.Equal(t, date("2024-01-26"), r.ExitDate)
	assert.Equal(t, 102.0, r.Strike, "strike rounds half to even")

	// Expiry Friday 2024-01-26 equals the exit day so it stays there.
	assert.InDelta(t, 2.0/365, r.YearsEntry, 1e-12)
	assert.Equal(t, 0.0, r.YearsExit)

	// Window: last trading day before 2024-01-04 through entry.
	var window []float64
	for _, c := range history {
		if !c.Date.Before(date("2024-01-03")) && !c.Date.After(date("2024-01-24")) {
			window = append(window, c.Close)
		}
	}
	wantSigma := sampleStd(LogReturns(window)) * math.Sqrt(252)
	assert.InDelta(t, wantSigma, r.SigmaEntry, 1e-12)
	assert.InDelta(t, 0.55*wantSigma, r.SigmaExit, 1e-12)

	wantCost := pricing.Straddle(102.5, 102, 2.0/365, 0.03, wantSigma)
	assert.InDelta(t, wantCost, r.CostEntry, 1e-9)
	assert.InDelta(t, 7.0, r.ValueExit, 1e-12, "intrinsic at expiry")
	assert.InDelta(t, 7.0-wantCost, r.PnL, 1e-9)
	assert.InDelta(t, (7.0-wantCost)/wantCost, r.PnLPct, 1e-9)
	assert.InDelta(t, 109.0/102.5-1, r.AbsMovePct, 1e-12)
}

func TestEvaluateEarningsClose(t *testing.T) {
	history := testHistory()
	cfg := DefaultConfig()
	cfg.ExitWhen = ExitEarningsClose

	got := Evaluate("AAPL", []time.Time{date("2024-02-10"), date("2024-01-25")}, history, cfg)
	require.Len(t, got, 1, "weekend event is skipped")

	r := got[0]
	assert.Equal(t, date("2024-01-25"), r.ExitDate)
	assert.Equal(t, closeOn(history, "2024-01-25"), r.SpotExit)
	assert.InDelta(t, 1.0/365, r.YearsExit, 1e-12)
}

func TestEvaluateSkipsShortVolatilityWindow(t *testing.T) {
	events := []time.Time{date("2024-02-15"), date("2023-11-02"), date("2024-01-25")}
	got := Evaluate("AAPL", events, testHistory(), DefaultConfig())

	require.Len(t, got, 2)
	assert.Equal(t, date("2024-01-25"), got[0].EventDate)
	assert.Equal(t, date("2024-02-15"), got[1].EventDate)
}

func TestEvaluateSkipsEventOutsideHistory(t *testing.T) {
	got := Evaluate("AAPL", []time.Time{date("2023-09-01"), date("2024-03-29")}, testHistory(), DefaultConfig())
	assert.Empty(t, got)
}

func TestEvaluateExpiryReanchors(t *testing.T) {
	// Friday event: expiry would be the event day, which is before the
	// Monday exit, so it moves to the following Friday.
	got := Evaluate("AAPL", []time.Time{date("2024-02-09")}, testHistory(), DefaultConfig())
	require.Len(t, got, 1)
	assert.Equal(t, date("2024-02-12"), got[0].ExitDate)
	assert.InDelta(t, 4.0/365, got[0].YearsExit, 1e-12)
	assert.InDelta(t, 8.0/365, got[0].YearsEntry, 1e-12)
}

func TestEvaluateKeepsMostRecentEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 1

	got := Evaluate("AAPL", []time.Time{date("2024-02-15"), date("2024-01-25")}, testHistory(), cfg)
	require.Len(t, got, 1)
	assert.Equal(t, date("2024-02-15"), got[0].EventDate)

	cfg.MaxEvents = 2
	assert.Len(t, Evaluate("AAPL", []time.Time{date("2024-02-15"), date("2024-01-25")}, testHistory(), cfg), 2)
}

func TestEvaluateEmptyHistory(t *testing.T) {
	assert.Empty(t, Evaluate("AAPL", []time.Time{date("2024-01-25")}, nil, DefaultConfig()))
}

func sampleStd(xs []float64) float64 {
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func TestAnnualizedHV(t *testing.T) {
	assert.True(t, math.IsNaN(AnnualizedHV([]float64{100, 101})), "one return")
	assert.True(t, math.IsNaN(AnnualizedHV(nil)))

	closes := []float64{100, 102, 99, 101, 104}
	assert.InDelta(t, sampleStd(LogReturns(closes))*math.Sqrt(252), AnnualizedHV(closes), 1e-12)
	assert.Equal(t, 0.0, AnnualizedHV([]float64{5, 5, 5}))
}

type fakeEarnings struct {
	dates []time.Time
	err   error
}

func (f *fakeEarnings) EarningsDates(_ context.Context, _ string, _ int) ([]time.Time, error) {
	return f.dates, f.err
}

type fakeHistory struct {
	bars       []domain.DailyClose
	start, end time.Time
	calls      int
}

func (f *fakeHistory) DailyHistory(_ context.Context, _ string, start, end time.Time) ([]domain.DailyClose, error) {
	f.calls++
	f.start, f.end = start, end
	return f.bars, nil
}

var (
	_ marketdata.EarningsSource = (*fakeEarnings)(nil)
	_ marketdata.HistorySource  = (*fakeHistory)(nil)
)

func TestEngineBacktest(t *testing.T) {
	earn := &fakeEarnings{dates: []time.Time{
		date("2024-02-15"), date("2023-11-02"), date("2024-01-25"),
	}}
	hist := &fakeHistory{bars: testHistory()}
	cfg := DefaultConfig()
	cfg.MaxEvents = 2

	got, err := NewEngine(earn, hist, cfg, nil).Backtest(context.Background(), " aapl ")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, date("2024-01-25").AddDate(0, 0, -120), hist.start)
	assert.Equal(t, date("2024-02-15").AddDate(0, 0, 10), hist.end)
	assert.Equal(t, "AAPL", got[0].Ticker)
}

func TestEngineBacktestNoData(t *testing.T) {
	ctx := context.Background()

	_, err := NewEngine(&fakeEarnings{}, &fakeHistory{}, DefaultConfig(), nil).Backtest(ctx, "AAPL")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	hist := &fakeHistory{}
	_, err = NewEngine(&fakeEarnings{dates: []time.Time{date("2024-01-25")}}, hist, DefaultConfig(), nil).Backtest(ctx, "AAPL")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Equal(t, 1, hist.calls)

	boom := errors.New("boom")
	_, err = NewEngine(&fakeEarnings{err: boom}, &fakeHistory{}, DefaultConfig(), nil).Backtest(ctx, "AAPL")
	assert.ErrorIs(t, err, boom)

	_, err = NewEngine(&fakeEarnings{}, &fakeHistory{}, DefaultConfig(), nil).Backtest(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"exit rule", func(c *Config) { c.ExitWhen = "open" }},
		{"lookback", func(c *Config) { c.HVLookbackDays = 0 }},
		{"events", func(c *Config) { c.MaxEvents = 0 }},
		{"crush", func(c *Config) { c.CrushRatio = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrConfiguration)
		})
	}
}

func TestSummarize(t *testing.T) {
	results := []TradeResult{
		{PnL: 1, PnLPct: 0.1},
		{PnL: -1, PnLPct: -0.2},
		{PnL: 3, PnLPct: math.NaN()},
		{PnL: 5, PnLPct: 0.4},
	}
	s := Summarize(results)

	assert.Equal(t, 4, s.Trades)
	assert.InDelta(t, 0.75, s.WinRate, 1e-12)

	assert.Equal(t, 4, s.PnL.Count)
	assert.InDelta(t, 2.0, s.PnL.Mean, 1e-12)
	assert.InDelta(t, -1.0, s.PnL.Min, 1e-12)
	assert.InDelta(t, 0.5, s.PnL.Q25, 1e-12)
	assert.InDelta(t, 2.0, s.PnL.Median, 1e-12)
	assert.InDelta(t, 3.5, s.PnL.Q75, 1e-12)
	assert.InDelta(t, 5.0, s.PnL.Max, 1e-12)
	assert.InDelta(t, sampleStd([]float64{1, -1, 3, 5}), s.PnL.Std, 1e-12)

	assert.Equal(t, 3, s.PnLPct.Count, "NaN excluded")
	assert.InDelta(t, 0.1, s.PnLPct.Median, 1e-12)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Trades)
	assert.True(t, math.IsNaN(s.WinRate))
	assert.True(t, math.IsNaN(s.PnL.Mean))
}
