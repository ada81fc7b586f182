package report

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantbench/internal/domain"
	"quantbench/internal/straddle"
	"quantbench/internal/strategy"
)

func outcomes() []strategy.Outcome {
	tickers := []string{"AAPL", "MSFT"}
	return []strategy.Outcome{
		{Strategy: "buy_hold", Tickers: tickers, Values: []float64{11000, 9000}},
		{Strategy: "trailing_stop", Tickers: tickers, Values: []float64{10500, 9900}},
		{Strategy: "grid", Tickers: tickers, Values: []float64{11000, 8100}},
	}
}

func TestCompare(t *testing.T) {
	c, err := Compare(outcomes(), "buy_hold")
	require.NoError(t, err)

	assert.Equal(t, []string{"trailing_stop", "grid"}, c.Strategies)
	require.Len(t, c.Rows, 2)

	aapl := c.Rows[0]
	assert.Equal(t, "AAPL", aapl.Ticker)
	assert.Equal(t, 11000.0, aapl.Baseline)
	assert.InDelta(t, -500, aapl.Cells[0].Delta, 1e-9)
	assert.InDelta(t, -4.545454, aapl.Cells[0].DeltaPct, 1e-5)
	assert.Equal(t, 0.0, aapl.Cells[1].Delta)

	assert.Equal(t, "TOTAL", c.Total.Ticker)
	assert.Equal(t, 20000.0, c.Total.Baseline)
	assert.InDelta(t, 20400, c.Total.Cells[0].Value, 1e-9)
	assert.InDelta(t, 2.0, c.Total.Cells[0].DeltaPct, 1e-9)
	assert.InDelta(t, -900, c.Total.Cells[1].Delta, 1e-9)
}

func TestCompareMissingBaseline(t *testing.T) {
	_, err := Compare(outcomes()[1:], "buy_hold")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCompareMismatchedTickers(t *testing.T) {
	o := outcomes()
	o[2].Tickers = []string{"AAPL", "NVDA"}
	_, err := Compare(o, "buy_hold")
	assert.True(t, errors.Is(err, domain.ErrContractViolation))
}

func TestComparisonRender(t *testing.T) {
	c, err := Compare(outcomes(), "buy_hold")
	require.NoError(t, err)

	out := c.Render()
	for _, want := range []string{"Buy&Hold", "TSL", "Grid", "AAPL", "MSFT", "TOTAL", "$20,400.00", "-$500.00", "+2.00%"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "AAPL"), strings.Index(out, "TOTAL"))
}

func TestRenderStraddle(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	var results []straddle.TradeResult
	for i := 1; i <= 12; i++ {
		pnl := float64(i) - 6
		results = append(results, straddle.TradeResult{
			Ticker: "NVDA", EventDate: day(i + 1), EntryDate: day(i), ExitDate: day(i + 2),
			SpotEntry: 100, SpotExit: 100 + pnl, Strike: 100,
			SigmaEntry: 0.4, SigmaExit: 0.22, CostEntry: 10, ValueExit: 10 + pnl,
			PnL: pnl, PnLPct: pnl / 10, AbsMovePct: math.Abs(pnl) / 100,
		})
	}
	sum := straddle.Summarize(results)

	out := RenderStraddle("NVDA", results, sum, DefaultTradeRows)
	assert.Contains(t, out, "12 trades")
	assert.NotContains(t, out, "2024-01-02 ", "oldest trades beyond the last 10 are omitted")
	assert.Contains(t, out, "2024-01-13")
	assert.Contains(t, out, "count")
	assert.Contains(t, out, "win rate: 50.0%")
}

func TestRenderStraddleEmpty(t *testing.T) {
	out := RenderStraddle("XYZ", nil, straddle.Summarize(nil), DefaultTradeRows)
	assert.Contains(t, out, "no tradable events")
}
