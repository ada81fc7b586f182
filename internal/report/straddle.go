package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"quantbench/internal/straddle"
)

// DefaultTradeRows is how many of the most recent trades RenderStraddle lists.
const DefaultTradeRows = 10

// RenderStraddle lists the last n trades followed by summary statistics.
func RenderStraddle(ticker string, results []straddle.TradeResult, sum straddle.Summary, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Earnings straddle backtest: %s (%d trades)\n", ticker, len(results))
	if len(results) == 0 {
		b.WriteString("no tradable events\n")
		return b.String()
	}

	b.WriteString(renderTrades(tail(results, n)))
	b.WriteString("\n")
	b.WriteString(renderSummary(sum))
	b.WriteString("\n")
	return b.String()
}

func tail(results []straddle.TradeResult, n int) []straddle.TradeResult {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[len(results)-n:]
}

func renderTrades(results []straddle.TradeResult) string {
	const date = "2006-01-02"
	rows := make([][]string, 0, len(results))
	pnl := make([]float64, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.EventDate.Format(date),
			r.EntryDate.Format(date),
			r.ExitDate.Format(date),
			FormatFloat(r.SpotEntry, 2),
			FormatFloat(r.SpotExit, 2),
			FormatFloat(r.Strike, 0),
			FormatFloat(r.SigmaEntry, 4),
			FormatFloat(r.SigmaExit, 4),
			FormatFloat(r.CostEntry, 2),
			FormatFloat(r.ValueExit, 2),
			FormatFloat(r.PnL, 2),
			FormatRatio(r.PnLPct),
			FormatRatio(r.AbsMovePct),
		})
		pnl = append(pnl, r.PnL)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("event", "entry", "exit", "S0", "S1", "K", "σ entry", "σ exit", "cost", "value", "pnl", "pnl %", "|move|").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col < 3:
				return cellStyle.Align(lipgloss.Left)
			case col >= 10 && col <= 11 && pnl[row] > 0:
				return gainStyle
			case col >= 10 && col <= 11 && pnl[row] < 0:
				return lossStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}

func renderSummary(sum straddle.Summary) string {
	row := func(name string, get func(straddle.Stats) float64) []string {
		return []string{name, FormatFloat(get(sum.PnL), 2), FormatFloat(get(sum.PnLPct), 4)}
	}
	rows := [][]string{
		{"count", FormatInt(sum.PnL.Count), FormatInt(sum.PnLPct.Count)},
		row("mean", func(s straddle.Stats) float64 { return s.Mean }),
		row("std", func(s straddle.Stats) float64 { return s.Std }),
		row("min", func(s straddle.Stats) float64 { return s.Min }),
		row("25%", func(s straddle.Stats) float64 { return s.Q25 }),
		row("50%", func(s straddle.Stats) float64 { return s.Median }),
		row("75%", func(s straddle.Stats) float64 { return s.Q75 }),
		row("max", func(s straddle.Stats) float64 { return s.Max }),
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("", "pnl", "pnl_pct").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return tickerStyle
			}
			return cellStyle
		})

	win := "n/a"
	if sum.Trades > 0 {
		win = FormatFloat(sum.WinRate*100, 1) + "%"
	}
	return t.String() + "\nwin rate: " + win + "\n"
}
