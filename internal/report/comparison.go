package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"quantbench/internal/domain"
	"quantbench/internal/strategy"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	tickerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	gainStyle   = cellStyle.Foreground(lipgloss.Color("10"))
	lossStyle   = cellStyle.Foreground(lipgloss.Color("9"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Cell is one strategy's value for a ticker together with its difference from
// the baseline.
type Cell struct {
	Value    float64
	Delta    float64 // Value - baseline
	DeltaPct float64 // percent change from baseline
}

// Row is one ticker (or the total) across all strategies.
type Row struct {
	Ticker   string
	Baseline float64
	Cells    []Cell // one per Comparison.Strategies entry
}

// Comparison lines up every strategy against a baseline strategy.
type Comparison struct {
	Baseline   string
	Strategies []string
	Rows       []Row
	Total      Row
}

// Compare builds a Comparison from outcomes. The baseline outcome must be
// present and every outcome must cover the same tickers in the same order.
func Compare(outcomes []strategy.Outcome, baseline string) (*Comparison, error) {
	idx := slices.IndexFunc(outcomes, func(o strategy.Outcome) bool { return o.Strategy == baseline })
	if idx < 0 {
		return nil, fmt.Errorf("baseline %q not among outcomes: %w", baseline, domain.ErrInvalidInput)
	}
	base := outcomes[idx]

	c := &Comparison{Baseline: baseline}
	var others []strategy.Outcome
	for _, o := range outcomes {
		if o.Strategy == baseline {
			continue
		}
		if !slices.Equal(o.Tickers, base.Tickers) || len(o.Values) != len(base.Values) {
			return nil, fmt.Errorf("outcome %s covers different tickers than %s: %w",
				o.Strategy, baseline, domain.ErrContractViolation)
		}
		c.Strategies = append(c.Strategies, o.Strategy)
		others = append(others, o)
	}

	totals := make([]float64, len(others))
	var baseTotal float64
	for i, ticker := range base.Tickers {
		row := Row{Ticker: ticker, Baseline: base.Values[i]}
		for j, o := range others {
			row.Cells = append(row.Cells, cell(base.Values[i], o.Values[i]))
			totals[j] += o.Values[i]
		}
		baseTotal += base.Values[i]
		c.Rows = append(c.Rows, row)
	}

	c.Total = Row{Ticker: "TOTAL", Baseline: baseTotal}
	for _, v := range totals {
		c.Total.Cells = append(c.Total.Cells, cell(baseTotal, v))
	}
	return c, nil
}

func cell(base, v float64) Cell {
	return Cell{Value: v, Delta: v - base, DeltaPct: PercentChange(base, v)}
}

// Render draws the comparison as a table with a TOTAL row. Deltas are
// coloured when the output supports it.
func (c *Comparison) Render() string {
	headers := []string{"Ticker", label(c.Baseline)}
	for _, s := range c.Strategies {
		headers = append(headers, label(s), "Δ vs "+label(c.Baseline), "Δ%")
	}

	rows := make([][]string, 0, len(c.Rows)+1)
	signs := make([][]float64, 0, len(c.Rows)+1)
	for _, r := range append(slices.Clone(c.Rows), c.Total) {
		line := []string{r.Ticker, FormatMoney(r.Baseline)}
		sign := []float64{0, 0}
		for _, cl := range r.Cells {
			line = append(line, FormatMoney(cl.Value), FormatMoney(cl.Delta), FormatPercent(cl.DeltaPct))
			sign = append(sign, 0, cl.Delta, cl.Delta)
		}
		rows = append(rows, line)
		signs = append(signs, sign)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return tickerStyle
			case signs[row][col] > 0:
				return gainStyle
			case signs[row][col] < 0:
				return lossStyle
			default:
				return cellStyle
			}
		})

	var b strings.Builder
	b.WriteString("Strategy comparison vs " + label(c.Baseline) + "\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

// label maps a strategy name to its column label.
func label(name string) string {
	switch name {
	case "buy_hold":
		return "Buy&Hold"
	case "trailing_stop":
		return "TSL"
	case "grid":
		return "Grid"
	default:
		return name
	}
}
