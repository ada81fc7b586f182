package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"quantbench/internal/config"
	"quantbench/internal/domain"
	"quantbench/internal/report"
	"quantbench/internal/store"
)

// runList prints the most recent stored comparison runs, straddle
// summaries and the symbols held in the bar cache.
func runList(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	limit := fs.Int("limit", 20, "maximum rows per section")
	ticker := fs.String("ticker", "", "only straddle summaries for this ticker")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := openResults(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(ctx, *limit)
	if err != nil {
		return err
	}
	fmt.Printf("Comparison runs (%d)\n", len(runs))
	for _, r := range runs {
		fmt.Printf("  %s  %-14s %2d tickers  balance %s  total %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.Strategy, len(r.Tickers),
			report.FormatMoney(r.Balance), report.FormatMoney(r.Total()))
	}

	sums, err := db.ListStraddleSummaries(ctx, strings.ToUpper(*ticker), *limit)
	if err != nil {
		return err
	}
	fmt.Printf("\nStraddle backtests (%d)\n", len(sums))
	for _, s := range sums {
		fmt.Printf("  %s  %-6s %-14s crush %.2f  trades %3d  mean pnl %s  mean pnl%% %s  win %s\n",
			s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Ticker, s.ExitWhen, s.CrushRatio, s.Trades,
			report.FormatFloat(s.MeanPnL, 2), report.FormatRatio(s.MeanPnLPct), report.FormatFloat(s.WinRate*100, 1)+"%")
	}

	bars := store.NewParquetStore(cfg.Storage.DataDir)
	fmt.Printf("\nCached bars (%s)\n", cfg.Storage.DataDir)
	for _, tf := range []domain.Timeframe{domain.TimeframeHour, domain.TimeframeDay} {
		symbols, err := bars.ListSymbols(ctx, tf)
		if err != nil {
			return err
		}
		fmt.Printf("  %s  %3d  %s\n", tf, len(symbols), strings.Join(symbols, " "))
	}
	return nil
}
