package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"quantbench/internal/algo"
	"quantbench/internal/config"
	"quantbench/internal/marketdata"
	"quantbench/internal/report"
	"quantbench/internal/store"
	"quantbench/internal/strategy"
	"quantbench/internal/strategy/builtins"
)

func runCompare(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	tickers := fs.String("tickers", strings.Join(cfg.Backtest.Tickers, ","), "comma-separated tickers")
	balance := fs.Float64("balance", cfg.Backtest.Balance, "total starting balance, split evenly across tickers")
	names := fs.String("strategies", strings.Join(cfg.Backtest.Strategies, ","), "comma-separated strategies")
	lookback := fs.Int("lookback", cfg.Backtest.LookbackDays, "days of hourly history")
	rth := fs.Bool("rth", cfg.Backtest.RTHOnly, "regular trading hours only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list := splitList(strings.ToUpper(*tickers))
	strategies := splitList(*names)
	if !slices.Contains(strategies, algo.NameBuyHold) {
		strategies = append([]string{algo.NameBuyHold}, strategies...)
	}

	source, err := newSeriesSource(cfg, logger)
	if err != nil {
		return err
	}

	bt := strategy.NewBacktester(source, builtins.NewRegistry(cfg.Algorithms), logger,
		strategy.WithConcurrency(cfg.Backtest.Concurrency),
		strategy.WithSeriesOptions(marketdata.SeriesOptions{LookbackDays: *lookback, RTHOnly: *rth}),
	)

	started := time.Now().UTC()
	outcomes, err := bt.Run(ctx, strategies, list, *balance)
	if err != nil {
		return err
	}

	cmp, err := report.Compare(outcomes, algo.NameBuyHold)
	if err != nil {
		return err
	}
	fmt.Print(cmp.Render())

	results, err := openResults(cfg)
	if err != nil {
		return err
	}
	defer results.Close()

	for _, o := range outcomes {
		run := &store.RunSummary{
			Strategy:  o.Strategy,
			StartedAt: started,
			Balance:   *balance,
			Tickers:   o.Tickers,
			Values:    o.Values,
		}
		if err := results.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("saving %s run: %w", o.Strategy, err)
		}
		logger.Debug("run saved", "id", run.ID, "strategy", o.Strategy)
	}
	return nil
}
