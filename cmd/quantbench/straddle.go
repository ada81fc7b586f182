package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quantbench/internal/config"
	"quantbench/internal/domain"
	"quantbench/internal/marketdata"
	"quantbench/internal/report"
	"quantbench/internal/store"
	"quantbench/internal/straddle"
)

func runStraddle(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	sc := cfg.Straddle
	fs := flag.NewFlagSet("straddle", flag.ExitOnError)
	ticker := fs.String("ticker", "", "ticker symbol (default: every ticker in the earnings file)")
	events := fs.Int("events", sc.MaxEvents, "number of most recent earnings events")
	crush := fs.Float64("crush", sc.CrushRatio, "exit volatility as a fraction of entry volatility")
	hv := fs.Int("hv", sc.HVLookbackDays, "historical volatility lookback in trading days")
	rate := fs.Float64("r", sc.RiskFreeRate, "annual risk-free rate")
	exit := fs.String("exit", string(sc.ExitWhen), "exit rule: next_close or earnings_close")
	earningsFile := fs.String("earnings", cfg.Earnings.File, "YAML file of earnings dates")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sc.MaxEvents = *events
	sc.CrushRatio = *crush
	sc.HVLookbackDays = *hv
	sc.RiskFreeRate = *rate
	sc.ExitWhen = straddle.ExitRule(*exit)
	if err := sc.Validate(); err != nil {
		return err
	}

	calendar, err := marketdata.LoadEarningsCalendar(*earningsFile)
	if err != nil {
		return err
	}
	history, err := newSeriesSource(cfg, logger)
	if err != nil {
		return err
	}

	tickers := calendar.Tickers()
	if name := strings.ToUpper(strings.TrimSpace(*ticker)); name != "" {
		tickers = []string{name}
	}
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers in %s: %w", *earningsFile, domain.ErrInvalidInput)
	}

	db, err := openResults(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := straddle.NewEngine(calendar, history, sc, logger)
	for _, name := range tickers {
		err := backtestStraddle(ctx, engine, db, name)
		if errors.Is(err, domain.ErrDataUnavailable) && len(tickers) > 1 {
			logger.Warn("straddle skipped", "ticker", name, "error", err)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// backtestStraddle runs one ticker, prints its trades and stores the summary.
func backtestStraddle(ctx context.Context, engine *straddle.Engine, db *store.SQLiteStore, ticker string) error {
	results, err := engine.Backtest(ctx, ticker)
	if err != nil {
		return err
	}
	sum := straddle.Summarize(results)
	fmt.Print(report.RenderStraddle(ticker, results, sum, report.DefaultTradeRows))

	sc := engine.Config()
	rec := &store.StraddleSummary{
		Ticker:     ticker,
		CreatedAt:  time.Now().UTC(),
		ExitWhen:   string(sc.ExitWhen),
		CrushRatio: sc.CrushRatio,
		Trades:     sum.Trades,
		MeanPnL:    sum.PnL.Mean,
		MeanPnLPct: sum.PnLPct.Mean,
		WinRate:    sum.WinRate,
	}
	if err := db.SaveStraddleSummary(ctx, rec); err != nil {
		return fmt.Errorf("saving straddle summary for %s: %w", ticker, err)
	}
	return nil
}
