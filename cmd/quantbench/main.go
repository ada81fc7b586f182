// Command quantbench backtests single-asset strategies and earnings straddles.
//
// Usage:
//
//	quantbench [-config path] <command> [options]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"quantbench/internal/config"
	"quantbench/internal/domain"
	"quantbench/internal/marketdata"
	"quantbench/internal/store"
	"quantbench/internal/util"
)

const version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: quantbench [-config path] <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  compare    Compare strategies against buy-and-hold\n")
	fmt.Fprintf(os.Stderr, "  straddle   Backtest a long straddle across earnings\n")
	fmt.Fprintf(os.Stderr, "  runs       List stored results\n")
	fmt.Fprintf(os.Stderr, "  version    Print the version\n")
	fmt.Fprintf(os.Stderr, "\n")
}

func main() {
	cfgPath := flag.String("config", os.Getenv("QUANTBENCH_CONFIG"), "path to YAML config")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	if args[0] == "version" {
		fmt.Printf("quantbench %s\n", version)
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch args[0] {
	case "compare":
		err = runCompare(ctx, cfg, logger, args[1:])
	case "straddle":
		err = runStraddle(ctx, cfg, logger, args[1:])
	case "runs":
		err = runList(ctx, cfg, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		usage()
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, domain.ErrContractViolation) {
			panic(err)
		}
		logger.Error(args[0]+" failed", "error", err)
		os.Exit(1)
	}
}

// newBarFetcher returns the Alpaca source, fronted by the parquet cache when
// enabled.
func newBarFetcher(cfg *config.Config, logger *slog.Logger) (marketdata.BarFetcher, error) {
	if !cfg.HasAlpacaCredentials() {
		return nil, fmt.Errorf("alpaca credentials missing (set APCA_API_KEY_ID and APCA_API_SECRET_KEY): %w",
			domain.ErrConfiguration)
	}
	alpaca := marketdata.NewAlpacaSource(marketdata.AlpacaOptions{
		APIKey:          cfg.Alpaca.APIKey,
		APISecret:       cfg.Alpaca.APISecret,
		DataURL:         cfg.Alpaca.DataURL,
		Feed:            cfg.Alpaca.Feed,
		RateLimitPerMin: cfg.Alpaca.RateLimitPerMin,
		MaxRetries:      cfg.Alpaca.MaxRetries,
		RetryBackoff:    cfg.Alpaca.RetryBackoff,
	}, logger)
	if !cfg.Storage.CacheBars {
		return alpaca, nil
	}
	return marketdata.NewCachedSource(alpaca, store.NewParquetStore(cfg.Storage.DataDir), logger), nil
}

func newSeriesSource(cfg *config.Config, logger *slog.Logger) (*marketdata.SeriesSource, error) {
	fetcher, err := newBarFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	return marketdata.NewSeriesSource(fetcher)
}

func openResults(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.Storage.SQLitePath)
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
