package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"quantbench/internal/algo"
	"quantbench/internal/domain"
	"quantbench/internal/marketdata"
)

// DefaultConcurrency bounds the number of tickers simulated at once.
const DefaultConcurrency = 4

// Runner splits a balance evenly across tickers, runs a fresh Algorithm per
// ticker and returns one final equity per ticker.
type Runner struct {
	source      marketdata.PriceSource
	factory     algo.Factory
	series      marketdata.SeriesOptions
	concurrency int
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets how many tickers run in parallel. Values below 1 are
// ignored.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithSeriesOptions sets the lookback and session filter passed to the
// price source.
func WithSeriesOptions(o marketdata.SeriesOptions) Option {
	return func(r *Runner) { r.series = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a Runner. A nil factory or source is a configuration
// error.
func NewRunner(source marketdata.PriceSource, factory algo.Factory, opts ...Option) (*Runner, error) {
	if factory == nil {
		return nil, fmt.Errorf("runner needs an algorithm factory: %w", domain.ErrConfiguration)
	}
	if source == nil {
		return nil, fmt.Errorf("runner needs a price source: %w", domain.ErrConfiguration)
	}
	r := &Runner{
		source:      source,
		factory:     factory,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	r.logger = r.logger.With("component", "runner")
	return r, nil
}

// Tickers returns the deduplicated, lexicographically sorted ticker list the
// Runner would simulate. Empty entries are rejected.
func Tickers(tickers []string) ([]string, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("empty ticker list: %w", domain.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t == "" {
			return nil, fmt.Errorf("empty ticker in list: %w", domain.ErrInvalidInput)
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// GetProfits returns the final equity for each ticker in Tickers(tickers)
// order. Any ticker failure fails the whole call. An output whose length
// differs from the ticker count is reported as domain.ErrContractViolation.
func (r *Runner) GetProfits(ctx context.Context, tickers []string, balance float64) ([]float64, error) {
	list, err := Tickers(tickers)
	if err != nil {
		return nil, err
	}
	share := balance / float64(len(list))

	results := make([]float64, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, ticker := range list {
		g.Go(func() error {
			prices, err := r.source.PriceSeries(gctx, ticker, r.series)
			if err != nil {
				return fmt.Errorf("price series for %s: %w", ticker, err)
			}
			a := r.factory(share)
			v, err := a.Run(prices)
			if err != nil {
				return fmt.Errorf("%s on %s: %w", a.Name(), ticker, err)
			}
			r.logger.Debug("ticker simulated",
				"ticker", ticker,
				"algorithm", a.Name(),
				"prices", len(prices),
				"start", share,
				"final", v,
			)
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return validateOutput(list, results)
}

func validateOutput(tickers []string, values []float64) ([]float64, error) {
	if len(values) != len(tickers) {
		return nil, fmt.Errorf("got %d results for %d tickers: %w",
			len(values), len(tickers), domain.ErrContractViolation)
	}
	return values, nil
}
