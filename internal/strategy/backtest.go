package strategy

import (
	"context"
	"fmt"
	"log/slog"

	"quantbench/internal/marketdata"
)

// Outcome holds one strategy's final equity per ticker.
type Outcome struct {
	Strategy string
	Tickers  []string
	Values   []float64
}

// Total returns the sum of the per-ticker values.
func (o Outcome) Total() float64 {
	var sum float64
	for _, v := range o.Values {
		sum += v
	}
	return sum
}

// Backtester runs several registered strategies over the same tickers and
// balance so their results can be compared.
type Backtester struct {
	source   marketdata.PriceSource
	registry *Registry
	opts     []Option
	logger   *slog.Logger
}

// NewBacktester creates a Backtester that resolves strategies from registry
// and reads prices from source. opts are applied to every Runner it builds.
func NewBacktester(source marketdata.PriceSource, registry *Registry, logger *slog.Logger, opts ...Option) *Backtester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backtester{
		source:   source,
		registry: registry,
		opts:     append([]Option{WithLogger(logger)}, opts...),
		logger:   logger.With("component", "backtester"),
	}
}

// Run executes each named strategy in order and returns one Outcome per
// name. The first failing strategy aborts the run.
func (bt *Backtester) Run(ctx context.Context, names, tickers []string, balance float64) ([]Outcome, error) {
	list, err := Tickers(tickers)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(names))
	for _, name := range names {
		factory, err := bt.registry.Resolve(name)
		if err != nil {
			return nil, err
		}
		runner, err := NewRunner(bt.source, factory, bt.opts...)
		if err != nil {
			return nil, err
		}
		values, err := runner.GetProfits(ctx, list, balance)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", name, err)
		}
		o := Outcome{Strategy: name, Tickers: list, Values: values}
		bt.logger.Info("strategy complete", "strategy", name, "tickers", len(list), "total", o.Total())
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}
