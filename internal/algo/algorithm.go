// Package algo implements the single-ticker trading simulations. Each
// algorithm consumes an oldest-first price series and returns the final
// account value; none of them perform I/O.
package algo

import (
	"fmt"

	"quantbench/internal/domain"
)

// Algorithm simulates one strategy over a price series starting from the
// balance it was constructed with.
type Algorithm interface {
	// Name returns the strategy identifier (e.g. "grid").
	Name() string

	// Run consumes prices in order and returns the final equity.
	Run(prices []float64) (float64, error)
}

// Registered algorithm names.
const (
	NameBuyHold      = "buy_hold"
	NameTrailingStop = "trailing_stop"
	NameGrid         = "grid"
)

// Factory builds a fresh Algorithm holding the given starting balance.
type Factory func(balance float64) Algorithm

const bpsDivisor = 10_000.0

func bps(v float64) float64 { return v / bpsDivisor }

func checkFraction(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be within [0, 1], got %v: %w", name, v, domain.ErrConfiguration)
	}
	return nil
}

func checkNonNegative(name string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%s must be >= 0, got %v: %w", name, v, domain.ErrConfiguration)
	}
	return nil
}

func tooShort(name string, need, got int) error {
	return fmt.Errorf("%s needs at least %d prices, got %d: %w", name, need, got, domain.ErrInvalidInput)
}
