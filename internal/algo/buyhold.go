package algo

import (
	"fmt"
	"math"

	"quantbench/internal/domain"
)

// Compile-time interface check.
var _ Algorithm = (*BuyHold)(nil)

// BuyHoldConfig parameterises the buy-and-hold baseline.
type BuyHoldConfig struct {
	// AllowFractional buys fractional shares; otherwise the quantity is floored.
	AllowFractional bool `yaml:"allow_fractional"`
	// FeeRateBps is charged on the notional of both the entry and the exit.
	FeeRateBps float64 `yaml:"fee_rate_bps"`
	// TaxRate applies to positive net profit only.
	TaxRate float64 `yaml:"tax_rate"`
}

// DefaultBuyHoldConfig returns fractional shares with no fees or taxes.
func DefaultBuyHoldConfig() BuyHoldConfig {
	return BuyHoldConfig{AllowFractional: true}
}

// Validate checks parameter ranges.
func (c BuyHoldConfig) Validate() error {
	if err := checkNonNegative("buy_hold.fee_rate_bps", c.FeeRateBps); err != nil {
		return err
	}
	return checkFraction("buy_hold.tax_rate", c.TaxRate)
}

// BuyHold buys at the first price and sells everything at the last.
type BuyHold struct {
	balance float64
	cfg     BuyHoldConfig
}

// NewBuyHold creates a BuyHold simulation starting with balance.
func NewBuyHold(balance float64, cfg BuyHoldConfig) *BuyHold {
	return &BuyHold{balance: balance, cfg: cfg}
}

// BuyHoldFactory returns a Factory producing BuyHold simulations.
func BuyHoldFactory(cfg BuyHoldConfig) Factory {
	return func(balance float64) Algorithm { return NewBuyHold(balance, cfg) }
}

// Name returns "buy_hold".
func (b *BuyHold) Name() string { return NameBuyHold }

// Run returns the balance after one round trip from the first to the last
// price, net of fees and of tax on any gain.
func (b *BuyHold) Run(prices []float64) (float64, error) {
	if len(prices) < 1 {
		return 0, tooShort(b.Name(), 1, len(prices))
	}
	entry := prices[0]
	if entry <= 0 {
		return 0, fmt.Errorf("buy_hold entry price %v: %w", entry, domain.ErrInvalidInput)
	}
	fee := bps(b.cfg.FeeRateBps)

	qty := b.balance / (entry * (1 + fee))
	if !b.cfg.AllowFractional {
		qty = math.Floor(qty)
	}
	cost := qty * entry
	cash := b.balance - cost - cost*fee

	proceeds := qty * prices[len(prices)-1]
	final := cash + proceeds - proceeds*fee

	if profit := final - b.balance; profit > 0 {
		final -= profit * b.cfg.TaxRate
	}
	return final, nil
}
