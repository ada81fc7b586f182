package algo

import (
	"fmt"
	"math"

	"quantbench/internal/domain"
)

// Compile-time interface check.
var _ Algorithm = (*Grid)(nil)

// GridSizing selects how grid trades are sized.
type GridSizing string

const (
	// SizingFixedFraction buys BuyCashFraction of cash and sells
	// SellPositionFraction of held shares.
	SizingFixedFraction GridSizing = "fixed_fraction"
	// SizingCashProportional sizes both legs as TradeCashFraction of cash;
	// sells are capped at the shares held.
	SizingCashProportional GridSizing = "cash_proportional"
)

// GridConfig parameterises the grid-trading simulation. Fractions are in
// [0, 1]; fee and slippage are in basis points.
type GridConfig struct {
	Sizing               GridSizing `yaml:"sizing"`
	InitialFraction      float64    `yaml:"initial_fraction"`
	BuyTrigger           float64    `yaml:"buy_trigger"`
	SellTrigger          float64    `yaml:"sell_trigger"`
	BuyCashFraction      float64    `yaml:"buy_cash_fraction"`
	SellPositionFraction float64    `yaml:"sell_position_fraction"`
	TradeCashFraction    float64    `yaml:"trade_cash_fraction"`
	FeeRateBps           float64    `yaml:"fee_rate_bps"`
	SlippageBps          float64    `yaml:"slippage_bps"`
}

// DefaultGridConfig invests 75% up front, buys 10% of cash on a 5% dip and
// sells 10% of shares on an 8% rise.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		Sizing:               SizingFixedFraction,
		InitialFraction:      0.75,
		BuyTrigger:           0.05,
		SellTrigger:          0.08,
		BuyCashFraction:      0.10,
		SellPositionFraction: 0.10,
		TradeCashFraction:    0.10,
	}
}

// Validate checks parameter ranges and the sizing variant.
func (c GridConfig) Validate() error {
	switch c.Sizing {
	case SizingFixedFraction, SizingCashProportional:
	default:
		return fmt.Errorf("grid.sizing %q is not one of %q, %q: %w",
			c.Sizing, SizingFixedFraction, SizingCashProportional, domain.ErrConfiguration)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"grid.initial_fraction", c.InitialFraction},
		{"grid.buy_trigger", c.BuyTrigger},
		{"grid.buy_cash_fraction", c.BuyCashFraction},
		{"grid.sell_position_fraction", c.SellPositionFraction},
		{"grid.trade_cash_fraction", c.TradeCashFraction},
	} {
		if err := checkFraction(f.name, f.v); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"grid.sell_trigger", c.SellTrigger},
		{"grid.fee_rate_bps", c.FeeRateBps},
		{"grid.slippage_bps", c.SlippageBps},
	} {
		if err := checkNonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// Grid buys dips and sells rises relative to a reference price that moves to
// the last executed trade.
type Grid struct {
	balance float64
	cfg     GridConfig
	fee     float64
	slip    float64
}

// NewGrid creates a Grid simulation starting with balance.
func NewGrid(balance float64, cfg GridConfig) *Grid {
	return &Grid{
		balance: balance,
		cfg:     cfg,
		fee:     bps(cfg.FeeRateBps),
		slip:    bps(cfg.SlippageBps),
	}
}

// GridFactory returns a Factory producing Grid simulations.
func GridFactory(cfg GridConfig) Factory {
	return func(balance float64) Algorithm { return NewGrid(balance, cfg) }
}

// Name returns "grid".
func (g *Grid) Name() string { return NameGrid }

// Run requires at least two prices. The buy rule is evaluated before the sell
// rule and at most one of them fires per price.
func (g *Grid) Run(prices []float64) (float64, error) {
	if len(prices) < 2 {
		return 0, tooShort(g.Name(), 2, len(prices))
	}

	cash, shares := g.balance, 0.0
	ref := prices[0]
	cash, shares, _ = g.buy(cash, shares, ref, cash*g.cfg.InitialFraction)

	for _, px := range prices[1:] {
		var ok bool
		switch {
		case px <= ref*(1-g.cfg.BuyTrigger) && cash > 0:
			cash, shares, ok = g.buy(cash, shares, px, cash*g.buyFraction())
		case shares > 0 && px >= ref*(1+g.cfg.SellTrigger):
			cash, shares, ok = g.sell(cash, shares, px)
		}
		if ok {
			ref = px
		}
	}

	return cash + shares*prices[len(prices)-1], nil
}

func (g *Grid) buyFraction() float64 {
	if g.cfg.Sizing == SizingCashProportional {
		return g.cfg.TradeCashFraction
	}
	return g.cfg.BuyCashFraction
}

// buy spends up to spend at the slipped price. The trade is dropped when cost
// plus fee would exceed cash.
func (g *Grid) buy(cash, shares, px, spend float64) (float64, float64, bool) {
	buyPx := px * (1 + g.slip)
	qty := spend / buyPx
	cost := qty * buyPx
	fee := cost * g.fee
	if qty <= 0 || cost+fee > cash {
		return cash, shares, false
	}
	return cash - cost - fee, shares + qty, true
}

func (g *Grid) sell(cash, shares, px float64) (float64, float64, bool) {
	sellPx := px * (1 - g.slip)
	var qty float64
	if g.cfg.Sizing == SizingCashProportional {
		qty = math.Min(cash*g.cfg.TradeCashFraction/sellPx, shares)
	} else {
		qty = shares * g.cfg.SellPositionFraction
	}
	if qty <= 0 {
		return cash, shares, false
	}
	proceeds := qty * sellPx
	return cash + proceeds - proceeds*g.fee, shares - qty, true
}
