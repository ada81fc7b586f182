package algo

import "math"

// Compile-time interface check.
var _ Algorithm = (*TrailingStop)(nil)

// Fixed band multipliers of the trailing stop.
const (
	trailLowBand    = 0.9
	trailHighBand   = 1.3
	trailLowRatchet = 0.95
	trailHighCarry  = 0.3
)

// TrailingStopConfig parameterises the trailing-stop-loss simulation.
type TrailingStopConfig struct {
	// BuyPercent is the rise above the running minimum that triggers a buy.
	BuyPercent float64 `yaml:"buy_percent"`
	// SellTax is deducted from the proceeds of every threshold-triggered sale.
	SellTax float64 `yaml:"sell_tax"`
}

// DefaultTrailingStopConfig returns a 20% rebound entry and an 8% sell tax.
func DefaultTrailingStopConfig() TrailingStopConfig {
	return TrailingStopConfig{BuyPercent: 0.2, SellTax: 0.08}
}

// Validate checks parameter ranges.
func (c TrailingStopConfig) Validate() error {
	if err := checkNonNegative("trailing_stop.buy_percent", c.BuyPercent); err != nil {
		return err
	}
	return checkFraction("trailing_stop.sell_tax", c.SellTax)
}

// TrailingStop buys whole shares once price rebounds off its running minimum
// and exits when price leaves a band that trails upward on rallies.
type TrailingStop struct {
	balance float64
	cfg     TrailingStopConfig
}

// NewTrailingStop creates a TrailingStop simulation starting with balance.
func NewTrailingStop(balance float64, cfg TrailingStopConfig) *TrailingStop {
	return &TrailingStop{balance: balance, cfg: cfg}
}

// TrailingStopFactory returns a Factory producing TrailingStop simulations.
func TrailingStopFactory(cfg TrailingStopConfig) Factory {
	return func(balance float64) Algorithm { return NewTrailingStop(balance, cfg) }
}

// Name returns "trailing_stop".
func (s *TrailingStop) Name() string { return NameTrailingStop }

// Run walks the series once. An empty series returns the starting balance.
// A position still open at the end is closed at the final price without the
// sell tax.
func (s *TrailingStop) Run(prices []float64) (float64, error) {
	balance := s.balance
	var shares, low, high float64
	minPrice := math.Inf(1)
	lastPrice := math.Inf(1)
	bought := false

	for _, price := range prices {
		if !bought {
			minPrice = math.Min(minPrice, price)
			if price >= minPrice*(1+s.cfg.BuyPercent) {
				shares = math.Floor(balance / price)
				balance -= price * shares
				low, high = price*trailLowBand, price*trailHighBand
				bought = true
				minPrice = math.Inf(1)
			}
			continue
		}

		if price <= low || price >= high {
			balance += price * shares * (1 - s.cfg.SellTax)
			shares = 0
			low, high = 0, 0
			bought = false
			lastPrice = math.Inf(1)
			continue
		}

		// Hold: ratchet only on an up-tick.
		if price > lastPrice {
			low *= trailLowRatchet
			high = price + high*trailHighCarry
		}
		lastPrice = price
	}

	if bought && len(prices) > 0 {
		balance += prices[len(prices)-1] * shares
	}
	return balance, nil
}
