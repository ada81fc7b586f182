// Package straddle backtests a long at-the-money straddle held across
// earnings announcements. Option values come from Black–Scholes with
// historical volatility at entry and a crushed volatility at exit.
package straddle

import (
	"fmt"

	"quantbench/internal/domain"
)

// ExitRule selects the exit day relative to the earnings date.
type ExitRule string

const (
	// ExitNextClose exits at the first trading day strictly after the event.
	ExitNextClose ExitRule = "next_close"
	// ExitEarningsClose exits at the close of the event day itself.
	ExitEarningsClose ExitRule = "earnings_close"
)

// Config holds the engine parameters.
type Config struct {
	RiskFreeRate   float64  `yaml:"risk_free_rate"`
	HVLookbackDays int      `yaml:"hv_lookback_days"`
	CrushRatio     float64  `yaml:"crush_ratio"`
	MaxEvents      int      `yaml:"max_events"`
	ExitWhen       ExitRule `yaml:"exit_when"`
}

// DefaultConfig returns r=3%, a 21-day HV window, a 0.55 IV crush and the 24
// most recent events, exiting at the next close.
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:   0.03,
		HVLookbackDays: 21,
		CrushRatio:     0.55,
		MaxEvents:      24,
		ExitWhen:       ExitNextClose,
	}
}

// Validate checks parameter ranges and the exit rule.
func (c Config) Validate() error {
	switch c.ExitWhen {
	case ExitNextClose, ExitEarningsClose:
	default:
		return fmt.Errorf("straddle.exit_when %q is not one of %q, %q: %w",
			c.ExitWhen, ExitNextClose, ExitEarningsClose, domain.ErrConfiguration)
	}
	if c.HVLookbackDays < 1 {
		return fmt.Errorf("straddle.hv_lookback_days must be >= 1, got %d: %w", c.HVLookbackDays, domain.ErrConfiguration)
	}
	if c.MaxEvents < 1 {
		return fmt.Errorf("straddle.max_events must be >= 1, got %d: %w", c.MaxEvents, domain.ErrConfiguration)
	}
	if c.CrushRatio < 0 {
		return fmt.Errorf("straddle.crush_ratio must be >= 0, got %v: %w", c.CrushRatio, domain.ErrConfiguration)
	}
	return nil
}
