// Package builtins wires the algorithms that ship with quantbench into a
// strategy Registry.
package builtins

import (
	"quantbench/internal/algo"
	"quantbench/internal/strategy"
)

// Params carries the configuration of every built-in algorithm.
type Params struct {
	BuyHold      algo.BuyHoldConfig      `yaml:"buy_hold"`
	TrailingStop algo.TrailingStopConfig `yaml:"trailing_stop"`
	Grid         algo.GridConfig         `yaml:"grid"`
}

// DefaultParams returns each algorithm's defaults.
func DefaultParams() Params {
	return Params{
		BuyHold:      algo.DefaultBuyHoldConfig(),
		TrailingStop: algo.DefaultTrailingStopConfig(),
		Grid:         algo.DefaultGridConfig(),
	}
}

// Validate checks every algorithm configuration.
func (p Params) Validate() error {
	if err := p.BuyHold.Validate(); err != nil {
		return err
	}
	if err := p.TrailingStop.Validate(); err != nil {
		return err
	}
	return p.Grid.Validate()
}

// NewRegistry returns a Registry with buy_hold, trailing_stop and grid.
func NewRegistry(p Params) *strategy.Registry {
	r := strategy.NewRegistry()
	r.Register(algo.NameBuyHold, algo.BuyHoldFactory(p.BuyHold))
	r.Register(algo.NameTrailingStop, algo.TrailingStopFactory(p.TrailingStop))
	r.Register(algo.NameGrid, algo.GridFactory(p.Grid))
	return r
}
