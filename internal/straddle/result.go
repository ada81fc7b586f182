package straddle

import "time"

// TradeResult is the outcome of one straddle held across one earnings event.
type TradeResult struct {
	Ticker     string
	EventDate  time.Time
	EntryDate  time.Time
	ExitDate   time.Time
	SpotEntry  float64 // S0, close on the entry day
	SpotExit   float64 // S1, close on the exit day
	Strike     float64
	YearsEntry float64 // time to expiry at entry, in years
	YearsExit  float64
	SigmaEntry float64
	SigmaExit  float64
	CostEntry  float64
	ValueExit  float64
	PnL        float64
	PnLPct     float64 // PnL / CostEntry; NaN when the cost is not positive
	AbsMovePct float64 // |S1/S0 - 1|
}
