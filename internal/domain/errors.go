package domain

import "errors"

// Error kinds shared across the toolkit. Callers wrap these with context and
// test them with errors.Is.
var (
	// ErrInvalidInput is returned when a price series is empty or shorter than
	// an algorithm requires.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration is returned for missing factories and out-of-range
	// parameters.
	ErrConfiguration = errors.New("configuration error")

	// ErrContractViolation signals an internal inconsistency, such as a
	// runner producing a different number of results than tickers. It is not
	// a user error and should abort the process.
	ErrContractViolation = errors.New("contract violation")

	// ErrDataUnavailable is returned when a ticker has no earnings dates or no
	// price history. It fails that ticker's whole straddle backtest.
	ErrDataUnavailable = errors.New("data unavailable")
)
