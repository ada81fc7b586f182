package straddle

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"quantbench/internal/domain"
	"quantbench/internal/marketdata"
	"quantbench/internal/pricing"
	"quantbench/internal/util"
)

// History padding around the earnings window.
const (
	historyLeadDays  = 120
	historyTrailDays = 10
	minExitSigma     = 1e-6
	daysPerYear      = 365.0
)

// Engine runs the straddle backtest for one ticker at a time.
type Engine struct {
	earnings marketdata.EarningsSource
	history  marketdata.HistorySource
	cfg      Config
	logger   *slog.Logger
}

// NewEngine creates an Engine. The config must already be valid.
func NewEngine(earnings marketdata.EarningsSource, history marketdata.HistorySource, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		earnings: earnings,
		history:  history,
		cfg:      cfg,
		logger:   logger.With("component", "straddle"),
	}
}

// Config returns the engine parameters.
func (e *Engine) Config() Config { return e.cfg }

// Backtest fetches the most recent earnings events and the surrounding daily
// history for ticker and evaluates one straddle per event. A ticker with no
// events or no history returns domain.ErrDataUnavailable.
func (e *Engine) Backtest(ctx context.Context, ticker string) ([]TradeResult, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("empty ticker: %w", domain.ErrInvalidInput)
	}

	events, err := e.earnings.EarningsDates(ctx, ticker, e.cfg.MaxEvents)
	if err != nil {
		return nil, fmt.Errorf("earnings dates for %s: %w", ticker, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no earnings dates for %s: %w", ticker, domain.ErrDataUnavailable)
	}
	events = mostRecent(sortedDays(events), e.cfg.MaxEvents)

	start := events[0].AddDate(0, 0, -historyLeadDays)
	end := events[len(events)-1].AddDate(0, 0, historyTrailDays)
	history, err := e.history.DailyHistory(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily history for %s: %w", ticker, err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no price history for %s: %w", ticker, domain.ErrDataUnavailable)
	}

	e.logger.Debug("evaluating events",
		"ticker", ticker,
		"events", len(events),
		"bars", len(history),
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
	)
	results := evaluate(ticker, events, history, e.cfg, e.logger)
	e.logger.Info("straddle backtest complete", "ticker", ticker, "events", len(events), "trades", len(results))
	return results, nil
}

// Evaluate prices one straddle per event against the given daily history.
// Only the cfg.MaxEvents most recent events are considered. Events that
// cannot be evaluated are skipped. Results are ordered by event date.
func Evaluate(ticker string, events []time.Time, history []domain.DailyClose, cfg Config) []TradeResult {
	return evaluate(strings.ToUpper(ticker), sortedDays(events), history, cfg, slog.New(slog.DiscardHandler))
}

func evaluate(ticker string, events []time.Time, history []domain.DailyClose, cfg Config, logger *slog.Logger) []TradeResult {
	events = mostRecent(events, cfg.MaxEvents)
	closes := make(map[time.Time]float64, len(history))
	days := make([]time.Time, 0, len(history))
	for _, h := range history {
		d := domain.Normalize(h.Date)
		closes[d] = h.Close
		days = append(days, d)
	}
	cal := util.NewTradingCalendar(days)
	if cal.Len() == 0 {
		logger.Debug("no trading days", "ticker", ticker)
		return nil
	}

	results := make([]TradeResult, 0, len(events))
	for _, event := range events {
		r, reason := evaluateEvent(ticker, event, cal, closes, cfg)
		if reason != "" {
			logger.Debug("event skipped", "ticker", ticker, "event", event.Format(time.DateOnly), "reason", reason)
			continue
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].EventDate.Before(results[j].EventDate) })
	return results
}

// evaluateEvent returns the trade for one event, or a non-empty skip reason.
func evaluateEvent(ticker string, event time.Time, cal *util.TradingCalendar, closes map[time.Time]float64, cfg Config) (TradeResult, string) {
	entry, ok := cal.Prev(event)
	if !ok {
		return TradeResult{}, "no trading day before event"
	}

	var exit time.Time
	switch cfg.ExitWhen {
	case ExitEarningsClose:
		if !cal.Contains(event) {
			return TradeResult{}, "event day is not a trading day"
		}
		exit = event
	default:
		if exit, ok = cal.Next(event); !ok {
			return TradeResult{}, "no trading day after event"
		}
	}

	s0, s1 := closes[entry], closes[exit]
	strike := math.RoundToEven(s0)

	expiry := util.NearestFridayOnOrAfter(event)
	if !expiry.After(exit) {
		expiry = util.NearestFridayOnOrAfter(exit)
	}
	yearsEntry := float64(max(util.DaysBetween(entry, expiry), 0)) / daysPerYear
	yearsExit := float64(max(util.DaysBetween(exit, expiry), 0)) / daysPerYear

	lookbackStart, ok := cal.Prev(entry.AddDate(0, 0, -(cfg.HVLookbackDays - 1)))
	if !ok {
		return TradeResult{}, "not enough history for volatility window"
	}
	window := cal.Between(lookbackStart, entry)
	prices := make([]float64, len(window))
	for i, d := range window {
		prices[i] = closes[d]
	}
	sigmaEntry := AnnualizedHV(prices)
	if !finite(sigmaEntry) || sigmaEntry <= 0 {
		return TradeResult{}, "historical volatility unavailable"
	}
	sigmaExit := math.Max(minExitSigma, cfg.CrushRatio*sigmaEntry)

	cost := pricing.Straddle(s0, strike, yearsEntry, cfg.RiskFreeRate, sigmaEntry)
	value := pricing.Straddle(s1, strike, yearsExit, cfg.RiskFreeRate, sigmaExit)
	if !finite(cost) || !finite(value) {
		return TradeResult{}, "non-finite straddle value"
	}

	pnl := value - cost
	pnlPct := math.NaN()
	if cost > 0 {
		pnlPct = pnl / cost
	}

	return TradeResult{
		Ticker:     ticker,
		EventDate:  event,
		EntryDate:  entry,
		ExitDate:   exit,
		SpotEntry:  s0,
		SpotExit:   s1,
		Strike:     strike,
		YearsEntry: yearsEntry,
		YearsExit:  yearsExit,
		SigmaEntry: sigmaEntry,
		SigmaExit:  sigmaExit,
		CostEntry:  cost,
		ValueExit:  value,
		PnL:        pnl,
		PnLPct:     pnlPct,
		AbsMovePct: math.Abs(s1/s0 - 1),
	}, ""
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// sortedDays returns a normalised, ascending copy of events.
// mostRecent keeps the last n of the sorted events. n <= 0 keeps all.
func mostRecent(events []time.Time, n int) []time.Time {
	if n > 0 && len(events) > n {
		return events[len(events)-n:]
	}
	return events
}

func sortedDays(events []time.Time) []time.Time {
	out := make([]time.Time, len(events))
	for i, e := range events {
		out[i] = domain.Normalize(e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
