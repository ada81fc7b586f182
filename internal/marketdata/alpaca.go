package marketdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	alpacamd "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"quantbench/internal/domain"
	"quantbench/internal/util"
)

// Compile-time interface check.
var _ BarFetcher = (*AlpacaSource)(nil)

// barsClient is the part of the Alpaca market-data client AlpacaSource uses.
type barsClient interface {
	GetBars(symbol string, req alpacamd.GetBarsRequest) ([]alpacamd.Bar, error)
}

// AlpacaOptions configures an AlpacaSource.
type AlpacaOptions struct {
	APIKey          string
	APISecret       string
	DataURL         string
	Feed            string // "sip" or "iex"
	RateLimitPerMin int
	MaxRetries      int
	RetryBackoff    time.Duration
}

// AlpacaSource fetches split- and dividend-adjusted bars from the Alpaca
// market-data API. Every request is rate limited and retried with backoff.
type AlpacaSource struct {
	client   barsClient
	feed     alpacamd.Feed
	limiter  *util.RateLimiter
	attempts int
	backoff  time.Duration
	log      *slog.Logger
}

// NewAlpacaSource creates an AlpacaSource from the given credentials.
func NewAlpacaSource(opts AlpacaOptions, logger *slog.Logger) *AlpacaSource {
	clientOpts := alpacamd.ClientOpts{
		APIKey:    opts.APIKey,
		APISecret: opts.APISecret,
	}
	if opts.DataURL != "" {
		clientOpts.BaseURL = opts.DataURL
	}
	return newAlpacaSource(alpacamd.NewClient(clientOpts), opts, logger)
}

func newAlpacaSource(client barsClient, opts AlpacaOptions, logger *slog.Logger) *AlpacaSource {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RateLimitPerMin <= 0 {
		opts.RateLimitPerMin = 200
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	return &AlpacaSource{
		client:   client,
		feed:     alpacamd.Feed(opts.Feed),
		limiter:  util.NewRateLimiter(opts.RateLimitPerMin, 1),
		attempts: opts.MaxRetries,
		backoff:  opts.RetryBackoff,
		log:      logger.With("source", "alpaca"),
	}
}

// FetchBars returns adjusted bars for symbol in [start, end), oldest first.
func (a *AlpacaSource) FetchBars(ctx context.Context, symbol string, tf domain.Timeframe, start, end time.Time) ([]domain.Bar, error) {
	frame, err := alpacaTimeFrame(tf)
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	req := alpacamd.GetBarsRequest{
		TimeFrame:  frame,
		Adjustment: alpacamd.All,
		Start:      start,
		End:        end,
		Feed:       a.feed,
	}

	var raw []alpacamd.Bar
	err = util.Retry(ctx, a.attempts, a.backoff, func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return util.Permanent(err)
		}
		var err error
		raw, err = a.client.GetBars(symbol, req)
		if err != nil {
			a.log.Warn("GetBars failed", "symbol", symbol, "timeframe", tf, "error", err)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("GetBars %s %s: %w", symbol, tf, err)
	}

	bars := make([]domain.Bar, 0, len(raw))
	for _, ab := range raw {
		if !ab.Timestamp.Before(end) {
			continue
		}
		bars = append(bars, domain.Bar{
			Symbol:     symbol,
			Timestamp:  ab.Timestamp.UTC(),
			Open:       ab.Open,
			High:       ab.High,
			Low:        ab.Low,
			Close:      ab.Close,
			Volume:     int64(ab.Volume),
			TradeCount: int64(ab.TradeCount),
			VWAP:       ab.VWAP,
		})
	}
	a.log.Debug("fetched bars", "symbol", symbol, "timeframe", tf, "bars", len(bars))
	return bars, nil
}

func alpacaTimeFrame(tf domain.Timeframe) (alpacamd.TimeFrame, error) {
	switch tf {
	case domain.TimeframeHour:
		return alpacamd.OneHour, nil
	case domain.TimeframeDay:
		return alpacamd.OneDay, nil
	default:
		return alpacamd.TimeFrame{}, fmt.Errorf("unsupported timeframe %q: %w", tf, domain.ErrInvalidInput)
	}
}
