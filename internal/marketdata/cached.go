package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quantbench/internal/domain"
	"quantbench/internal/store"
)

// Compile-time interface check.
var _ BarFetcher = (*CachedSource)(nil)

// Cache is the storage a CachedSource reads from and fills.
type Cache interface {
	store.BarStore
	store.CoverageStore
}

// CachedSource serves bars from a local cache and only asks upstream for the
// part of a request that has not been fetched before. Ranges are recorded as
// covered only up to the start of the current UTC day, so today's bars are
// always refreshed.
type CachedSource struct {
	upstream BarFetcher
	cache    Cache
	now      func() time.Time
	log      *slog.Logger
}

// NewCachedSource creates a CachedSource in front of upstream.
func NewCachedSource(upstream BarFetcher, cache Cache, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{
		upstream: upstream,
		cache:    cache,
		now:      time.Now,
		log:      logger.With("source", "cache"),
	}
}

// FetchBars returns bars for symbol in [start, end).
func (c *CachedSource) FetchBars(ctx context.Context, symbol string, tf domain.Timeframe, start, end time.Time) ([]domain.Bar, error) {
	from := start
	until, err := c.cache.CoveredUntil(ctx, symbol, tf, start)
	if err != nil {
		return nil, fmt.Errorf("cache coverage for %s: %w", symbol, err)
	}
	if !until.IsZero() {
		if !until.Before(end) {
			c.log.Debug("cache hit", "symbol", symbol, "timeframe", tf)
			return c.cache.ReadBars(ctx, symbol, tf, start, end)
		}
		from = until
	}

	c.log.Debug("cache miss", "symbol", symbol, "timeframe", tf,
		"from", from.Format(time.RFC3339), "to", end.Format(time.RFC3339))
	fresh, err := c.upstream.FetchBars(ctx, symbol, tf, from, end)
	if err != nil {
		return nil, err
	}
	if err := c.cache.WriteBars(ctx, tf, fresh); err != nil {
		return nil, fmt.Errorf("caching bars for %s: %w", symbol, err)
	}

	cutoff := domain.Normalize(c.now().UTC())
	if settled := minTime(end, cutoff); settled.After(from) {
		if err := c.cache.MarkCovered(ctx, symbol, tf, from, settled); err != nil {
			return nil, fmt.Errorf("recording coverage for %s: %w", symbol, err)
		}
	}

	if from.Equal(start) {
		return fresh, nil
	}
	return c.cache.ReadBars(ctx, symbol, tf, start, end)
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
