package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"quantbench/internal/domain"
)

// Compile-time interface checks.
var (
	_ BarStore      = (*ParquetStore)(nil)
	_ CoverageStore = (*ParquetStore)(nil)
)

// ParquetStore implements BarStore and CoverageStore using Parquet files on
// disk.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// BarRecord is the Parquet schema for bar data.
type BarRecord struct {
	Symbol     string  `parquet:"symbol"`
	Timestamp  int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open       float64 `parquet:"open"`
	High       float64 `parquet:"high"`
	Low        float64 `parquet:"low"`
	Close      float64 `parquet:"close"`
	Volume     int64   `parquet:"volume"`
	TradeCount int64   `parquet:"trade_count"`
	VWAP       float64 `parquet:"vwap"`
}

// CoverageRecord is one fetched range, [StartMs, EndMs).
type CoverageRecord struct {
	StartMs int64 `parquet:"start_ms"`
	EndMs   int64 `parquet:"end_ms"`
}

// ---------------------------------------------------------------------------
// BarStore implementation
// ---------------------------------------------------------------------------

// WriteBars writes bars to Parquet files organized by timeframe, symbol and
// year, merging with what is already on disk:
//
//	<DataDir>/<timeframe>/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) WriteBars(_ context.Context, tf domain.Timeframe, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		symbol string
		year   int
	}
	groups := make(map[key][]BarRecord)
	for _, b := range bars {
		ts := b.Timestamp.UTC()
		k := key{symbol: strings.ToUpper(b.Symbol), year: ts.Year()}
		groups[k] = append(groups[k], BarRecord{
			Symbol:     k.symbol,
			Timestamp:  ts.UnixMilli(),
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			Volume:     b.Volume,
			TradeCount: b.TradeCount,
			VWAP:       b.VWAP,
		})
	}

	for k, records := range groups {
		path := s.barPath(k.symbol, tf, k.year)

		existing, err := readParquetFile[BarRecord](path)
		if err != nil {
			return fmt.Errorf("reading bars for %s/%d: %w", k.symbol, k.year, err)
		}
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing bars for %s/%d: %w", k.symbol, k.year, err)
		}
	}
	return nil
}

// ReadBars reads bars for the given symbol with timestamps in [start, end).
// Missing year files are treated as empty.
func (s *ParquetStore) ReadBars(_ context.Context, symbol string, tf domain.Timeframe, start, end time.Time) ([]domain.Bar, error) {
	startMs, endMs := start.UnixMilli(), end.UnixMilli()

	var bars []domain.Bar
	for year := start.UTC().Year(); year <= end.UTC().Year(); year++ {
		records, err := readParquetFile[BarRecord](s.barPath(symbol, tf, year))
		if err != nil {
			return nil, fmt.Errorf("reading bars for %s/%d: %w", symbol, year, err)
		}

		for _, r := range records {
			if r.Timestamp < startMs || r.Timestamp >= endMs {
				continue
			}
			bars = append(bars, domain.Bar{
				Symbol:     r.Symbol,
				Timestamp:  time.UnixMilli(r.Timestamp).UTC(),
				Open:       r.Open,
				High:       r.High,
				Low:        r.Low,
				Close:      r.Close,
				Volume:     r.Volume,
				TradeCount: r.TradeCount,
				VWAP:       r.VWAP,
			})
		}
	}
	return bars, nil
}

// ListSymbols lists all symbols that have bar data at tf.
func (s *ParquetStore) ListSymbols(_ context.Context, tf domain.Timeframe) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, string(tf)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ---------------------------------------------------------------------------
// CoverageStore implementation
// ---------------------------------------------------------------------------

// CoveredUntil returns the end of the recorded range containing start, or
// the zero time when start is not covered.
func (s *ParquetStore) CoveredUntil(_ context.Context, symbol string, tf domain.Timeframe, start time.Time) (time.Time, error) {
	ranges, err := readParquetFile[CoverageRecord](s.coveragePath(symbol, tf))
	if err != nil {
		return time.Time{}, err
	}
	at := start.UnixMilli()
	for _, r := range ranges {
		if r.StartMs <= at && at < r.EndMs {
			return time.UnixMilli(r.EndMs).UTC(), nil
		}
	}
	return time.Time{}, nil
}

// MarkCovered records [start, end) and coalesces overlapping ranges.
func (s *ParquetStore) MarkCovered(_ context.Context, symbol string, tf domain.Timeframe, start, end time.Time) error {
	if !end.After(start) {
		return nil
	}
	path := s.coveragePath(symbol, tf)
	ranges, err := readParquetFile[CoverageRecord](path)
	if err != nil {
		return err
	}
	ranges = append(ranges, CoverageRecord{StartMs: start.UnixMilli(), EndMs: end.UnixMilli()})
	return writeParquetFile(path, coalesce(ranges))
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// barPath returns the filesystem path for a bar Parquet file.
// Layout: <dataDir>/<timeframe>/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) barPath(symbol string, tf domain.Timeframe, year int) string {
	return filepath.Join(s.DataDir, string(tf), strings.ToUpper(symbol), fmt.Sprintf("%d.parquet", year))
}

// coveragePath returns <dataDir>/<timeframe>/<SYMBOL>/coverage.parquet.
func (s *ParquetStore) coveragePath(symbol string, tf domain.Timeframe) string {
	return filepath.Join(s.DataDir, string(tf), strings.ToUpper(symbol), "coverage.parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

// readParquetFile returns the rows of path; a missing file reads as empty.
func readParquetFile[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeBarRecords deduplicates bar records by (symbol, timestamp), preferring
// new records over existing ones.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// coalesce merges overlapping or touching ranges.
func coalesce(ranges []CoverageRecord) []CoverageRecord {
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].StartMs < ranges[j].StartMs })
	out := ranges[:0]
	for _, r := range ranges {
		if n := len(out); n > 0 && r.StartMs <= out[n-1].EndMs {
			if r.EndMs > out[n-1].EndMs {
				out[n-1].EndMs = r.EndMs
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
