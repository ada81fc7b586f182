package marketdata

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"quantbench/internal/domain"
)

// Compile-time interface check.
var _ EarningsSource = (*EarningsCalendar)(nil)

// EarningsCalendar serves earnings dates from a YAML document of the form:
//
//	earnings:
//	  AAPL: [2024-02-01, 2024-05-02]
//	  NVDA: ["2024-02-21", "2024-05-22"]
type EarningsCalendar struct {
	dates map[string][]time.Time
}

type earningsFile struct {
	Earnings map[string][]string `yaml:"earnings"`
}

// LoadEarningsCalendar reads and parses an earnings calendar file.
func LoadEarningsCalendar(path string) (*EarningsCalendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading earnings calendar %s: %w", path, err)
	}
	return ParseEarningsCalendar(data)
}

// ParseEarningsCalendar parses a YAML earnings calendar. Dates may be
// YYYY-MM-DD or RFC 3339; only the calendar date is kept.
func ParseEarningsCalendar(data []byte) (*EarningsCalendar, error) {
	var f earningsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing earnings calendar: %w", err)
	}

	cal := &EarningsCalendar{dates: make(map[string][]time.Time, len(f.Earnings))}
	for ticker, raw := range f.Earnings {
		key := strings.ToUpper(strings.TrimSpace(ticker))
		for _, s := range raw {
			d, err := parseDate(s)
			if err != nil {
				return nil, fmt.Errorf("earnings date %q for %s: %w", s, key, domain.ErrInvalidInput)
			}
			cal.dates[key] = append(cal.dates[key], d)
		}
		sort.Slice(cal.dates[key], func(i, j int) bool { return cal.dates[key][i].Before(cal.dates[key][j]) })
	}
	return cal, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return domain.Normalize(t), nil
}

// EarningsDates returns the most recent maxEvents dates for ticker, oldest
// first. Unknown tickers return no dates.
func (c *EarningsCalendar) EarningsDates(_ context.Context, ticker string, maxEvents int) ([]time.Time, error) {
	all := c.dates[strings.ToUpper(strings.TrimSpace(ticker))]
	if maxEvents > 0 && len(all) > maxEvents {
		all = all[len(all)-maxEvents:]
	}
	out := make([]time.Time, len(all))
	copy(out, all)
	return out, nil
}

// Tickers returns the tickers present in the calendar, sorted.
func (c *EarningsCalendar) Tickers() []string {
	out := make([]string, 0, len(c.dates))
	for t := range c.dates {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
