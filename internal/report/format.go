// Package report turns backtest outcomes into comparison rows and renders
// them as terminal tables.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const notAvailable = "n/a"

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + groupThousands(fmt.Sprintf("%d", -n))
	}
	return groupThousands(fmt.Sprintf("%d", n))
}

// groupThousands inserts commas into a string of digits.
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatMoney formats v as dollars with two decimals and comma separators,
// e.g. "$12,345.68" or "-$3.10". Rounding is half away from zero on the
// shortest decimal representation of v.
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	return sign + "$" + groupThousands(s[:len(s)-3]) + s[len(s)-3:]
}

// PercentChange returns the percent gain from a to b, or 0 when a is 0.
func PercentChange(a, b float64) float64 {
	if a == 0 {
		return 0
	}
	return (b - a) / a * 100
}

// FormatPercent formats a percentage with an explicit sign, e.g. "+2.50%".
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return notAvailable
	}
	if p >= 0 {
		return fmt.Sprintf("+%.2f%%", p)
	}
	return fmt.Sprintf("%.2f%%", p)
}

// FormatRatio formats a fraction as a signed percentage (0.125 -> "+12.50%").
func FormatRatio(r float64) string {
	return FormatPercent(r * 100)
}

// FormatFloat formats v with the given precision, or "n/a" when not finite.
func FormatFloat(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return fmt.Sprintf("%.*f", prec, v)
}
