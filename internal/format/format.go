// Package format renders money, percentages and times for display.
package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/asset"
)

const nairaSign = "₦"

// Naira formats an NGN amount with grouping and up to two decimals:
// 1234567.5 -> "₦1,234,567.5".
func Naira(v decimal.Decimal) string {
	return signed(v, nairaSign, 2)
}

// NairaFloat is Naira for float inputs from chart data.
func NairaFloat(v float64) string {
	return Naira(decimal.NewFromFloat(v))
}

// Number formats with grouping and up to decimals fractional digits.
func Number(v decimal.Decimal, decimals int32) string {
	return signed(v, "", decimals)
}

// Percent always shows the sign for non-negative values: 2.5 -> "+2.50%".
func Percent(v decimal.Decimal, decimals int32) string {
	s := v.StringFixed(decimals)
	if !v.IsNegative() {
		s = "+" + s
	}
	return s + "%"
}

// PercentFloat is Percent for float inputs.
func PercentFloat(v float64, decimals int32) string {
	return Percent(decimal.NewFromFloat(v), decimals)
}

func signed(v decimal.Decimal, prefix string, decimals int32) string {
	r := v.Round(decimals)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Abs()
	}

	whole := r.Truncate(0)
	out := humanize.Comma(whole.IntPart())

	// String() drops trailing zeros, which gives the 0..decimals range.
	if s := r.String(); strings.Contains(s, ".") {
		out += s[strings.Index(s, "."):]
	}
	return sign + prefix + out
}

// RelativeTime renders t relative to now: "Just now", "5m ago", "3h ago",
// and a dd/mm/yyyy date after a day.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return itoa(int(d/time.Minute)) + "m ago"
	case d < 24*time.Hour:
		return itoa(int(d/time.Hour)) + "h ago"
	default:
		return t.Local().Format("02/01/2006")
	}
}

func itoa(n int) string {
	return humanize.Comma(int64(n))
}

// ExchangeName returns the display name for an exchange id, e.g.
// "binance_p2p" -> "Binance P2P"; unknown ids are title cased.
func ExchangeName(id string) string {
	return asset.ExchangeName(id)
}

// Compact renders large naira figures for narrow columns: "₦1.2M".
func Compact(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}
	if v.LessThan(decimal.NewFromInt(1000)) {
		return sign + nairaSign + v.Round(2).String()
	}
	f, _ := v.Float64()
	value, unit := humanize.ComputeSI(f)
	return sign + nairaSign + decimal.NewFromFloat(value).Round(1).String() + strings.ToUpper(unit)
}
