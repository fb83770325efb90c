package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusOut = "❌ Out"
	StatusLow = "⚠️ Low"
	StatusIn  = "✅ In"
)

// SameDay reports whether t falls on the same calendar date as now, evaluated in
// now's location. It is not a rolling 24h window.
func SameDay(t, now time.Time) bool {
	ty, tm, td := t.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}

func IsLowStock(qty, threshold int) bool {
	return qty > 0 && qty < threshold
}

// StockStatus is the label shown next to a product row.
func StockStatus(qty, threshold int) string {
	switch {
	case qty <= 0:
		return StatusOut
	case qty < threshold:
		return StatusLow
	default:
		return StatusIn
	}
}

// FormatCurrency renders an amount with grouped thousands and at most two
// decimals, e.g. "₹1,234.5".
func FormatCurrency(symbol string, amount decimal.Decimal) string {
	s := amount.Round(2).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := symbol + b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatClock renders the local wall-clock time of an activity entry.
func FormatClock(t time.Time) string {
	return t.Format("3:04:05 PM")
}
