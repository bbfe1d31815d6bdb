package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.English)

// formatCurrency renders whole-unit amounts with thousands separators and a
// leading dollar sign: 468000 -> "$468,000", 1.5 -> "$1.50". Cents are shown
// only when non-zero. Amounts of any magnitude are grouped exactly.
func formatCurrency(v decimal.Decimal) string {
	v = v.Round(2)
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}

	whole := v.Truncate(0)
	s := sign + "$" + groupThousands(whole.String())
	if frac := v.Sub(whole); !frac.IsZero() {
		s += strings.TrimPrefix(frac.StringFixed(2), "0")
	}
	return s
}

// groupThousands inserts a comma every three digits from the right of an
// unsigned integer string: "5850000" -> "5,850,000".
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)

	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func formatCurrencyFloat(v float64) string {
	return formatCurrency(decimal.NewFromFloat(v))
}

// formatNumber renders a plain number with the shortest exact representation:
// 6.2 -> "6.2", 72 -> "72".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatPercent appends a percent sign to a nominal percentage: 6.2 -> "6.2%".
func formatPercent(v float64) string {
	return formatNumber(v) + "%"
}

// formatRate renders a fraction as a percentage: 0.065 -> "6.5%".
func formatRate(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}

// formatCount renders an integer with thousands separators: 52000 -> "52,000".
func formatCount(n int) string {
	return numberPrinter.Sprintf("%d", n)
}
