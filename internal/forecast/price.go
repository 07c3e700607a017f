package forecast

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatPrice renders a price with exactly two decimals.
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// ParsePrice reads a price written by FormatPrice.
func ParsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

// DisplayPrice formats a price for people: thousands separators, two
// decimals, and up to six decimals for sub-dollar coins.
func DisplayPrice(v float64) string {
	d := decimal.NewFromFloat(v)
	var s string
	if v < 1 {
		s = d.Round(6).String()
		if !strings.Contains(s, ".") {
			s += ".00"
		} else if len(s)-strings.Index(s, ".")-1 < 2 {
			s += "0"
		}
	} else {
		s = d.StringFixed(2)
	}
	return "$" + groupThousands(s)
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return sign + s
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

// FormatPercent renders a signed percentage such as "+4.20%".
func FormatPercent(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}
