package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are integer minor currency units throughout the service. Fractional
// results of percentage arithmetic never leave this package un-truncated.

// Round converts a decimal amount to minor units, rounding half away from zero.
func Round(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// Floor converts a decimal amount to minor units, discarding any fractional part.
func Floor(d decimal.Decimal) int64 {
	return d.Floor().IntPart()
}

// ApplyFraction multiplies an amount by a fraction and floors the result.
func ApplyFraction(amount int64, fraction decimal.Decimal) int64 {
	return Floor(decimal.NewFromInt(amount).Mul(fraction))
}

// Clamp bounds value to [0, max].
func Clamp(value, max int64) int64 {
	if value < 0 {
		return 0
	}
	if value > max {
		return max
	}
	return value
}

// FormatIDR renders minor units as an Indonesian rupiah display string,
// e.g. 1250000 -> "Rp1.250.000".
func FormatIDR(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := "Rp" + strings.Join(groups, ".")
	if negative {
		return "-" + out
	}
	return out
}
