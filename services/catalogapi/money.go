package catalogapi

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatPrice renders cents as a two-decimal amount, like "12.50".
func FormatPrice(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ParsePrice converts a decimal amount into cents. More than two decimals is refused.
func ParsePrice(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %s", amount, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid price %q: negative", amount)
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("invalid price %q: more than two decimals", amount)
	}
	return cents.IntPart(), nil
}
