package bill

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to an amount. Malformed input yields 0
// rather than an error. Thousands separators are not interpreted.
func ParseAmount(s string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// ParseQuantity converts user input to a quantity. It accepts a leading
// integer ("3", "3 pcs") and yields 0 for anything else, including negatives.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
