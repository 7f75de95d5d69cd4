package channels

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount the way en-IN formats INR with no fraction
// digits, e.g. ₹1,00,000. Rounding is half away from zero.
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + "₹" + groupIndian(rounded.String())
}

// groupIndian places the first separator after three digits from the right
// and every two digits after that.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)

	return strings.Join(groups, ",") + "," + tail
}
