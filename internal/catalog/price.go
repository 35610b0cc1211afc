package catalog

import (
	"strconv"
	"strings"
)

// FormatPrice renders a whole-peso amount the way es-CO formats COP with
// no decimals: "$", a non-breaking space, then "." thousands groups.
func FormatPrice(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$\u00a0" + groupThousands(strconv.Itoa(amount))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
