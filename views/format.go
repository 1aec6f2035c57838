package views

import (
	"strconv"
	"strings"
)

// formatPrice renders 1200 as "1,200" and 99.5 as "99.50".
func formatPrice(p float64) string {
	s := strconv.FormatFloat(p, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}

	if frac == ".00" {
		frac = ""
	}
	return sign + b.String() + frac
}
