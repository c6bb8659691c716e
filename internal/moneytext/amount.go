// Package moneytext parses the loosely formatted amounts and dates found in
// Guatemalan bank statement exports.
package moneytext

import (
	"strconv"
	"strings"
)

// ParseAmount converts a statement amount cell into a float. It tolerates
// currency prefixes ("Q.", "$.", "Q", "$"), thousands separators,
// accounting-style parentheses for negatives and stray decoration around the
// number. Unparseable input yields zero, matching how statement rows with
// blank or decorative cells are treated.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimSpace(s[1:])
	}

	for _, prefix := range []string{"Q.", "Q", "$.", "$", "US$", "GTQ", "USD"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}

	// Whatever survives the prefix strip keeps only digits, the decimal
	// point and an interior sign; separators and stray characters fall away.
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		value = -value
	}
	return value
}
