package model

import (
	"fmt"
	"math"
	"strings"
)

// FormatMoney renders a dollar amount with thousands separators. Whole
// amounts drop the cents, e.g. "$1,234,567" and "$1,234,567.89".
func FormatMoney(v float64) string {
	if v == math.Trunc(v) {
		return FormatMoneyN(v, 0)
	}
	return FormatMoneyN(v, 2)
}

// FormatMoneyN renders a dollar amount with a fixed number of decimals.
func FormatMoneyN(v float64, decimals int) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.*f", decimals, v)
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	n := len(intPart)
	for i, c := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	sign := ""
	if neg {
		sign = "-"
	}
	return sign + "$" + b.String() + frac
}

// FormatPercent renders a percentage with one decimal, e.g. "12.5%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// TitleCategory renders an uppercase category name for prose, e.g.
// "POLICE DEPARTMENT" -> "Police Department".
func TitleCategory(category string) string {
	words := strings.Fields(strings.ToLower(strings.ReplaceAll(category, "_", " ")))
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
