package rating

import (
	"math"
	"strconv"
)

// ParseFloat converts loosely formatted input into a float. Leading
// whitespace is skipped and the longest numeric prefix is parsed, so "3.5abc"
// yields 3.5. Input without a numeric prefix, and results that would not be
// finite, yield 0.
func ParseFloat(s string) float64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	// Exponent only counts when at least one digit follows it.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}

	v, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// FormatNumber renders a float with up to 14 significant digits and no
// trailing zeros: 5, 3.5, 80.5.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'G', 14, 64)
}

// EncodeNumber renders a float as the shortest text ParseFloat reads back
// to the same value. Used for storage; FormatNumber is for display.
func EncodeNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
