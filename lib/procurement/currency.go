package procurement

import (
	"strconv"
	"strings"
)

// NormalizeCurrency resolves the free-text currency strings both
// sources emit ("DOLAR AMERICANO", "Soles", bare codes) to a 3-letter
// code. Anything unrecognized is PEN, the portal's default.
func NormalizeCurrency(raw string) string {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "DOLAR") || strings.Contains(upper, "USD"):
		return "USD"
	case strings.Contains(upper, "EURO") || strings.Contains(upper, "EUR"):
		return "EUR"
	default:
		return "PEN"
	}
}

// ParseAmount reads a money string as the sources print it, with
// currency symbols and thousands separators ("S/ 1,234,567.89").
func ParseAmount(raw string) (float64, bool) {
	cleaned := strings.Map(func(c rune) rune {
		if c >= '0' && c <= '9' || c == '.' {
			return c
		}
		return -1
	}, strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
