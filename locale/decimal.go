package locale

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"go-bancaditalia/domain"
)

// MaxDigits is the largest number of significant digits ParseDecimal accepts.
const MaxDigits = 28

var decimalRegexp = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// ParseDecimal converts a provider number into an exact decimal.
// Either '.' or ',' may be the fractional separator. When both appear the
// rightmost one is the fractional separator and the other groups thousands.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero, domain.ConversionFailed(raw, "empty decimal", nil)
	}

	normalized, ok := normalizeSeparators(cleaned)
	if !ok {
		return decimal.Zero, domain.ConversionFailed(raw, "ambiguous decimal separators", nil)
	}

	if !decimalRegexp.MatchString(normalized) {
		return decimal.Zero, domain.ConversionFailed(raw, "invalid decimal format", nil)
	}

	if significantDigits(normalized) > MaxDigits {
		return decimal.Zero, domain.ConversionFailed(raw, "decimal overflow", nil)
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, domain.ConversionFailed(raw, "could not parse decimal", err)
	}
	return d, nil
}

// normalizeSeparators rewrites s to use '.' as the only separator.
func normalizeSeparators(s string) (string, bool) {
	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')

	switch {
	case dot < 0 && comma < 0:
		return s, true
	case dot >= 0 && comma >= 0:
		fraction, group := byte('.'), byte(',')
		if comma > dot {
			fraction, group = ',', '.'
		}
		// the fractional separator may appear once
		if strings.Count(s, string(fraction)) != 1 {
			return "", false
		}
		i := strings.IndexByte(s, fraction)
		sign, integer := splitSign(s[:i])
		if !grouped(integer, group) {
			return "", false
		}
		return sign + strings.ReplaceAll(integer, string(group), "") + "." + s[i+1:], true
	case comma >= 0:
		if strings.Count(s, ",") != 1 {
			return "", false
		}
		return strings.Replace(s, ",", ".", 1), true
	default:
		if strings.Count(s, ".") != 1 {
			return "", false
		}
		return s, true
	}
}

func splitSign(s string) (string, string) {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[:1], s[1:]
	}
	return "", s
}

// grouped reports whether s is 1-3 digits followed by groups of exactly
// three digits, each introduced by sep.
func grouped(s string, sep byte) bool {
	groups := strings.Split(s, string(sep))
	if len(groups) < 2 {
		return false
	}
	for i, g := range groups {
		if !allDigits(g) {
			return false
		}
		if i == 0 && (len(g) < 1 || len(g) > 3) {
			return false
		}
		if i > 0 && len(g) != 3 {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func significantDigits(s string) int {
	s = strings.TrimLeft(s, "+-")
	s = strings.Replace(s, ".", "", 1)
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return 1
	}
	return len(s)
}
