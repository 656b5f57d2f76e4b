package locale

import (
	"time"

	"go-bancaditalia/domain"
)

const dateLayout = "YYYY-MM-DD"

// ParseDate converts a provider date in YYYY-MM-DD form into a calendar date.
func ParseDate(raw string) (domain.Date, error) {
	if len(raw) != len(dateLayout) {
		return domain.Date{}, domain.ConversionFailed(raw, "date must be "+dateLayout, nil)
	}
	if raw[4] != '-' || raw[7] != '-' {
		return domain.Date{}, domain.ConversionFailed(raw, "date must be "+dateLayout, nil)
	}

	year, ok := digits(raw[0:4])
	if !ok {
		return domain.Date{}, domain.ConversionFailed(raw, "non-digit year", nil)
	}
	month, ok := digits(raw[5:7])
	if !ok {
		return domain.Date{}, domain.ConversionFailed(raw, "non-digit month", nil)
	}
	day, ok := digits(raw[8:10])
	if !ok {
		return domain.Date{}, domain.ConversionFailed(raw, "non-digit day", nil)
	}

	if month < 1 || month > 12 {
		return domain.Date{}, domain.ConversionFailed(raw, "month out of range", nil)
	}
	date, ok := domain.NewDate(year, time.Month(month), day)
	if !ok {
		return domain.Date{}, domain.ConversionFailed(raw, "date out of range", nil)
	}
	return date, nil
}

func digits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
