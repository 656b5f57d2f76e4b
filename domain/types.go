package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Date a calendar date without time of day or zone. The zero Date means
// no date; any other Date comes from NewDate.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate returns the date or false when the components do not name a real day.
func NewDate(year int, month time.Month, day int) (Date, bool) {
	if year < 1 || year > 9999 || month < time.January || month > time.December || day < 1 {
		return Date{}, false
	}
	if day > daysIn(year, month) {
		return Date{}, false
	}
	return Date{year: year, month: month, day: day}, true
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) Year() int          { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int          { return d.day }

// valid reports whether d names a real day.
func (d Date) valid() bool {
	_, ok := NewDate(d.year, d.month, d.day)
	return ok
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// Country a country using a currency, as published with the currency registry
type Country struct {
	currencyCode string
	name         string
	code         string
	validFrom    Date
	validTo      Date
}

// NewCountry constructs a Country. code and validTo are optional.
func NewCountry(currencyCode, name, code string, validFrom, validTo Date) (Country, error) {
	if name == "" {
		return Country{}, fmt.Errorf("country: empty name")
	}
	if !validFrom.IsZero() && !validFrom.valid() {
		return Country{}, fmt.Errorf("country %v: invalid validity start %v", name, validFrom)
	}
	if !validTo.IsZero() && !validTo.valid() {
		return Country{}, fmt.Errorf("country %v: invalid validity end %v", name, validTo)
	}
	if !validTo.IsZero() && validTo.Time().Before(validFrom.Time()) {
		return Country{}, fmt.Errorf("country %v: validity ends %v before it starts %v", name, validTo, validFrom)
	}
	return Country{
		currencyCode: currencyCode,
		name:         name,
		code:         code,
		validFrom:    validFrom,
		validTo:      validTo,
	}, nil
}

func (c Country) CurrencyCode() string { return c.currencyCode }
func (c Country) Name() string         { return c.name }

// Code the ISO country code, empty when the provider has none
func (c Country) Code() string { return c.code }

func (c Country) ValidFrom() Date { return c.validFrom }

// ValidTo the end of validity. The zero Date means still valid.
func (c Country) ValidTo() Date { return c.validTo }

func (c Country) String() string {
	return fmt.Sprintf("Country{%v %v %v}", c.currencyCode, c.name, c.validFrom)
}

func (c Country) MarshalJSON() ([]byte, error) {
	type country struct {
		CurrencyCode string `json:"currencyCode"`
		Name         string `json:"name"`
		Code         string `json:"code,omitempty"`
		ValidFrom    Date   `json:"validFrom"`
		ValidTo      *Date  `json:"validTo,omitempty"`
	}
	out := country{
		CurrencyCode: c.currencyCode,
		Name:         c.name,
		Code:         c.code,
		ValidFrom:    c.validFrom,
	}
	if !c.validTo.IsZero() {
		out.ValidTo = &c.validTo
	}
	return json.Marshal(out)
}

// Currency a currency of the provider registry
type Currency struct {
	code      string
	name      string
	country   string
	countries []Country
}

// NewCurrency constructs a Currency. The code must not be empty.
func NewCurrency(code, name, country string, countries []Country) (Currency, error) {
	if code == "" {
		return Currency{}, fmt.Errorf("currency: empty code")
	}
	if country == "" && len(countries) > 0 {
		country = countries[0].name
	}
	cs := make([]Country, len(countries))
	copy(cs, countries)
	return Currency{
		code:      code,
		name:      name,
		country:   country,
		countries: cs,
	}, nil
}

func (c Currency) Code() string { return c.code }
func (c Currency) Name() string { return c.name }

// Country name of the issuing country
func (c Currency) Country() string { return c.country }

// Countries returns a copy of every country using the currency.
func (c Currency) Countries() []Country {
	cs := make([]Country, len(c.countries))
	copy(cs, c.countries)
	return cs
}

func (c Currency) String() string {
	return fmt.Sprintf("Currency{%v %q %q}", c.code, c.name, c.country)
}

func (c Currency) MarshalJSON() ([]byte, error) {
	type currency struct {
		Code      string    `json:"code"`
		Name      string    `json:"name"`
		Country   string    `json:"country"`
		Countries []Country `json:"countries,omitempty"`
	}
	return json.Marshal(currency{
		Code:      c.code,
		Name:      c.name,
		Country:   c.country,
		Countries: c.countries,
	})
}

// RateDetails optional provider metadata attached to an ExchangeRate
type RateDetails struct {
	CurrencyName      string
	Country           string
	UICCode           string
	USDConvention     string
	USDConventionCode string
}

// ExchangeRate the rate of one currency on a reference date, in EUR and USD terms
type ExchangeRate struct {
	code    string
	date    Date
	eur     decimal.Decimal
	usd     decimal.Decimal
	details RateDetails
}

// NewExchangeRate constructs an ExchangeRate. Both rates must be non-negative.
func NewExchangeRate(code string, date Date, eur, usd decimal.Decimal, details RateDetails) (ExchangeRate, error) {
	if code == "" {
		return ExchangeRate{}, fmt.Errorf("exchange rate: empty currency code")
	}
	if date.IsZero() {
		return ExchangeRate{}, fmt.Errorf("exchange rate %v: missing reference date", code)
	}
	if !date.valid() {
		return ExchangeRate{}, fmt.Errorf("exchange rate %v: invalid reference date %v", code, date)
	}
	if eur.IsNegative() {
		return ExchangeRate{}, fmt.Errorf("exchange rate %v: negative eur rate %v", code, eur)
	}
	if usd.IsNegative() {
		return ExchangeRate{}, fmt.Errorf("exchange rate %v: negative usd rate %v", code, usd)
	}
	return ExchangeRate{
		code:    code,
		date:    date,
		eur:     eur,
		usd:     usd,
		details: details,
	}, nil
}

// CurrencyCode refers to a Currency code. The reference is not checked.
func (r ExchangeRate) CurrencyCode() string     { return r.code }
func (r ExchangeRate) Date() Date               { return r.date }
func (r ExchangeRate) EURRate() decimal.Decimal { return r.eur }
func (r ExchangeRate) USDRate() decimal.Decimal { return r.usd }
func (r ExchangeRate) Details() RateDetails     { return r.details }

func (r ExchangeRate) String() string {
	return fmt.Sprintf("ExchangeRate{%v %v eur=%v usd=%v}", r.code, r.date, r.eur, r.usd)
}

func (r ExchangeRate) MarshalJSON() ([]byte, error) {
	type rate struct {
		CurrencyCode      string          `json:"currencyCode"`
		Date              Date            `json:"date"`
		EURRate           decimal.Decimal `json:"eurRate"`
		USDRate           decimal.Decimal `json:"usdRate"`
		CurrencyName      string          `json:"currency,omitempty"`
		Country           string          `json:"country,omitempty"`
		UICCode           string          `json:"uicCode,omitempty"`
		USDConvention     string          `json:"usdExchangeConvention,omitempty"`
		USDConventionCode string          `json:"usdExchangeConventionCode,omitempty"`
	}
	return json.Marshal(rate{
		CurrencyCode:      r.code,
		Date:              r.date,
		EURRate:           r.eur,
		USDRate:           r.usd,
		CurrencyName:      r.details.CurrencyName,
		Country:           r.details.Country,
		UICCode:           r.details.UICCode,
		USDConvention:     r.details.USDConvention,
		USDConventionCode: r.details.USDConventionCode,
	})
}

// Exchanged the result of converting an amount between two currencies
type Exchanged struct {
	From   string
	To     string
	Rate   decimal.Decimal
	Amount decimal.Decimal
	Date   Date
}
