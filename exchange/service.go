package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"go-bancaditalia/bancaditalia"
	"go-bancaditalia/domain"
)

// EUR the reference currency of eurRate values
const EUR = "EUR"

var (
	// ErrUnknownCurrency the currency has no latest rate
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrZeroRate the latest rate is zero and cannot be divided by
	ErrZeroRate = errors.New("zero exchange rate")
	// ErrInvalidAmount the amount is negative
	ErrInvalidAmount = errors.New("amount must not be negative")
)

// Service interface for converting from one currency to another
type Service interface {
	Convert(ctx context.Context, amount decimal.Decimal, from string, to string) (domain.Exchanged, error)
}

// service converts with the latest Banca d'Italia rates
type service struct {
	// rates service to lookup the latest rates
	rates bancaditalia.Service
}

// NewService constructs a valid Service
func NewService(s bancaditalia.Service) Service {
	return &service{
		rates: s,
	}
}

// Convert computes a conversion from one currency to another with the latest rates.
// Rates are units of currency per euro, so amount is divided by the rate of
// from and multiplied by the rate of to.
func (s *service) Convert(ctx context.Context, amount decimal.Decimal, from string, to string) (domain.Exchanged, error) {
	if amount.IsNegative() {
		return domain.Exchanged{}, ErrInvalidAmount
	}
	from, to = strings.ToUpper(from), strings.ToUpper(to)

	rates, err := s.rates.GetLatestRates(ctx)
	if err != nil {
		return domain.Exchanged{}, fmt.Errorf("convert from [%v]: %w", from, err)
	}

	fromRate, fromDate, err := eurRate(rates, from)
	if err != nil {
		return domain.Exchanged{}, err
	}
	toRate, toDate, err := eurRate(rates, to)
	if err != nil {
		return domain.Exchanged{}, err
	}
	if fromRate.IsZero() {
		return domain.Exchanged{}, fmt.Errorf("%w: %v", ErrZeroRate, from)
	}

	rate := toRate.Div(fromRate)
	date := fromDate
	if date.IsZero() || (!toDate.IsZero() && toDate.Time().Before(date.Time())) {
		date = toDate
	}

	return domain.Exchanged{
		From:   from,
		To:     to,
		Rate:   rate,
		Amount: amount.Mul(toRate).Div(fromRate),
		Date:   date,
	}, nil
}

// eurRate finds the rate of code. The euro is 1 when the provider does not list it.
func eurRate(rates []domain.ExchangeRate, code string) (decimal.Decimal, domain.Date, error) {
	for _, r := range rates {
		if r.CurrencyCode() == code {
			return r.EURRate(), r.Date(), nil
		}
	}
	if code == EUR {
		return decimal.NewFromInt(1), domain.Date{}, nil
	}
	return decimal.Zero, domain.Date{}, fmt.Errorf("%w: %v", ErrUnknownCurrency, code)
}
