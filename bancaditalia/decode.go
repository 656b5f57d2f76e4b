package bancaditalia

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"go-bancaditalia/domain"
	"go-bancaditalia/locale"
)

const (
	opCurrencies  = "currencies"
	opLatestRates = "latestRates"
)

var currencyAliases = aliases{
	"isoCode": "code",
}

var countryAliases = aliases{
	"currencyISO":       "currency_code",
	"countryISO":        "country_code",
	"validityStartDate": "valid_from",
	"validityEndDate":   "valid_to",
}

var rateAliases = aliases{
	"isoCode":                   "currency_code",
	"referenceDate":             "date",
	"eurRate":                   "eur_rate",
	"usdRate":                   "usd_rate",
	"currency":                  "currency_name",
	"uicCode":                   "uic_code",
	"usdExchangeConvention":     "usd_exchange_convention",
	"usdExchangeConventionCode": "usd_exchange_convention_code",
}

// DecodeCurrencies decodes a currencies body. Records keep their wire order
// and currency codes are unique.
// An empty list is a valid result.
func DecodeCurrencies(body []byte) ([]domain.Currency, error) {
	records, err := parseBody(opCurrencies, opCurrencies, body, currencyAliases, map[string]aliases{"countries": countryAliases})
	if err != nil {
		return nil, err
	}

	currencies := make([]domain.Currency, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, record := range records {
		currency, err := decodeCurrency(i, record)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[currency.Code()]; dup {
			return nil, domain.DeserializeFailed(opCurrencies, record.wireName("code"), i, "duplicate currency code", nil)
		}
		seen[currency.Code()] = struct{}{}
		currencies = append(currencies, currency)
	}
	return currencies, nil
}

func decodeCurrency(i int, record rawRecord) (domain.Currency, error) {
	code, _ := record.get("code")
	if code == "" {
		return domain.Currency{}, domain.DeserializeFailed(opCurrencies, record.wireName("code"), i, "missing required field", nil)
	}
	name, _ := record.get("name")
	country, _ := record.get("country")

	countries := make([]domain.Country, 0, len(record.nested["countries"]))
	for j, nested := range record.nested["countries"] {
		prefix := fmt.Sprintf("%v[%d].", record.wireName("countries"), j)
		c, err := decodeCountry(i, prefix, nested)
		if err != nil {
			return domain.Currency{}, err
		}
		countries = append(countries, c)
	}

	currency, err := domain.NewCurrency(code, name, country, countries)
	if err != nil {
		return domain.Currency{}, domain.DeserializeFailed(opCurrencies, "", i, "invalid currency", err)
	}
	return currency, nil
}

func decodeCountry(i int, prefix string, record rawRecord) (domain.Country, error) {
	name, _ := record.get("country")
	if name == "" {
		return domain.Country{}, domain.DeserializeFailed(opCurrencies, prefix+record.wireName("country"), i, "missing required field", nil)
	}
	currencyCode, _ := record.get("currency_code")
	code, _ := record.get("country_code")

	var validFrom, validTo domain.Date
	if raw, ok := record.get("valid_from"); ok {
		d, err := locale.ParseDate(raw)
		if err != nil {
			return domain.Country{}, located(err, opCurrencies, prefix+record.wireName("valid_from"), i)
		}
		validFrom = d
	}
	if raw, ok := record.get("valid_to"); ok && raw != "" {
		d, err := locale.ParseDate(raw)
		if err != nil {
			return domain.Country{}, located(err, opCurrencies, prefix+record.wireName("valid_to"), i)
		}
		validTo = d
	}

	country, err := domain.NewCountry(currencyCode, name, code, validFrom, validTo)
	if err != nil {
		return domain.Country{}, domain.DeserializeFailed(opCurrencies, prefix+record.wireName("valid_to"), i, "invalid country", err)
	}
	return country, nil
}

// DecodeLatestRates decodes a latestRates body. Records keep their wire order.
// An empty list is returned as is; escalating it is up to the caller.
func DecodeLatestRates(body []byte) ([]domain.ExchangeRate, error) {
	records, err := parseBody(opLatestRates, opLatestRates, body, rateAliases, nil)
	if err != nil {
		return nil, err
	}

	rates := make([]domain.ExchangeRate, 0, len(records))
	for i, record := range records {
		rate, err := decodeRate(i, record)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

func decodeRate(i int, record rawRecord) (domain.ExchangeRate, error) {
	code, _ := record.get("currency_code")
	if code == "" {
		return domain.ExchangeRate{}, domain.DeserializeFailed(opLatestRates, record.wireName("currency_code"), i, "missing required field", nil)
	}

	rawDate, err := required(opLatestRates, i, record, "date")
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	date, err := locale.ParseDate(rawDate)
	if err != nil {
		return domain.ExchangeRate{}, located(err, opLatestRates, record.wireName("date"), i)
	}

	eur, err := rateField(i, record, "eur_rate")
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	usd, err := rateField(i, record, "usd_rate")
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	var details domain.RateDetails
	details.CurrencyName, _ = record.get("currency_name")
	details.Country, _ = record.get("country")
	details.UICCode, _ = record.get("uic_code")
	details.USDConvention, _ = record.get("usd_exchange_convention")
	details.USDConventionCode, _ = record.get("usd_exchange_convention_code")

	rate, err := domain.NewExchangeRate(code, date, eur, usd, details)
	if err != nil {
		return domain.ExchangeRate{}, domain.DeserializeFailed(opLatestRates, "", i, "invalid exchange rate", err)
	}
	return rate, nil
}

func rateField(i int, record rawRecord, field string) (decimal.Decimal, error) {
	raw, err := required(opLatestRates, i, record, field)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := locale.ParseDecimal(raw)
	if err != nil {
		return decimal.Zero, located(err, opLatestRates, record.wireName(field), i)
	}
	if d.IsNegative() {
		return decimal.Zero, domain.ConversionFailed(raw, "negative rate", nil).At(opLatestRates, record.wireName(field), i)
	}
	return d, nil
}

// required returns a field that must be present. An empty string is present
// and left to conversion to reject.
func required(op string, i int, record rawRecord, field string) (string, error) {
	raw, ok := record.get(field)
	if !ok {
		return "", domain.DeserializeFailed(op, record.wireName(field), i, "missing required field", nil)
	}
	return raw, nil
}

// located places a conversion error at field of record i.
func located(err error, op, field string, i int) error {
	var convErr *domain.Error
	if errors.As(err, &convErr) {
		return convErr.At(op, field, i)
	}
	return domain.ConversionFailed("", "conversion failed", err).At(op, field, i)
}
