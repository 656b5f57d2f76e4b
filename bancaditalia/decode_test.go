package bancaditalia

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-bancaditalia/domain"
)

const latestRatesBody = `{
  "resultsInfo": {"totalRecords": 2, "timezoneReference": "Dates refer to the Central European Time Zone"},
  "latestRates": [
    {
      "country": "UNITED STATES",
      "currency": "US Dollar",
      "isoCode": "USD",
      "uicCode": "001",
      "eurRate": "1,0945",
      "usdRate": "1",
      "usdExchangeConvention": "Foreign currency amount for 1 Dollar",
      "usdExchangeConventionCode": "I",
      "referenceDate": "2024-01-10"
    },
    {
      "country": "UNITED KINGDOM",
      "currency": "Pound Sterling",
      "isoCode": "GBP",
      "uicCode": "002",
      "eurRate": 0.8601,
      "usdRate": "0.7858",
      "referenceDate": "2024-01-10"
    }
  ]
}`

const currenciesBody = `{
  "resultsInfo": {"totalRecords": 2},
  "currencies": [
    {
      "isoCode": "EUR",
      "name": "Euro",
      "countries": [
        {"currencyISO": "EUR", "country": "ITALY", "countryISO": "IT", "validityStartDate": "1999-01-01", "validityEndDate": null},
        {"currencyISO": "EUR", "country": "CROATIA", "countryISO": "HR", "validityStartDate": "2023-01-01"}
      ]
    },
    {
      "isoCode": "ITL",
      "name": "Italian Lira",
      "countries": [
        {"currencyISO": "ITL", "country": "ITALY", "countryISO": "IT", "validityStartDate": "1861-03-17", "validityEndDate": "2002-02-28"}
      ]
    }
  ]
}`

func mustDate(t *testing.T, year int, month time.Month, day int) domain.Date {
	t.Helper()
	d, ok := domain.NewDate(year, month, day)
	require.True(t, ok)
	return d
}

func assertKind(t *testing.T, err error, sentinel error) *domain.Error {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, sentinel), "got %v", err)
	var e *domain.Error
	require.True(t, errors.As(err, &e))
	return e
}

func TestDecodeLatestRates_CanonicalArray(t *testing.T) {
	body := `[{"currency_code":"USD","date":"2024-01-10","eur_rate":"0,92","usd_rate":"1,00"}]`

	rates, err := DecodeLatestRates([]byte(body))
	require.NoError(t, err)
	require.Len(t, rates, 1)

	r := rates[0]
	assert.Equal(t, "USD", r.CurrencyCode())
	assert.Equal(t, mustDate(t, 2024, time.January, 10), r.Date())
	assert.True(t, decimal.RequireFromString("0.92").Equal(r.EURRate()), "eur %v", r.EURRate())
	assert.True(t, decimal.RequireFromString("1.00").Equal(r.USDRate()), "usd %v", r.USDRate())
}

func TestDecodeLatestRates_ProviderShape(t *testing.T) {
	rates, err := DecodeLatestRates([]byte(latestRatesBody))
	require.NoError(t, err)
	require.Len(t, rates, 2)

	usd := rates[0]
	assert.Equal(t, "USD", usd.CurrencyCode())
	assert.True(t, decimal.RequireFromString("1.0945").Equal(usd.EURRate()))
	assert.Equal(t, domain.RateDetails{
		CurrencyName:      "US Dollar",
		Country:           "UNITED STATES",
		UICCode:           "001",
		USDConvention:     "Foreign currency amount for 1 Dollar",
		USDConventionCode: "I",
	}, usd.Details())

	gbp := rates[1]
	assert.Equal(t, "GBP", gbp.CurrencyCode(), "wire order is kept")
	assert.True(t, decimal.RequireFromString("0.8601").Equal(gbp.EURRate()), "json numbers are accepted")
	assert.True(t, decimal.RequireFromString("0.7858").Equal(gbp.USDRate()))
}

func TestDecodeLatestRates_CanonicalNameWinsOverAlias(t *testing.T) {
	body := `[{"currency_code":"USD","isoCode":"XXX","date":"2024-01-10","eur_rate":"1","usd_rate":"1"}]`

	rates, err := DecodeLatestRates([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "USD", rates[0].CurrencyCode())
}

func TestDecodeLatestRates_Empty(t *testing.T) {
	for _, body := range []string{`[]`, `{"latestRates":[]}`} {
		rates, err := DecodeLatestRates([]byte(body))
		require.NoError(t, err, body)
		assert.Empty(t, rates, body)
	}
}

func TestDecodeLatestRates_MissingField(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		index int
	}{
		{
			"no code",
			`[{"date":"2024-01-10","eur_rate":"1","usd_rate":"1"}]`,
			"currency_code", 0,
		},
		{
			"empty code",
			`[{"currency_code":"USD","date":"2024-01-10","eur_rate":"1","usd_rate":"1"},{"isoCode":"","referenceDate":"2024-01-10","eurRate":"1","usdRate":"1"}]`,
			"isoCode", 1,
		},
		{
			"no date",
			`[{"currency_code":"USD","eur_rate":"1","usd_rate":"1"}]`,
			"date", 0,
		},
		{
			"null rate",
			`[{"isoCode":"USD","referenceDate":"2024-01-10","eurRate":null,"usdRate":"1"}]`,
			"eurRate", 0,
		},
		{
			"null canonical date",
			`[{"currency_code":"USD","date":null,"eur_rate":"1","usd_rate":"1"}]`,
			"date", 0,
		},
		{
			"absent provider rate",
			`[{"isoCode":"USD","referenceDate":"2024-01-10","eurRate":"1"}]`,
			"usd_rate", 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates, err := DecodeLatestRates([]byte(tt.body))
			assert.Nil(t, rates, "no partial results")
			e := assertKind(t, err, domain.ErrDeserializeFailed)
			assert.Equal(t, opLatestRates, e.Op)
			assert.Equal(t, tt.field, e.Field)
			assert.Equal(t, tt.index, e.Index)
		})
	}
}

func TestDecodeLatestRates_ConversionFailed(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		index int
		value string
	}{
		{
			"not available rate",
			`[{"isoCode":"USD","referenceDate":"2024-01-10","eurRate":"1","usdRate":"1"},{"isoCode":"VES","referenceDate":"2024-01-10","eurRate":"N.A.","usdRate":"1"}]`,
			"eurRate", 1, "N.A.",
		},
		{
			"empty rate",
			`[{"currency_code":"USD","date":"2024-01-10","eur_rate":"","usd_rate":"1"}]`,
			"eur_rate", 0, "",
		},
		{
			"negative rate",
			`[{"currency_code":"USD","date":"2024-01-10","eur_rate":"1","usd_rate":"-1,5"}]`,
			"usd_rate", 0, "-1,5",
		},
		{
			"bad date",
			`[{"isoCode":"USD","referenceDate":"10/01/2024","eurRate":"1","usdRate":"1"}]`,
			"referenceDate", 0, "10/01/2024",
		},
		{
			"impossible date",
			`[{"currency_code":"USD","date":"2023-02-29","eur_rate":"1","usd_rate":"1"}]`,
			"date", 0, "2023-02-29",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates, err := DecodeLatestRates([]byte(tt.body))
			assert.Nil(t, rates)
			e := assertKind(t, err, domain.ErrConversionFailed)
			assert.Equal(t, opLatestRates, e.Op)
			assert.Equal(t, tt.field, e.Field)
			assert.Equal(t, tt.index, e.Index)
			assert.Equal(t, tt.value, e.Value)
		})
	}
}

func TestDecodeLatestRates_APIError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		code    string
	}{
		{"error string", `{"error":"unsupported language"}`, "unsupported language", ""},
		{"error object", `{"error":{"code":"E42","message":"bad request"}}`, "bad request", "E42"},
		{"error code and message", `{"errorCode":400,"errorMessage":"invalid lang"}`, "invalid lang", "400"},
		{"error code only", `{"errorCode":"500"}`, "error code 500", "500"},
		{"envelope wins over data", `{"errorMessage":"stale data","latestRates":[{"currency_code":"USD","date":"2024-01-10","eur_rate":"1","usd_rate":"1"}]}`, "stale data", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates, err := DecodeLatestRates([]byte(tt.body))
			assert.Nil(t, rates)
			e := assertKind(t, err, domain.ErrAPIError)
			assert.Equal(t, tt.message, e.Message)
			assert.Equal(t, tt.code, e.Value)
		})
	}
}

func TestDecodeLatestRates_NullErrorIsNoError(t *testing.T) {
	body := `{"error":null,"errorCode":null,"latestRates":[{"currency_code":"USD","date":"2024-01-10","eur_rate":"1","usd_rate":"1"}]}`

	rates, err := DecodeLatestRates([]byte(body))
	require.NoError(t, err)
	assert.Len(t, rates, 1)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"blank body", "  \n"},
		{"not json", `<html>maintenance</html>`},
		{"truncated", `[{"currency_code":"USD"`},
		{"scalar", `"latestRates"`},
		{"missing data key", `{"currencies":[]}`},
		{"null data", `{"latestRates":null}`},
		{"data not an array", `{"latestRates":{"isoCode":"USD"}}`},
		{"element not an object", `[1]`},
		{"null element", `[null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates, err := DecodeLatestRates([]byte(tt.body))
			assert.Nil(t, rates)
			assertKind(t, err, domain.ErrDeserializeFailed)
		})
	}
}

func TestDecodeCurrencies_ProviderShape(t *testing.T) {
	currencies, err := DecodeCurrencies([]byte(currenciesBody))
	require.NoError(t, err)
	require.Len(t, currencies, 2)

	eur := currencies[0]
	assert.Equal(t, "EUR", eur.Code())
	assert.Equal(t, "Euro", eur.Name())
	assert.Equal(t, "ITALY", eur.Country())

	countries := eur.Countries()
	require.Len(t, countries, 2)
	assert.Equal(t, "EUR", countries[0].CurrencyCode())
	assert.Equal(t, "IT", countries[0].Code())
	assert.Equal(t, mustDate(t, 1999, time.January, 1), countries[0].ValidFrom())
	assert.True(t, countries[0].ValidTo().IsZero(), "null end of validity")
	assert.Equal(t, "CROATIA", countries[1].Name())

	itl := currencies[1]
	assert.Equal(t, "ITL", itl.Code())
	assert.Equal(t, mustDate(t, 2002, time.February, 28), itl.Countries()[0].ValidTo())
}

func TestDecodeCurrencies_Empty(t *testing.T) {
	for _, body := range []string{`[]`, `{"currencies":[]}`} {
		currencies, err := DecodeCurrencies([]byte(body))
		require.NoError(t, err, body)
		assert.NotNil(t, currencies, body)
		assert.Empty(t, currencies, body)
	}
}

func TestDecodeCurrencies_InvalidCode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		index   int
		message string
	}{
		{
			"missing code",
			`[{"code":"EUR","name":"Euro"},{"name":"Nameless"},{"code":"USD","name":"US Dollar"}]`,
			"code", 1, "missing required field",
		},
		{
			"empty code",
			`[{"isoCode":"","name":"Nameless"}]`,
			"isoCode", 0, "missing required field",
		},
		{
			"duplicate code",
			`[{"code":"USD","name":"a"},{"code":"USD","name":"b"}]`,
			"code", 1, "duplicate currency code",
		},
		{
			"duplicate provider code",
			`[{"isoCode":"EUR","name":"Euro"},{"isoCode":"GBP","name":"Pound"},{"isoCode":"EUR","name":"Euro"}]`,
			"isoCode", 2, "duplicate currency code",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			currencies, err := DecodeCurrencies([]byte(tt.body))
			assert.Nil(t, currencies, "no shortened list")
			e := assertKind(t, err, domain.ErrDeserializeFailed)
			assert.Equal(t, opCurrencies, e.Op)
			assert.Equal(t, tt.field, e.Field)
			assert.Equal(t, tt.index, e.Index)
			assert.Equal(t, tt.message, e.Message)
		})
	}
}

func TestDecodeCurrencies_BadCountry(t *testing.T) {
	t.Run("missing country name", func(t *testing.T) {
		body := `[{"isoCode":"EUR","countries":[{"currencyISO":"EUR","countryISO":"IT","validityStartDate":"1999-01-01"}]}]`
		_, err := DecodeCurrencies([]byte(body))
		e := assertKind(t, err, domain.ErrDeserializeFailed)
		assert.Equal(t, "countries[0].country", e.Field)
		assert.Equal(t, 0, e.Index)
	})

	t.Run("bad validity date", func(t *testing.T) {
		body := `[{"isoCode":"EUR","countries":[{"country":"ITALY","validityStartDate":"1999-01-01"},{"country":"FRANCE","validityStartDate":"1999-13-01"}]}]`
		_, err := DecodeCurrencies([]byte(body))
		e := assertKind(t, err, domain.ErrConversionFailed)
		assert.Equal(t, "countries[1].validityStartDate", e.Field)
		assert.Equal(t, "1999-13-01", e.Value)
	})

	t.Run("validity ends before it starts", func(t *testing.T) {
		body := `[{"isoCode":"ITL","countries":[{"country":"ITALY","validityStartDate":"2002-02-28","validityEndDate":"1861-03-17"}]}]`
		_, err := DecodeCurrencies([]byte(body))
		assertKind(t, err, domain.ErrDeserializeFailed)
	})
}
