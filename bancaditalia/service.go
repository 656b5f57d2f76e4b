package bancaditalia

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-bancaditalia/domain"
)

const ApiUrlBase = "https://tassidicambio.bancaditalia.it/terzevalute-wf-web/rest/v1.0"

// maxErrorBody bounds how much of a non-2xx body ends up in an error
const maxErrorBody = 512

// Service wraps the Banca d'Italia exchange rate REST API
type Service interface {
	// GetCurrencies lists the currency registry. The list may be empty.
	GetCurrencies(ctx context.Context) ([]domain.Currency, error)

	// GetLatestRates lists the latest rate of every quoted currency.
	// An empty answer is a domain.ErrNoResult.
	GetLatestRates(ctx context.Context) ([]domain.ExchangeRate, error)
}

// service Banca d'Italia API. It keeps no state between calls.
type service struct {
	// url base API url
	url string

	// lang of names in responses
	lang string

	// client for HTTP requests
	client *http.Client
}

// Option configures NewService.
type Option func(*service)

// WithBaseURL points the service at another base url, e.g. a test server.
func WithBaseURL(url string) Option {
	return func(s *service) {
		s.url = strings.TrimRight(url, "/")
	}
}

// WithLanguage sets the language of names, "en" or "it".
func WithLanguage(lang string) Option {
	return func(s *service) {
		s.lang = lang
	}
}

// WithHTTPClient replaces the default http client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *service) {
		s.client = client
	}
}

// NewService constructs a valid Banca d'Italia Service.
func NewService(opts ...Option) Service {
	s := &service{
		url:    ApiUrlBase,
		lang:   "en",
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetCurrencies(ctx context.Context) ([]domain.Currency, error) {
	body, err := s.get(ctx, opCurrencies)
	if err != nil {
		return nil, err
	}
	return DecodeCurrencies(body)
}

func (s *service) GetLatestRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	body, err := s.get(ctx, opLatestRates)
	if err != nil {
		return nil, err
	}
	rates, err := DecodeLatestRates(body)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, domain.NoResult(opLatestRates)
	}
	return rates, nil
}

// get issues one GET to the endpoint of op and returns the body of a 2xx response.
func (s *service) get(ctx context.Context, op string) ([]byte, error) {
	url := fmt.Sprintf("%v/%v?lang=%v", s.url, op, s.lang)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.RequestFailed(op, fmt.Errorf("building http request: %w", err))
	}
	request.Header.Set("Accept", "application/json")

	httpResponse, err := s.client.Do(request)
	if err != nil {
		return nil, domain.RequestFailed(op, fmt.Errorf("http get: %w", err))
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResponse.Body, maxErrorBody))
		return nil, domain.BadStatus(op, httpResponse.StatusCode, strings.TrimSpace(string(snippet)))
	}

	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, domain.RequestFailed(op, fmt.Errorf("reading body: %w", err))
	}
	return bytes, nil
}
