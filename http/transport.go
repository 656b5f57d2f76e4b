package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	httpmetrics "github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"

	"go-bancaditalia/bancaditalia"
	"go-bancaditalia/domain"
	"go-bancaditalia/exchange"
)

// maxRequestBody bounds POST bodies
const maxRequestBody = 1 << 20

// Server dependencies for HTTP Server functions
type Server struct {
	Rates    bancaditalia.Service
	Exchange exchange.Service
	Logger   log.Logger
	router   chi.Router
}

// NewServer routes the proxy endpoints. registry receives the HTTP metrics
// and is served on /metrics.
func NewServer(rates bancaditalia.Service, ex exchange.Service, logger log.Logger, registry *prometheus.Registry) *Server {
	server := &Server{
		Rates:    rates,
		Exchange: ex,
		Logger:   logger,
		router:   chi.NewRouter(),
	}
	server.routes(registry)
	return server
}

func (s *Server) routes(registry *prometheus.Registry) {
	mdlw := httpmetrics.New(httpmetrics.Config{
		Recorder: metrics.NewRecorder(metrics.Config{Registry: registry}),
	})

	// measured labels metrics with the route pattern, never the raw path
	measured := func(pattern string, h http.Handler) http.Handler {
		return std.Handler(pattern, mdlw, h)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Method(http.MethodGet, "/api/currencies", measured("/api/currencies", s.currencies()))
	s.router.Method(http.MethodGet, "/api/rates", measured("/api/rates", s.latestRates()))
	s.router.Method(http.MethodPost, "/api/convert", measured("/api/convert", s.convert()))
	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// currencies produces HTTP handler listing the currency registry
func (s *Server) currencies() http.HandlerFunc {
	type response struct {
		Currencies []domain.Currency `json:"currencies"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		currencies, err := s.Rates.GetCurrencies(r.Context())
		if err != nil {
			s.respondWithError(rw, r, err)
			return
		}
		s.respondWithJSON(rw, http.StatusOK, response{Currencies: currencies})
	}
}

// latestRates produces HTTP handler listing the latest rates
func (s *Server) latestRates() http.HandlerFunc {
	type response struct {
		LatestRates []domain.ExchangeRate `json:"latestRates"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		rates, err := s.Rates.GetLatestRates(r.Context())
		if err != nil {
			s.respondWithError(rw, r, err)
			return
		}
		s.respondWithJSON(rw, http.StatusOK, response{LatestRates: rates})
	}
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients.
	// Amount accepts a number or a decimal string.
	type request struct {
		FromCurrency string          `json:"fromCurrency"`
		ToCurrency   string          `json:"toCurrency"`
		Amount       decimal.Decimal `json:"amount"`
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Exchange decimal.Decimal `json:"exchange"`
		Amount   decimal.Decimal `json:"amount"`
		Original decimal.Decimal `json:"original"`
		Date     domain.Date     `json:"date"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, maxRequestBody)).Decode(&req); err != nil {
			s.respondWithJSON(rw, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}
		if req.FromCurrency == "" || req.ToCurrency == "" {
			s.respondWithJSON(rw, http.StatusBadRequest, errorResponse{Error: "fromCurrency and toCurrency are required"})
			return
		}

		result, err := s.Exchange.Convert(r.Context(), req.Amount, req.FromCurrency, req.ToCurrency)
		if err != nil {
			s.respondWithError(rw, r, err)
			return
		}

		s.respondWithJSON(rw, http.StatusOK, response{
			Exchange: result.Rate,
			Amount:   result.Amount,
			Original: req.Amount,
			Date:     result.Date,
		})
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) respondWithError(rw http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	resp := errorResponse{Error: err.Error()}
	if kind := domain.KindOf(err); kind != 0 {
		resp.Kind = kind.String()
	}

	_ = level.Warn(s.Logger).Log(
		"msg", "request failed",
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"status", status,
		"err", err,
	)
	s.respondWithJSON(rw, status, resp)
}

// statusOf maps an error to the status returned to proxy clients
func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNoResult:
		return http.StatusNotFound
	case domain.KindRequestFailed, domain.KindDeserializeFailed, domain.KindAPIError, domain.KindConversionFailed:
		return http.StatusBadGateway
	}

	switch {
	case errors.Is(err, exchange.ErrUnknownCurrency):
		return http.StatusNotFound
	case errors.Is(err, exchange.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, exchange.ErrZeroRate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) respondWithJSON(rw http.ResponseWriter, code int, body interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	if err := json.NewEncoder(rw).Encode(body); err != nil {
		_ = level.Error(s.Logger).Log("msg", "failed json encoding", "err", err)
	}
}
