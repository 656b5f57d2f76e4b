package bancaditalia

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go-bancaditalia/domain"
)

// Metrics collectors of an instrumented Service
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bancaditalia",
			Name:      "requests_total",
			Help:      "Banca d'Italia API calls by method and outcome.",
		}, []string{"method", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bancaditalia",
			Name:      "request_duration_seconds",
			Help:      "Duration of Banca d'Italia API calls including decoding.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

// instrumentingService decorates a bancaditalia.Service with prometheus metrics
type instrumentingService struct {
	next    Service
	metrics *Metrics
}

// NewInstrumentingService returns a new instrumenting Service
func NewInstrumentingService(metrics *Metrics, s Service) Service {
	return &instrumentingService{
		next:    s,
		metrics: metrics,
	}
}

func (s *instrumentingService) GetCurrencies(ctx context.Context) (currencies []domain.Currency, err error) {
	defer s.observe("get_currencies", time.Now(), &err)
	return s.next.GetCurrencies(ctx)
}

func (s *instrumentingService) GetLatestRates(ctx context.Context) (rates []domain.ExchangeRate, err error) {
	defer s.observe("get_latest_rates", time.Now(), &err)
	return s.next.GetLatestRates(ctx)
}

func (s *instrumentingService) observe(method string, begin time.Time, err *error) {
	s.metrics.Requests.WithLabelValues(method, outcome(*err)).Inc()
	s.metrics.Duration.WithLabelValues(method).Observe(time.Since(begin).Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := domain.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}
