package bancaditalia

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"go-bancaditalia/domain"
)

// loggingService decorates a bancaditalia.Service with logging
type loggingService struct {
	next   Service
	logger log.Logger
}

// NewLoggingService return a new logging service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) GetCurrencies(ctx context.Context) (currencies []domain.Currency, err error) {
	defer func(begin time.Time) {
		s.log(err,
			"method", "get_currencies",
			"count", len(currencies),
			"took", time.Since(begin),
		)
	}(time.Now())
	return s.next.GetCurrencies(ctx)
}

func (s *loggingService) GetLatestRates(ctx context.Context) (rates []domain.ExchangeRate, err error) {
	defer func(begin time.Time) {
		s.log(err,
			"method", "get_latest_rates",
			"count", len(rates),
			"took", time.Since(begin),
		)
	}(time.Now())
	return s.next.GetLatestRates(ctx)
}

func (s *loggingService) log(err error, keyvals ...interface{}) {
	if err != nil {
		keyvals = append(keyvals, "kind", domain.KindOf(err), "err", err)
		_ = level.Error(s.logger).Log(keyvals...)
		return
	}
	_ = level.Info(s.logger).Log(keyvals...)
}
