package main

import (
	"context"
	"errors"
	nhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"go-bancaditalia/bancaditalia"
	"go-bancaditalia/config"
	"go-bancaditalia/exchange"
	"go-bancaditalia/http"
)

func main() {
	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg, err := config.Load(".env")
	if err != nil {
		_ = level.Error(logger).Log("msg", "loading config", "err", err)
		os.Exit(1)
	}
	logger = level.NewFilter(logger, allowLevel(cfg.Log.Level))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ratesService := bancaditalia.NewService(
		bancaditalia.WithBaseURL(cfg.BancaDItalia.URL),
		bancaditalia.WithLanguage(cfg.BancaDItalia.Lang),
	)
	ratesService = bancaditalia.NewLoggingService(log.With(logger, "component", "bancaditalia_rest"), ratesService)
	ratesService = bancaditalia.NewInstrumentingService(bancaditalia.NewMetrics(registry), ratesService)

	convertService := exchange.NewService(ratesService)
	convertService = exchange.NewLoggingService(log.With(logger, "component", "convert"), convertService)

	handler := http.NewServer(ratesService, convertService, log.With(logger, "component", "http"), registry)
	srv := &nhttp.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		_ = level.Info(logger).Log("msg", "starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nhttp.ErrServerClosed) {
			_ = level.Error(logger).Log("msg", "server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	_ = level.Info(logger).Log("msg", "shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		_ = level.Error(logger).Log("msg", "server shutdown failed", "err", err)
	}
}

func allowLevel(name string) level.Option {
	switch name {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	}
	return level.AllowInfo()
}
