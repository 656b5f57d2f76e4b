package main

import (
	"context"
	"os"
	"time"

	"github.com/go-kit/log"

	"go-bancaditalia/bancaditalia"
	"go-bancaditalia/domain"
)

func main() {

	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	boi := bancaditalia.NewService()

	rates, err := boi.GetLatestRates(ctx)
	if err != nil {
		_ = logger.Log("msg", "latest rates", "kind", domain.KindOf(err), "err", err)
		os.Exit(1)
	}

	for _, rate := range rates {
		_ = logger.Log(
			"msg", "exchange rate",
			"currency", rate.CurrencyCode(),
			"date", rate.Date(),
			"eur", rate.EURRate(),
			"usd", rate.USDRate(),
		)
	}
}
