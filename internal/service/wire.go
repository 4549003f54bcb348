package service

import (
	"fmt"
	"time"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/cache"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/config"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/forecasting"
)

// NewFromConfig constructs the forecasting components from cfg and wires them
// into a ForecastService. A non-zero RandomSeed makes every run reproducible.
func NewFromConfig(cfg *config.Config, cacheImpl cache.ForecastCache, now func() time.Time) (*ForecastService, error) {
	if now == nil {
		now = time.Now
	}

	rnd := forecasting.NewDefaultSource()
	if cfg.Forecast.RandomSeed != 0 {
		rnd = forecasting.NewSeededSource(cfg.Forecast.RandomSeed)
	}

	alpha, beta := cfg.Forecast.Alpha, cfg.Forecast.Beta
	forecaster, err := forecasting.NewForecaster(forecasting.ForecasterOptions{
		Alpha:           &alpha,
		Beta:            &beta,
		ConfidenceLevel: cfg.Forecast.ConfidenceLevel,
		Random:          rnd,
		Now:             now,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid forecast config: %w", err)
	}
	optimizer := forecasting.NewStockOptimizer(forecasting.CostParams{
		OrderingCost:    cfg.Optimizer.OrderingCost,
		HoldingCostRate: cfg.Optimizer.HoldingCostRate,
		UnitCost:        cfg.Optimizer.UnitCost,
	}, rnd)
	analyzer := forecasting.NewSeasonalAnalyzer(rnd)

	return NewForecastService(forecaster, optimizer, analyzer, cacheImpl, Options{
		HistoryDays:     cfg.Forecast.HistoryDays,
		BulkHistoryDays: cfg.Forecast.BulkHistoryDays,
		BaseDemand:      cfg.Forecast.BaseDemand,
		BulkConcurrency: cfg.Forecast.BulkConcurrency,
		Now:             now,
	}), nil
}
