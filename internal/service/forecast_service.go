package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/cache"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/domain"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/forecasting"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultHistoryDays     = 90
	defaultBulkHistoryDays = 60
	defaultBaseDemand      = 100.0
	defaultBulkConcurrency = 8
)

// Options tunes how the service drives the forecasting components.
type Options struct {
	HistoryDays     int
	BulkHistoryDays int
	BaseDemand      float64
	BulkConcurrency int
	Now             func() time.Time
}

type DemandRequest struct {
	ProductID         uuid.UUID
	TenantID          uuid.UUID
	ForecastDays      int
	IncludeConfidence bool
}

type StockRequest struct {
	ProductID      uuid.UUID
	TenantID       uuid.UUID
	CurrentStock   float64
	LeadTimeDays   int
	ServiceLevel   float64
	AvgDailyDemand *float64
	DemandStd      *float64
}

type SeasonalRequest struct {
	ProductID uuid.UUID
	TenantID  uuid.UUID
	Years     int
}

type BulkRequest struct {
	ProductIDs   []uuid.UUID
	TenantID     uuid.UUID
	ForecastDays int
}

type ForecastService struct {
	forecaster *forecasting.Forecaster
	optimizer  *forecasting.StockOptimizer
	seasonal   *forecasting.SeasonalAnalyzer
	cache      cache.ForecastCache
	opts       Options
}

func NewForecastService(
	forecaster *forecasting.Forecaster,
	optimizer *forecasting.StockOptimizer,
	seasonal *forecasting.SeasonalAnalyzer,
	cacheImpl cache.ForecastCache,
	opts Options,
) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = defaultHistoryDays
	}
	if opts.BulkHistoryDays <= 0 {
		opts.BulkHistoryDays = defaultBulkHistoryDays
	}
	if opts.BaseDemand <= 0 {
		opts.BaseDemand = defaultBaseDemand
	}
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = defaultBulkConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &ForecastService{
		forecaster: forecaster,
		optimizer:  optimizer,
		seasonal:   seasonal,
		cache:      cacheImpl,
		opts:       opts,
	}
}

// ForecastDemand returns the demand forecast for one product, served from the
// model cache when a fresh result exists. Cached results are scoped to the
// current day so prediction dates never lag behind the clock.
func (s *ForecastService) ForecastDemand(ctx context.Context, req DemandRequest) (*domain.ForecastResult, error) {
	key := cache.DemandKey{
		ProductID:         req.ProductID.String(),
		TenantID:          req.TenantID.String(),
		ForecastDays:      req.ForecastDays,
		IncludeConfidence: req.IncludeConfidence,
		AnchorDate:        s.opts.Now().Format(time.DateOnly),
	}

	if result, ok, err := s.cache.GetDemand(ctx, key); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get demand failed")
	}

	result, err := s.forecaster.Forecast(ctx, forecasting.ForecastParams{
		ProductID:         key.ProductID,
		TenantID:          key.TenantID,
		ForecastDays:      req.ForecastDays,
		IncludeConfidence: req.IncludeConfidence,
		HistoryDays:       s.opts.HistoryDays,
		BaseDemand:        s.opts.BaseDemand,
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetDemand(ctx, key, result); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set demand failed")
	}

	return result, nil
}

// OptimizeStock returns reorder recommendations for one product.
func (s *ForecastService) OptimizeStock(ctx context.Context, req StockRequest) (*domain.OptimizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.optimizer.Optimize(forecasting.OptimizeParams{
		CurrentStock:   req.CurrentStock,
		LeadTimeDays:   req.LeadTimeDays,
		ServiceLevel:   req.ServiceLevel,
		AvgDailyDemand: req.AvgDailyDemand,
		DemandStd:      req.DemandStd,
	})
}

// SeasonalPatterns returns the seasonal profile for one product.
func (s *ForecastService) SeasonalPatterns(ctx context.Context, req SeasonalRequest) (*domain.SeasonalProfile, error) {
	key := cache.SeasonalKey{
		ProductID: req.ProductID.String(),
		TenantID:  req.TenantID.String(),
		Years:     req.Years,
	}

	if profile, ok, err := s.cache.GetSeasonal(ctx, key); err == nil && ok {
		return profile, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get seasonal failed")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profile := s.seasonal.Profile(req.Years)

	if err := s.cache.SetSeasonal(ctx, key, profile); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set seasonal failed")
	}

	return profile, nil
}

// BulkForecast forecasts every product concurrently. A failing product is
// reported in its own entry and never aborts the batch; results keep the
// request order.
func (s *ForecastService) BulkForecast(ctx context.Context, req BulkRequest) *domain.BulkForecastResult {
	results := make([]domain.BulkForecastItem, len(req.ProductIDs))
	sem := semaphore.NewWeighted(int64(s.opts.BulkConcurrency))
	g, gctx := errgroup.WithContext(ctx)

	for i, productID := range req.ProductIDs {
		if err := sem.Acquire(gctx, 1); err != nil {
			results[i] = bulkErrorItem(productID, err)
			continue
		}

		g.Go(func() error {
			defer sem.Release(1)
			results[i] = s.bulkItem(gctx, productID, req.TenantID, req.ForecastDays)
			return nil
		})
	}
	_ = g.Wait()

	summary := &domain.BulkForecastResult{
		TenantID:      req.TenantID.String(),
		ForecastDays:  req.ForecastDays,
		TotalProducts: len(req.ProductIDs),
		Results:       results,
	}
	for _, item := range results {
		if item.Status == domain.BulkStatusSuccess {
			summary.Successful++
		}
	}
	summary.Failed = summary.TotalProducts - summary.Successful

	log.Info().
		Str("tenant_id", summary.TenantID).
		Int("products", summary.TotalProducts).
		Int("failed", summary.Failed).
		Msg("bulk forecast completed")

	return summary
}

func (s *ForecastService) bulkItem(ctx context.Context, productID, tenantID uuid.UUID, days int) (item domain.BulkForecastItem) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("product_id", productID.String()).Msg("bulk forecast item panicked")
			item = bulkErrorItem(productID, fmt.Errorf("forecast panicked: %v", r))
		}
	}()

	result, err := s.forecaster.Forecast(ctx, forecasting.ForecastParams{
		ProductID:    productID.String(),
		TenantID:     tenantID.String(),
		ForecastDays: days,
		HistoryDays:  s.opts.BulkHistoryDays,
		BaseDemand:   ProductBaseDemand(productID),
	})
	if err != nil {
		log.Error().Err(err).Str("product_id", productID.String()).Msg("bulk forecast item failed")
		return bulkErrorItem(productID, err)
	}

	var total float64
	for _, p := range result.Predictions {
		total += p.PredictedDemand
	}
	var avg float64
	if len(result.Predictions) > 0 {
		avg = total / float64(len(result.Predictions))
	}

	return domain.NewBulkForecastSuccess(
		productID.String(),
		days,
		math.Round(total),
		math.Round(avg*100)/100,
		result.ModelMetrics.Trend,
	)
}

func bulkErrorItem(productID uuid.UUID, err error) domain.BulkForecastItem {
	return domain.NewBulkForecastFailure(productID.String(), err)
}

// ProductBaseDemand spreads synthetic base demand over [50, 150) so products
// in a batch do not share one curve.
func ProductBaseDemand(productID uuid.UUID) float64 {
	h := fnv.New32a()
	h.Write([]byte(productID.String()))
	return 50 + float64(h.Sum32()%100)
}

var insightCatalogue = []domain.Insight{
	{
		Type:     "warning",
		Title:    "Stock Alert",
		Message:  "Several products approaching reorder point. Review stock levels for Electronics category.",
		Priority: "high",
		Category: "inventory",
	},
	{
		Type:     "trend",
		Title:    "Demand Surge Detected",
		Message:  "Electronics category showing 23% higher demand than seasonal average. Consider increasing safety stock.",
		Priority: "medium",
		Category: "demand",
	},
	{
		Type:     "seasonal",
		Title:    "Upcoming Peak Season",
		Message:  "Historical data indicates September demand surge. Plan inventory buildup by mid-August.",
		Priority: "medium",
		Category: "planning",
	},
	{
		Type:     "optimization",
		Title:    "Cost Saving Opportunity",
		Message:  "Office supplies showing overstock pattern. Consider reducing next order by 15% to optimize holding costs.",
		Priority: "low",
		Category: "cost",
	},
}

// Insights returns the inventory insight report.
func (s *ForecastService) Insights(ctx context.Context) *domain.InsightReport {
	insights := append([]domain.Insight(nil), insightCatalogue...)

	report := &domain.InsightReport{
		GeneratedAt:   s.opts.Now().UTC().Format(time.RFC3339),
		InsightsCount: len(insights),
		Insights:      insights,
	}
	for _, insight := range insights {
		switch insight.Priority {
		case "high":
			report.Summary.HighPriority++
		case "medium":
			report.Summary.MediumPriority++
		case "low":
			report.Summary.LowPriority++
		}
	}
	return report
}

// Ping reports whether the model cache is reachable. The server registers the
// service as its redis readiness check.
func (s *ForecastService) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
