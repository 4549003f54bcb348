package handlers

import (
	"fmt"
	"net/http"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/domain"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultForecastDays = 30
	defaultLeadTimeDays = 7
	defaultServiceLevel = 0.95
	defaultYears        = 2
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

type demandRequest struct {
	ProductID         string `json:"product_id" binding:"required"`
	TenantID          string `json:"tenant_id" binding:"required"`
	ForecastDays      *int   `json:"forecast_days" binding:"omitempty,min=1,max=365"`
	IncludeConfidence *bool  `json:"include_confidence"`
}

type demandResponse struct {
	ProductID           string                 `json:"product_id"`
	ForecastDays        int                    `json:"forecast_days"`
	Predictions         []domain.ForecastPoint `json:"predictions"`
	ConfidenceIntervals []domain.ForecastPoint `json:"confidence_intervals"`
	ModelMetrics        domain.ModelMetrics    `json:"model_metrics"`
	HistorySummary      domain.HistorySummary  `json:"history_summary"`
}

type stockRequest struct {
	ProductID      string   `json:"product_id" binding:"required"`
	TenantID       string   `json:"tenant_id" binding:"required"`
	CurrentStock   *float64 `json:"current_stock" binding:"required"`
	LeadTimeDays   *int     `json:"lead_time_days" binding:"omitempty,min=1,max=90"`
	ServiceLevel   *float64 `json:"service_level" binding:"omitempty,min=0,max=1"`
	AvgDailyDemand *float64 `json:"avg_daily_demand" binding:"omitempty,min=0"`
	DemandStd      *float64 `json:"demand_std" binding:"omitempty,min=0"`
}

type stockResponse struct {
	ProductID string `json:"product_id"`
	*domain.OptimizationResult
}

type seasonalRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	TenantID  string `json:"tenant_id" binding:"required"`
	Years     *int   `json:"years" binding:"omitempty,min=1,max=5"`
}

type seasonalResponse struct {
	ProductID           string `json:"product_id"`
	AnalysisPeriodYears int    `json:"analysis_period_years"`
	*domain.SeasonalProfile
}

type bulkRequest struct {
	ProductIDs   []string `json:"product_ids" binding:"required,min=1"`
	TenantID     string   `json:"tenant_id" binding:"required"`
	ForecastDays *int     `json:"forecast_days" binding:"omitempty,min=1,max=90"`
}

// ForecastDemand handles POST /api/v1/forecast/demand
func (h *ForecastHandler) ForecastDemand(c *gin.Context) {
	var req demandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	productID, tenantID, ok := parseIDs(c, req.ProductID, req.TenantID)
	if !ok {
		return
	}

	days := intOr(req.ForecastDays, defaultForecastDays)
	includeConfidence := true
	if req.IncludeConfidence != nil {
		includeConfidence = *req.IncludeConfidence
	}

	log.Info().Str("product_id", productID.String()).Int("forecast_days", days).Msg("forecasting demand")

	result, err := h.service.ForecastDemand(c.Request.Context(), service.DemandRequest{
		ProductID:         productID,
		TenantID:          tenantID,
		ForecastDays:      days,
		IncludeConfidence: includeConfidence,
	})
	if err != nil {
		internalError(c, "failed to generate forecast", err)
		return
	}

	resp := demandResponse{
		ProductID:      productID.String(),
		ForecastDays:   days,
		Predictions:    result.Predictions,
		ModelMetrics:   result.ModelMetrics,
		HistorySummary: result.HistorySummary,
	}
	if includeConfidence {
		resp.ConfidenceIntervals = result.Predictions
	}

	c.JSON(http.StatusOK, resp)
}

// OptimizeStock handles POST /api/v1/forecast/stock-optimization
func (h *ForecastHandler) OptimizeStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	productID, tenantID, ok := parseIDs(c, req.ProductID, req.TenantID)
	if !ok {
		return
	}

	serviceLevel := defaultServiceLevel
	if req.ServiceLevel != nil {
		serviceLevel = *req.ServiceLevel
	}

	log.Info().Str("product_id", productID.String()).Msg("optimizing stock")

	result, err := h.service.OptimizeStock(c.Request.Context(), service.StockRequest{
		ProductID:      productID,
		TenantID:       tenantID,
		CurrentStock:   *req.CurrentStock,
		LeadTimeDays:   intOr(req.LeadTimeDays, defaultLeadTimeDays),
		ServiceLevel:   serviceLevel,
		AvgDailyDemand: req.AvgDailyDemand,
		DemandStd:      req.DemandStd,
	})
	if err != nil {
		internalError(c, "failed to optimize stock", err)
		return
	}

	c.JSON(http.StatusOK, stockResponse{ProductID: productID.String(), OptimizationResult: result})
}

// SeasonalPatterns handles POST /api/v1/forecast/seasonal-patterns
func (h *ForecastHandler) SeasonalPatterns(c *gin.Context) {
	var req seasonalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	productID, tenantID, ok := parseIDs(c, req.ProductID, req.TenantID)
	if !ok {
		return
	}

	years := intOr(req.Years, defaultYears)

	log.Info().Str("product_id", productID.String()).Int("years", years).Msg("analyzing seasonal patterns")

	profile, err := h.service.SeasonalPatterns(c.Request.Context(), service.SeasonalRequest{
		ProductID: productID,
		TenantID:  tenantID,
		Years:     years,
	})
	if err != nil {
		internalError(c, "failed to analyze seasonal patterns", err)
		return
	}

	c.JSON(http.StatusOK, seasonalResponse{
		ProductID:           productID.String(),
		AnalysisPeriodYears: years,
		SeasonalProfile:     profile,
	})
}

// BulkForecast handles POST /api/v1/forecast/bulk-forecast
func (h *ForecastHandler) BulkForecast(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		badRequest(c, "invalid tenant_id")
		return
	}

	productIDs := make([]uuid.UUID, 0, len(req.ProductIDs))
	for i, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, fmt.Sprintf("invalid product_ids[%d]", i))
			return
		}
		productIDs = append(productIDs, id)
	}

	result := h.service.BulkForecast(c.Request.Context(), service.BulkRequest{
		ProductIDs:   productIDs,
		TenantID:     tenantID,
		ForecastDays: intOr(req.ForecastDays, defaultForecastDays),
	})

	c.JSON(http.StatusOK, result)
}

// GetInsights handles GET /api/v1/forecast/insights
func (h *ForecastHandler) GetInsights(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Insights(c.Request.Context()))
}

func parseIDs(c *gin.Context, rawProduct, rawTenant string) (uuid.UUID, uuid.UUID, bool) {
	productID, err := uuid.Parse(rawProduct)
	if err != nil {
		badRequest(c, "invalid product_id")
		return uuid.Nil, uuid.Nil, false
	}
	tenantID, err := uuid.Parse(rawTenant)
	if err != nil {
		badRequest(c, "invalid tenant_id")
		return uuid.Nil, uuid.Nil, false
	}
	return productID, tenantID, true
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func internalError(c *gin.Context, message string, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
}
