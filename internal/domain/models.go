package domain

// TimeSeriesPoint represents a single day of observed demand
type TimeSeriesPoint struct {
	Date      string  `json:"date"`
	Demand    float64 `json:"demand"`
	DayOfWeek int     `json:"day_of_week"`
}

// ForecastPoint represents the predicted demand for one future day
type ForecastPoint struct {
	Date            string   `json:"date"`
	PredictedDemand float64  `json:"predicted_demand"`
	LowerBound      *float64 `json:"lower_bound,omitempty"`
	UpperBound      *float64 `json:"upper_bound,omitempty"`
}

// ModelMetrics holds fit statistics reported alongside a forecast
type ModelMetrics struct {
	MAE            float64 `json:"mae"`
	MSE            float64 `json:"mse"`
	R2             float64 `json:"r2"`
	HistoricalMean float64 `json:"historical_mean"`
	HistoricalStd  float64 `json:"historical_std"`
	Trend          float64 `json:"trend"`
}

// HistorySummary describes the history a forecast was fitted on
type HistorySummary struct {
	DaysAnalyzed int     `json:"days_analyzed"`
	MeanDemand   float64 `json:"mean_demand"`
	MaxDemand    float64 `json:"max_demand"`
	MinDemand    float64 `json:"min_demand"`
}

// ForecastResult is the output of a single demand forecast
type ForecastResult struct {
	Predictions    []ForecastPoint `json:"predictions"`
	ModelMetrics   ModelMetrics    `json:"model_metrics"`
	HistorySummary HistorySummary  `json:"history_summary"`
}

// OptimizationMetrics echoes the demand inputs an optimization was based on
type OptimizationMetrics struct {
	AvgDailyDemand    float64 `json:"avg_daily_demand"`
	DemandVariability float64 `json:"demand_variability"`
	ServiceLevel      float64 `json:"service_level"`
	LeadTimeDays      int     `json:"lead_time_days"`
}

// OptimizationResult is the reorder recommendation for one product
type OptimizationResult struct {
	ReorderPoint  float64             `json:"recommended_reorder_point"`
	OrderQuantity float64             `json:"recommended_order_quantity"`
	SafetyStock   float64             `json:"safety_stock"`
	Status        StockStatus         `json:"current_status"`
	RiskLevel     RiskLevel           `json:"risk_level"`
	DaysOfStock   float64             `json:"days_of_stock"`
	Suggestions   []string            `json:"suggestions"`
	Metrics       OptimizationMetrics `json:"metrics"`
}

// SeasonIndex pairs a month with its seasonality index
type SeasonIndex struct {
	Month string  `json:"month"`
	Index float64 `json:"index"`
}

// SeasonalPattern is one family of seasonality indices (monthly or weekly)
type SeasonalPattern struct {
	Type        string             `json:"type"`
	Description string             `json:"description"`
	Indices     map[string]float64 `json:"indices"`
}

// TrendAnalysis describes the long-run demand direction
type TrendAnalysis struct {
	AnnualGrowthRate float64        `json:"annual_growth_rate"`
	Direction        TrendDirection `json:"trend_direction"`
}

// SeasonalProfile is the full output of a seasonal analysis
type SeasonalProfile struct {
	SeasonalPatterns []SeasonalPattern  `json:"seasonal_patterns"`
	MonthlyIndices   map[string]float64 `json:"seasonality_indices"`
	WeeklyIndices    map[string]float64 `json:"weekly_indices"`
	PeakSeasons      []SeasonIndex      `json:"peak_seasons"`
	LowSeasons       []SeasonIndex      `json:"low_seasons"`
	TrendAnalysis    TrendAnalysis      `json:"trend_analysis"`
	Recommendations  []string           `json:"recommendations"`
}

// Batch item statuses.
const (
	BulkStatusSuccess = "success"
	BulkStatusError   = "error"
)

// BulkForecastItem summarizes the forecast for one product in a batch.
// The numeric fields are set on success only, so a zero trend or demand is
// still emitted while failed items carry just the error.
type BulkForecastItem struct {
	ProductID             string   `json:"product_id"`
	ForecastDays          *int     `json:"forecast_days,omitempty"`
	TotalForecastedDemand *float64 `json:"total_forecasted_demand,omitempty"`
	AvgDailyDemand        *float64 `json:"avg_daily_demand,omitempty"`
	Trend                 *float64 `json:"trend,omitempty"`
	Status                string   `json:"status"`
	Error                 string   `json:"error,omitempty"`
}

// NewBulkForecastSuccess builds a successful batch item.
func NewBulkForecastSuccess(productID string, days int, total, avg, trend float64) BulkForecastItem {
	return BulkForecastItem{
		ProductID:             productID,
		ForecastDays:          &days,
		TotalForecastedDemand: &total,
		AvgDailyDemand:        &avg,
		Trend:                 &trend,
		Status:                BulkStatusSuccess,
	}
}

// NewBulkForecastFailure builds a failed batch item.
func NewBulkForecastFailure(productID string, err error) BulkForecastItem {
	return BulkForecastItem{
		ProductID: productID,
		Status:    BulkStatusError,
		Error:     err.Error(),
	}
}

// BulkForecastResult aggregates a batch of per-product forecasts
type BulkForecastResult struct {
	TenantID      string             `json:"tenant_id"`
	ForecastDays  int                `json:"forecast_days"`
	TotalProducts int                `json:"total_products"`
	Successful    int                `json:"successful"`
	Failed        int                `json:"failed"`
	Results       []BulkForecastItem `json:"results"`
}

// Insight is a single inventory recommendation shown on dashboards
type Insight struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

// InsightSummary counts insights per priority
type InsightSummary struct {
	HighPriority   int `json:"high_priority"`
	MediumPriority int `json:"medium_priority"`
	LowPriority    int `json:"low_priority"`
}

// InsightReport is the payload returned by the insights endpoint
type InsightReport struct {
	GeneratedAt   string         `json:"generated_at"`
	InsightsCount int            `json:"insights_count"`
	Insights      []Insight      `json:"insights"`
	Summary       InsightSummary `json:"summary"`
}
