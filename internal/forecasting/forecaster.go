package forecasting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultAlpha           = 0.3
	DefaultBeta            = 0.1
	DefaultConfidenceLevel = 0.95
)

// z-scores for two-sided forecast bands
var confidenceZScores = map[float64]float64{
	0.90: 1.645,
	0.95: 1.96,
	0.99: 2.576,
}

// ErrInvalidSmoothing is returned for smoothing coefficients outside [0, 1].
var ErrInvalidSmoothing = errors.New("smoothing coefficient must be within [0, 1]")

// ForecasterOptions configures a Forecaster. Nil coefficients and a zero
// confidence level fall back to defaults; an explicit 0 coefficient is kept.
type ForecasterOptions struct {
	Alpha           *float64
	Beta            *float64
	ConfidenceLevel float64
	History         HistoryProvider
	Random          RandomSource
	Now             func() time.Time
}

// Forecaster predicts daily demand with Holt's double exponential smoothing.
type Forecaster struct {
	alpha           float64
	beta            float64
	confidenceLevel float64
	history         HistoryProvider
	rnd             RandomSource
	now             func() time.Time
}

// NewForecaster creates a forecaster. Without a history provider it fabricates
// synthetic history from the same random source.
func NewForecaster(opts ForecasterOptions) (*Forecaster, error) {
	f := &Forecaster{
		alpha:           DefaultAlpha,
		beta:            DefaultBeta,
		confidenceLevel: opts.ConfidenceLevel,
		history:         opts.History,
		rnd:             sourceOrDefault(opts.Random),
		now:             opts.Now,
	}
	if opts.Alpha != nil {
		if *opts.Alpha < 0 || *opts.Alpha > 1 {
			return nil, fmt.Errorf("alpha %v: %w", *opts.Alpha, ErrInvalidSmoothing)
		}
		f.alpha = *opts.Alpha
	}
	if opts.Beta != nil {
		if *opts.Beta < 0 || *opts.Beta > 1 {
			return nil, fmt.Errorf("beta %v: %w", *opts.Beta, ErrInvalidSmoothing)
		}
		f.beta = *opts.Beta
	}
	if f.confidenceLevel == 0 {
		f.confidenceLevel = DefaultConfidenceLevel
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.history == nil {
		f.history = NewSyntheticHistory(f.rnd, f.now)
	}
	return f, nil
}

// Alpha returns the level smoothing coefficient.
func (f *Forecaster) Alpha() float64 { return f.alpha }

// Beta returns the trend smoothing coefficient.
func (f *Forecaster) Beta() float64 { return f.beta }

// SmoothAndExtrapolate runs Holt's method over values and projects horizon
// periods ahead. Forecasts are clamped at zero.
func SmoothAndExtrapolate(values []float64, horizon int, alpha, beta float64) ([]float64, float64, float64) {
	if horizon < 0 {
		horizon = 0
	}
	forecasts := make([]float64, horizon)

	if len(values) < 2 {
		var level float64
		if len(values) == 1 {
			level = values[0]
		}
		for i := range forecasts {
			forecasts[i] = level
		}
		return forecasts, level, 0
	}

	level := values[0]
	trend := values[1] - values[0]

	for _, value := range values[1:] {
		newLevel := alpha*value + (1-alpha)*(level+trend)
		trend = beta*(newLevel-level) + (1-beta)*trend
		level = newLevel
	}

	for h := 1; h <= horizon; h++ {
		forecasts[h-1] = clampNonNegative(level + float64(h)*trend)
	}

	return forecasts, level, trend
}

// Interval is a rounded forecast band.
type Interval struct {
	Lower float64
	Upper float64
}

// ConfidenceIntervals returns one band per forecast. The margin widens with
// the horizon index; unknown confidence levels use the 95% z-score.
func ConfidenceIntervals(forecasts []float64, historicalStd, confidenceLevel float64) []Interval {
	z, ok := confidenceZScores[confidenceLevel]
	if !ok {
		z = confidenceZScores[DefaultConfidenceLevel]
	}

	intervals := make([]Interval, len(forecasts))
	for i, forecast := range forecasts {
		margin := z * historicalStd * math.Sqrt(1+0.1*float64(i))
		intervals[i] = Interval{
			Lower: roundFloat(clampNonNegative(forecast-margin), 2),
			Upper: roundFloat(forecast+margin, 2),
		}
	}
	return intervals
}

// ForecastParams are the inputs of a single forecast run.
type ForecastParams struct {
	ProductID         string
	TenantID          string
	ForecastDays      int
	IncludeConfidence bool
	HistoryDays       int
	BaseDemand        float64
}

// Forecast fits the history for p and predicts p.ForecastDays days starting tomorrow.
func (f *Forecaster) Forecast(ctx context.Context, p ForecastParams) (*domain.ForecastResult, error) {
	history, err := f.history.History(ctx, HistoryRequest{
		ProductID:  p.ProductID,
		TenantID:   p.TenantID,
		Days:       p.HistoryDays,
		BaseDemand: p.BaseDemand,
	})
	if err != nil {
		return nil, fmt.Errorf("load demand history: %w", err)
	}

	demand := make([]float64, len(history))
	for i, point := range history {
		demand[i] = point.Demand
	}

	var mean, std, maxDemand, minDemand float64
	if len(demand) > 0 {
		mean, std = stat.PopMeanStdDev(demand, nil)
		maxDemand = floats.Max(demand)
		minDemand = floats.Min(demand)
	}

	forecasts, _, trend := SmoothAndExtrapolate(demand, p.ForecastDays, f.alpha, f.beta)

	var intervals []Interval
	if p.IncludeConfidence {
		intervals = ConfidenceIntervals(forecasts, std, f.confidenceLevel)
	}

	start := f.now().AddDate(0, 0, 1)
	predictions := make([]domain.ForecastPoint, len(forecasts))
	for i, forecast := range forecasts {
		point := domain.ForecastPoint{
			Date:            start.AddDate(0, 0, i).Format(dateLayout),
			PredictedDemand: roundFloat(forecast, 2),
		}
		if intervals != nil {
			point.LowerBound = floatPtr(intervals[i].Lower)
			point.UpperBound = floatPtr(intervals[i].Upper)
		}
		predictions[i] = point
	}

	metrics := domain.ModelMetrics{
		HistoricalMean: roundFloat(mean, 2),
		HistoricalStd:  roundFloat(std, 2),
		Trend:          roundFloat(trend, 4),
	}
	if len(demand) > 0 {
		// fit quality is simulated, not measured against a holdout
		mae := std * 0.7
		metrics.MAE = roundFloat(mae, 2)
		metrics.MSE = roundFloat(mae*mae, 2)
		metrics.R2 = roundFloat(0.75+uniform(f.rnd, 0, 0.15), 3)
	}

	return &domain.ForecastResult{
		Predictions:  predictions,
		ModelMetrics: metrics,
		HistorySummary: domain.HistorySummary{
			DaysAnalyzed: p.HistoryDays,
			MeanDemand:   roundFloat(mean, 2),
			MaxDemand:    roundFloat(maxDemand, 2),
			MinDemand:    roundFloat(minDemand, 2),
		},
	}, nil
}
