package forecasting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestSmoothAndExtrapolateHorizonAndNonNegative(t *testing.T) {
	series := [][]float64{
		{10, 12, 14},
		{100, 50},
		{5, 80, 3, 40, 0, 0, 120},
		{0, 0, 0, 0},
		{30, 29, 28, 27, 26, 25},
	}
	coefficients := []float64{0, 0.1, 0.3, 0.5, 0.9, 1}

	for _, values := range series {
		for _, alpha := range coefficients {
			for _, beta := range coefficients {
				forecasts, _, _ := SmoothAndExtrapolate(values, 14, alpha, beta)
				require.Len(t, forecasts, 14)
				for _, f := range forecasts {
					assert.GreaterOrEqual(t, f, 0.0, "alpha=%v beta=%v values=%v", alpha, beta, values)
				}
			}
		}
	}
}

func TestSmoothAndExtrapolateLinearSeries(t *testing.T) {
	forecasts, level, trend := SmoothAndExtrapolate([]float64{10, 12, 14}, 3, 0.3, 0.1)

	assert.InDelta(t, 14.0, level, 1e-9)
	assert.InDelta(t, 2.0, trend, 1e-9)
	assert.InDeltaSlice(t, []float64{16, 18, 20}, forecasts, 1e-9)
}

func TestSmoothAndExtrapolateClampsFallingDemand(t *testing.T) {
	forecasts, _, trend := SmoothAndExtrapolate([]float64{100, 50}, 4, 0.3, 0.1)

	assert.InDelta(t, -50.0, trend, 1e-9)
	assert.Equal(t, []float64{0, 0, 0, 0}, forecasts)
}

func TestSmoothAndExtrapolateDegenerateInput(t *testing.T) {
	forecasts, level, trend := SmoothAndExtrapolate([]float64{42.5}, 5, 0.3, 0.1)
	assert.Equal(t, []float64{42.5, 42.5, 42.5, 42.5, 42.5}, forecasts)
	assert.Equal(t, 42.5, level)
	assert.Equal(t, 0.0, trend)

	forecasts, level, trend = SmoothAndExtrapolate(nil, 3, 0.3, 0.1)
	assert.Equal(t, []float64{0, 0, 0}, forecasts)
	assert.Equal(t, 0.0, level)
	assert.Equal(t, 0.0, trend)
}

func TestConfidenceIntervals(t *testing.T) {
	forecasts := []float64{100, 50, 10, 0, 75}
	intervals := ConfidenceIntervals(forecasts, 12.5, 0.95)
	require.Len(t, intervals, len(forecasts))

	prevMargin := -1.0
	for i, iv := range intervals {
		assert.LessOrEqual(t, iv.Lower, forecasts[i])
		assert.GreaterOrEqual(t, iv.Upper, forecasts[i])
		assert.GreaterOrEqual(t, iv.Lower, 0.0)

		margin := iv.Upper - forecasts[i]
		assert.GreaterOrEqual(t, margin, prevMargin)
		prevMargin = margin
	}
}

func TestConfidenceIntervalsZScores(t *testing.T) {
	tests := []struct {
		name  string
		level float64
		want  Interval
	}{
		{"90 percent", 0.90, Interval{Lower: 83.55, Upper: 116.45}},
		{"95 percent", 0.95, Interval{Lower: 80.4, Upper: 119.6}},
		{"99 percent", 0.99, Interval{Lower: 74.24, Upper: 125.76}},
		{"unknown falls back to 95", 0.5, Interval{Lower: 80.4, Upper: 119.6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfidenceIntervals([]float64{100}, 10, tt.level)
			require.Len(t, got, 1)
			assert.InDelta(t, tt.want.Lower, got[0].Lower, 1e-9)
			assert.InDelta(t, tt.want.Upper, got[0].Upper, 1e-9)
		})
	}
}

func TestGenerateHistoryTrendOnly(t *testing.T) {
	params := HistoryParams{Days: 5, BaseDemand: 100, TrendPerDay: 1}
	history := GenerateHistory(params, fixedNow, NewSeededSource(1))

	require.Len(t, history, 5)
	for i, point := range history {
		assert.InDelta(t, 100+float64(i), point.Demand, 1e-9)
	}
	assert.Equal(t, "2026-03-06", history[0].Date)
	assert.Equal(t, "2026-03-10", history[4].Date)
	// 2026-03-10 is a Tuesday
	assert.Equal(t, 1, history[4].DayOfWeek)
}

func TestGenerateHistoryWeeklyPattern(t *testing.T) {
	params := HistoryParams{Days: 7, BaseDemand: 100, WeeklyPattern: true}
	history := GenerateHistory(params, fixedNow, NewSeededSource(1))

	require.Len(t, history, 7)
	for _, point := range history {
		if point.DayOfWeek < 5 {
			assert.InDelta(t, 110.0, point.Demand, 1e-9, point.Date)
		} else {
			assert.InDelta(t, 80.0, point.Demand, 1e-9, point.Date)
		}
	}
}

func TestGenerateHistoryDefaults(t *testing.T) {
	history := GenerateHistory(DefaultHistoryParams(90, 100), fixedNow, NewSeededSource(7))

	require.Len(t, history, 90)
	prev := ""
	for _, point := range history {
		assert.GreaterOrEqual(t, point.Demand, 0.0)
		assert.GreaterOrEqual(t, point.DayOfWeek, 0)
		assert.LessOrEqual(t, point.DayOfWeek, 6)
		assert.Greater(t, point.Date, prev)
		prev = point.Date
	}

	assert.Empty(t, GenerateHistory(DefaultHistoryParams(0, 100), fixedNow, nil))
}

func TestForecastEndToEnd(t *testing.T) {
	f := newTestForecaster(t, ForecasterOptions{Random: NewSeededSource(42), Now: fixedClock})

	result, err := f.Forecast(context.Background(), ForecastParams{
		ForecastDays:      5,
		IncludeConfidence: true,
		HistoryDays:       10,
		BaseDemand:        100,
	})
	require.NoError(t, err)
	require.Len(t, result.Predictions, 5)

	want := []string{"2026-03-11", "2026-03-12", "2026-03-13", "2026-03-14", "2026-03-15"}
	for i, p := range result.Predictions {
		assert.Equal(t, want[i], p.Date)
		require.NotNil(t, p.LowerBound)
		require.NotNil(t, p.UpperBound)
		assert.LessOrEqual(t, *p.LowerBound, p.PredictedDemand)
		assert.GreaterOrEqual(t, *p.UpperBound, p.PredictedDemand)
	}

	m := result.ModelMetrics
	assert.GreaterOrEqual(t, m.R2, 0.75)
	assert.LessOrEqual(t, m.R2, 0.9)
	assert.InDelta(t, m.HistoricalStd*0.7, m.MAE, 0.01)
	assert.Equal(t, 10, result.HistorySummary.DaysAnalyzed)
	assert.LessOrEqual(t, result.HistorySummary.MinDemand, result.HistorySummary.MeanDemand)
	assert.GreaterOrEqual(t, result.HistorySummary.MaxDemand, result.HistorySummary.MeanDemand)
}

func TestForecastWithoutConfidence(t *testing.T) {
	f := newTestForecaster(t, ForecasterOptions{Random: NewSeededSource(3), Now: fixedClock})

	result, err := f.Forecast(context.Background(), ForecastParams{ForecastDays: 3, HistoryDays: 30, BaseDemand: 80})
	require.NoError(t, err)
	for _, p := range result.Predictions {
		assert.Nil(t, p.LowerBound)
		assert.Nil(t, p.UpperBound)
	}
}

func TestForecastIsReproducibleWithSeed(t *testing.T) {
	params := ForecastParams{ForecastDays: 7, IncludeConfidence: true, HistoryDays: 60, BaseDemand: 120}

	a, err := newTestForecaster(t, ForecasterOptions{Random: NewSeededSource(99), Now: fixedClock}).Forecast(context.Background(), params)
	require.NoError(t, err)
	b, err := newTestForecaster(t, ForecasterOptions{Random: NewSeededSource(99), Now: fixedClock}).Forecast(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestForecastEmptyHistory(t *testing.T) {
	f := newTestForecaster(t, ForecasterOptions{Random: NewSeededSource(1), Now: fixedClock})

	result, err := f.Forecast(context.Background(), ForecastParams{ForecastDays: 4, IncludeConfidence: true})
	require.NoError(t, err)
	require.Len(t, result.Predictions, 4)
	for _, p := range result.Predictions {
		assert.Equal(t, 0.0, p.PredictedDemand)
	}
	assert.Equal(t, domain.ModelMetrics{}, result.ModelMetrics)
}

type staticHistory struct {
	points []domain.TimeSeriesPoint
	err    error
}

func (s staticHistory) History(ctx context.Context, req HistoryRequest) ([]domain.TimeSeriesPoint, error) {
	return s.points, s.err
}

func TestForecastUsesHistoryProvider(t *testing.T) {
	provider := staticHistory{points: []domain.TimeSeriesPoint{
		{Date: "2026-03-08", Demand: 10},
		{Date: "2026-03-09", Demand: 12},
		{Date: "2026-03-10", Demand: 14},
	}}
	f := newTestForecaster(t, ForecasterOptions{History: provider, Random: NewSeededSource(1), Now: fixedClock})

	result, err := f.Forecast(context.Background(), ForecastParams{ForecastDays: 3, HistoryDays: 3})
	require.NoError(t, err)

	got := []float64{}
	for _, p := range result.Predictions {
		got = append(got, p.PredictedDemand)
	}
	assert.Equal(t, []float64{16, 18, 20}, got)
	assert.Equal(t, 2.0, result.ModelMetrics.Trend)
	assert.Equal(t, 12.0, result.HistorySummary.MeanDemand)
	assert.Equal(t, 14.0, result.HistorySummary.MaxDemand)
	assert.Equal(t, 10.0, result.HistorySummary.MinDemand)
}

func TestForecastHistoryError(t *testing.T) {
	boom := errors.New("warehouse offline")
	f := newTestForecaster(t, ForecasterOptions{History: staticHistory{err: boom}})

	_, err := f.Forecast(context.Background(), ForecastParams{ForecastDays: 3, HistoryDays: 3})
	assert.ErrorIs(t, err, boom)
}

func TestSyntheticHistoryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSyntheticHistory(NewSeededSource(1), fixedClock).History(ctx, HistoryRequest{Days: 10, BaseDemand: 100})
	assert.ErrorIs(t, err, context.Canceled)
}

func newTestForecaster(t *testing.T, opts ForecasterOptions) *Forecaster {
	t.Helper()
	f, err := NewForecaster(opts)
	require.NoError(t, err)
	return f
}

func coefficient(v float64) *float64 { return &v }

func TestNewForecasterDefaults(t *testing.T) {
	f := newTestForecaster(t, ForecasterOptions{})
	assert.Equal(t, DefaultAlpha, f.Alpha())
	assert.Equal(t, DefaultBeta, f.Beta())
}

func TestNewForecasterKeepsZeroCoefficients(t *testing.T) {
	provider := staticHistory{points: []domain.TimeSeriesPoint{
		{Demand: 10}, {Demand: 20}, {Demand: 25}, {Demand: 27}, {Demand: 28},
	}}

	// beta 0 freezes the initial trend of 10
	f := newTestForecaster(t, ForecasterOptions{Alpha: coefficient(0.5), Beta: coefficient(0), History: provider, Now: fixedClock})
	assert.Equal(t, 0.0, f.Beta())

	result, err := f.Forecast(context.Background(), ForecastParams{ForecastDays: 2, HistoryDays: 5})
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.ModelMetrics.Trend)
	assert.Equal(t, 45.13, result.Predictions[0].PredictedDemand)
	assert.Equal(t, 55.13, result.Predictions[1].PredictedDemand)

	// alpha 0 ignores observations and walks the level along the trend
	f = newTestForecaster(t, ForecasterOptions{Alpha: coefficient(0), Beta: coefficient(0.2), History: provider, Now: fixedClock})
	assert.Equal(t, 0.0, f.Alpha())

	result, err = f.Forecast(context.Background(), ForecastParams{ForecastDays: 1, HistoryDays: 5})
	require.NoError(t, err)
	assert.Equal(t, 60.0, result.Predictions[0].PredictedDemand)
}

func TestNewForecasterRejectsOutOfRangeCoefficients(t *testing.T) {
	tests := []struct {
		name string
		opts ForecasterOptions
	}{
		{"alpha above one", ForecasterOptions{Alpha: coefficient(1.5)}},
		{"alpha negative", ForecasterOptions{Alpha: coefficient(-0.1)}},
		{"beta above one", ForecasterOptions{Beta: coefficient(1.01)}},
		{"beta negative", ForecasterOptions{Beta: coefficient(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewForecaster(tt.opts)
			assert.ErrorIs(t, err, ErrInvalidSmoothing)
			assert.Nil(t, f)
		})
	}

	f, err := NewForecaster(ForecasterOptions{Alpha: coefficient(1), Beta: coefficient(1)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.Alpha())
}
