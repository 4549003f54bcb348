package forecasting

import (
	"context"
	"math"
	"time"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/domain"
)

// HistoryParams shapes a synthetic demand series.
type HistoryParams struct {
	Days              int
	BaseDemand        float64
	TrendPerDay       float64
	SeasonalAmplitude float64
	NoiseStd          float64
	WeeklyPattern     bool
}

// DefaultHistoryParams returns the generator settings used when no real
// sales history is available.
func DefaultHistoryParams(days int, baseDemand float64) HistoryParams {
	return HistoryParams{
		Days:              days,
		BaseDemand:        baseDemand,
		TrendPerDay:       0.5,
		SeasonalAmplitude: 20.0,
		NoiseStd:          15.0,
		WeeklyPattern:     true,
	}
}

// GenerateHistory builds a chronological daily series whose last point is end.
func GenerateHistory(p HistoryParams, end time.Time, rnd RandomSource) []domain.TimeSeriesPoint {
	if p.Days <= 0 {
		return []domain.TimeSeriesPoint{}
	}
	rnd = sourceOrDefault(rnd)

	start := end.AddDate(0, 0, -(p.Days - 1))
	history := make([]domain.TimeSeriesPoint, 0, p.Days)

	for i := 0; i < p.Days; i++ {
		date := start.AddDate(0, 0, i)
		dayOfWeek := isoWeekday(date)

		demand := p.BaseDemand + p.TrendPerDay*float64(i)

		if p.WeeklyPattern {
			if dayOfWeek < 5 {
				demand *= 1.1
			} else {
				demand *= 0.8
			}
		}

		demand += p.SeasonalAmplitude * math.Sin(2*math.Pi*float64(date.YearDay())/30)
		demand += normal(rnd, 0, p.NoiseStd)

		history = append(history, domain.TimeSeriesPoint{
			Date:      date.Format(dateLayout),
			Demand:    roundFloat(clampNonNegative(demand), 2),
			DayOfWeek: dayOfWeek,
		})
	}

	return history
}

// HistoryRequest identifies the series a HistoryProvider should return.
type HistoryRequest struct {
	ProductID  string
	TenantID   string
	Days       int
	BaseDemand float64
}

// HistoryProvider supplies the demand history a forecast is fitted on.
type HistoryProvider interface {
	History(ctx context.Context, req HistoryRequest) ([]domain.TimeSeriesPoint, error)
}

// SyntheticHistory fabricates history with GenerateHistory.
type SyntheticHistory struct {
	Random RandomSource
	Now    func() time.Time
}

// NewSyntheticHistory creates a provider drawing from rnd, anchored at now().
func NewSyntheticHistory(rnd RandomSource, now func() time.Time) *SyntheticHistory {
	if now == nil {
		now = time.Now
	}
	return &SyntheticHistory{Random: sourceOrDefault(rnd), Now: now}
}

func (s *SyntheticHistory) History(ctx context.Context, req HistoryRequest) ([]domain.TimeSeriesPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return GenerateHistory(DefaultHistoryParams(req.Days, req.BaseDemand), s.Now(), s.Random), nil
}

var _ HistoryProvider = (*SyntheticHistory)(nil)
