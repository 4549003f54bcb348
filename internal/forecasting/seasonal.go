package forecasting

import (
	"fmt"
	"sort"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/domain"
)

type periodIndex struct {
	name  string
	index float64
}

// Base monthly seasonality, calendar order.
var baseMonthlyIndices = []periodIndex{
	{"January", 0.85},
	{"February", 0.88},
	{"March", 0.95},
	{"April", 1.00},
	{"May", 1.02},
	{"June", 0.95},
	{"July", 0.90},
	{"August", 1.10},
	{"September", 1.25},
	{"October", 1.15},
	{"November", 1.20},
	{"December", 1.30},
}

var weeklyIndices = []periodIndex{
	{"Monday", 1.05},
	{"Tuesday", 1.10},
	{"Wednesday", 1.08},
	{"Thursday", 1.12},
	{"Friday", 1.15},
	{"Saturday", 0.75},
	{"Sunday", 0.70},
}

const (
	monthlyJitter  = 0.05
	seasonsToRank  = 3
	minAnnualTrend = 0.02
	maxAnnualTrend = 0.08
)

// SeasonalAnalyzer derives monthly and weekly demand seasonality.
type SeasonalAnalyzer struct {
	rnd RandomSource
}

// NewSeasonalAnalyzer creates a new seasonal analyzer
func NewSeasonalAnalyzer(rnd RandomSource) *SeasonalAnalyzer {
	return &SeasonalAnalyzer{rnd: sourceOrDefault(rnd)}
}

// Profile builds the seasonal profile. years does not change the computation yet.
func (a *SeasonalAnalyzer) Profile(years int) *domain.SeasonalProfile {
	monthly := make([]periodIndex, len(baseMonthlyIndices))
	for i, base := range baseMonthlyIndices {
		monthly[i] = periodIndex{
			name:  base.name,
			index: base.index + uniform(a.rnd, -monthlyJitter, monthlyJitter),
		}
	}

	peaks := rankSeasons(monthly, func(x, y float64) bool { return x > y })
	lows := rankSeasons(monthly, func(x, y float64) bool { return x < y })

	monthlyMap := make(map[string]float64, len(monthly))
	for _, m := range monthly {
		monthlyMap[m.name] = roundFloat(m.index, 2)
	}

	weeklyMap := make(map[string]float64, len(weeklyIndices))
	for _, d := range weeklyIndices {
		weeklyMap[d.name] = d.index
	}

	growth := uniform(a.rnd, minAnnualTrend, maxAnnualTrend)
	direction := domain.TrendIncreasing
	if growth <= 0 {
		direction = domain.TrendDecreasing
	}
	growthPct := roundFloat(growth*100, 1)

	return &domain.SeasonalProfile{
		SeasonalPatterns: []domain.SeasonalPattern{
			{Type: "monthly", Description: "Monthly demand patterns", Indices: monthlyMap},
			{Type: "weekly", Description: "Weekly demand patterns", Indices: weeklyMap},
		},
		MonthlyIndices: monthlyMap,
		WeeklyIndices:  weeklyMap,
		PeakSeasons:    peaks,
		LowSeasons:     lows,
		TrendAnalysis: domain.TrendAnalysis{
			AnnualGrowthRate: growthPct,
			Direction:        direction,
		},
		Recommendations: []string{
			fmt.Sprintf("Peak demand expected in %s (index: %.2f)", peaks[0].Month, peaks[0].Index),
			fmt.Sprintf("Consider building inventory before %s", peaks[0].Month),
			fmt.Sprintf("Lowest demand in %s - plan promotions", lows[0].Month),
			fmt.Sprintf("Annual growth trend: %.1f%%", growthPct),
		},
	}
}

// MonthOrder returns month names in calendar order.
func MonthOrder() []string {
	names := make([]string, len(baseMonthlyIndices))
	for i, m := range baseMonthlyIndices {
		names[i] = m.name
	}
	return names
}

// WeekdayOrder returns day names Monday first.
func WeekdayOrder() []string {
	names := make([]string, len(weeklyIndices))
	for i, d := range weeklyIndices {
		names[i] = d.name
	}
	return names
}

func rankSeasons(months []periodIndex, less func(x, y float64) bool) []domain.SeasonIndex {
	sorted := append([]periodIndex(nil), months...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i].index, sorted[j].index) })

	n := seasonsToRank
	if len(sorted) < n {
		n = len(sorted)
	}

	ranked := make([]domain.SeasonIndex, n)
	for i := 0; i < n; i++ {
		ranked[i] = domain.SeasonIndex{Month: sorted[i].name, Index: roundFloat(sorted[i].index, 2)}
	}
	return ranked
}
