package export

import (
	"fmt"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/domain"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/forecasting"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// ForecastWorkbook lays out predictions on a "Forecast" sheet and fit
// metrics on a "Metrics" sheet.
func ForecastWorkbook(result *domain.ForecastResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(defaultSheet, "Forecast"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	rows := [][]interface{}{{"Date", "Predicted Demand", "Lower Bound", "Upper Bound"}}
	for _, p := range result.Predictions {
		row := []interface{}{p.Date, p.PredictedDemand, nil, nil}
		if p.LowerBound != nil {
			row[2] = *p.LowerBound
		}
		if p.UpperBound != nil {
			row[3] = *p.UpperBound
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, "Forecast", rows); err != nil {
		f.Close()
		return nil, err
	}

	m := result.ModelMetrics
	h := result.HistorySummary
	if err := addSheet(f, "Metrics", [][]interface{}{
		{"Metric", "Value"},
		{"mae", m.MAE},
		{"mse", m.MSE},
		{"r2", m.R2},
		{"historical_mean", m.HistoricalMean},
		{"historical_std", m.HistoricalStd},
		{"trend", m.Trend},
		{"days_analyzed", h.DaysAnalyzed},
		{"mean_demand", h.MeanDemand},
		{"max_demand", h.MaxDemand},
		{"min_demand", h.MinDemand},
	}); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// OptimizationWorkbook writes a reorder recommendation as key/value rows
// followed by its suggestions.
func OptimizationWorkbook(result *domain.OptimizationResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(defaultSheet, "Optimization"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Field", "Value"},
		{"recommended_reorder_point", result.ReorderPoint},
		{"recommended_order_quantity", result.OrderQuantity},
		{"safety_stock", result.SafetyStock},
		{"current_status", result.Status.Label()},
		{"risk_level", string(result.RiskLevel)},
		{"days_of_stock", result.DaysOfStock},
		{"avg_daily_demand", result.Metrics.AvgDailyDemand},
		{"demand_variability", result.Metrics.DemandVariability},
		{"service_level", result.Metrics.ServiceLevel},
		{"lead_time_days", result.Metrics.LeadTimeDays},
		{},
		{"Suggestions"},
	}
	for _, s := range result.Suggestions {
		rows = append(rows, []interface{}{s})
	}

	if err := writeRows(f, "Optimization", rows); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// SeasonalWorkbook writes monthly and weekly indices in calendar order plus
// the peak/low ranking and recommendations.
func SeasonalWorkbook(profile *domain.SeasonalProfile) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(defaultSheet, "Monthly"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	monthly := [][]interface{}{{"Month", "Index"}}
	for _, month := range forecasting.MonthOrder() {
		monthly = append(monthly, []interface{}{month, profile.MonthlyIndices[month]})
	}
	if err := writeRows(f, "Monthly", monthly); err != nil {
		f.Close()
		return nil, err
	}

	weekly := [][]interface{}{{"Day", "Index"}}
	for _, day := range forecasting.WeekdayOrder() {
		weekly = append(weekly, []interface{}{day, profile.WeeklyIndices[day]})
	}
	if err := addSheet(f, "Weekly", weekly); err != nil {
		f.Close()
		return nil, err
	}

	summary := [][]interface{}{{"Rank", "Peak Month", "Peak Index", "Low Month", "Low Index"}}
	for i := 0; i < len(profile.PeakSeasons) || i < len(profile.LowSeasons); i++ {
		row := []interface{}{i + 1, nil, nil, nil, nil}
		if i < len(profile.PeakSeasons) {
			row[1], row[2] = profile.PeakSeasons[i].Month, profile.PeakSeasons[i].Index
		}
		if i < len(profile.LowSeasons) {
			row[3], row[4] = profile.LowSeasons[i].Month, profile.LowSeasons[i].Index
		}
		summary = append(summary, row)
	}
	summary = append(summary,
		[]interface{}{},
		[]interface{}{"Annual Growth Rate (%)", profile.TrendAnalysis.AnnualGrowthRate},
		[]interface{}{"Trend Direction", string(profile.TrendAnalysis.Direction)},
		[]interface{}{},
		[]interface{}{"Recommendations"},
	)
	for _, r := range profile.Recommendations {
		summary = append(summary, []interface{}{r})
	}
	if err := addSheet(f, "Summary", summary); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// Save writes the workbook to path and closes it.
func Save(f *excelize.File, path string) error {
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func addSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d to sheet %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
