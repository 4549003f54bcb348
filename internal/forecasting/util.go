package forecasting

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// isoWeekday maps time.Weekday onto 0=Monday ... 6=Sunday.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func clampNonNegative(v float64) float64 {
	return math.Max(0, v)
}

func floatPtr(v float64) *float64 {
	return &v
}
