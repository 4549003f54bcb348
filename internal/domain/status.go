package domain

// StockStatus classifies current stock against the reorder point.
type StockStatus string

const (
	StatusCritical      StockStatus = "critical"
	StatusReorderNeeded StockStatus = "reorder_needed"
	StatusAdequate      StockStatus = "adequate"
	StatusOverstocked   StockStatus = "overstocked"
)

// RiskLevel is the stock-out risk attached to a StockStatus.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// TrendDirection is the sign of the annual demand trend.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
)

var stockStatusLabels = map[StockStatus]string{
	StatusCritical:      "Critical",
	StatusReorderNeeded: "Reorder Needed",
	StatusAdequate:      "Adequate",
	StatusOverstocked:   "Overstocked",
}

var stockStatusRisk = map[StockStatus]RiskLevel{
	StatusCritical:      RiskHigh,
	StatusReorderNeeded: RiskMedium,
	StatusAdequate:      RiskLow,
	StatusOverstocked:   RiskLow,
}

// Label returns a human-readable label for a stock status.
func (s StockStatus) Label() string {
	if label, ok := stockStatusLabels[s]; ok {
		return label
	}

	return "Unknown"
}

// Risk returns the risk level associated with a stock status.
func (s StockStatus) Risk() RiskLevel {
	if risk, ok := stockStatusRisk[s]; ok {
		return risk
	}

	return RiskLow
}
