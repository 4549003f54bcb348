package forecasting

import (
	"errors"
	"fmt"
	"math"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/domain"
)

// ErrZeroHoldingCost is returned when EOQ would divide by a zero holding cost.
var ErrZeroHoldingCost = errors.New("holding cost must be greater than zero")

// days of stock reported when there is no demand to consume it
const noDemandDaysOfStock = 999

var serviceLevelZScores = map[float64]float64{
	0.90: 1.28,
	0.95: 1.65,
	0.99: 2.33,
}

const defaultServiceLevelZ = 1.65

// CostParams are the inventory cost assumptions behind the EOQ.
type CostParams struct {
	OrderingCost    float64
	HoldingCostRate float64
	UnitCost        float64
}

// DefaultCostParams returns the standard EOQ cost assumptions.
func DefaultCostParams() CostParams {
	return CostParams{
		OrderingCost:    50.0,
		HoldingCostRate: 0.25,
		UnitCost:        10.0,
	}
}

// StockOptimizer calculates reorder recommendations from demand statistics.
type StockOptimizer struct {
	costs CostParams
	rnd   RandomSource
}

// NewStockOptimizer creates a new stock optimizer
func NewStockOptimizer(costs CostParams, rnd RandomSource) *StockOptimizer {
	return &StockOptimizer{
		costs: costs,
		rnd:   sourceOrDefault(rnd),
	}
}

// SafetyStock = z × σ(daily demand) × √lead time, rounded to whole units.
func SafetyStock(demandStd float64, leadTimeDays int, serviceLevel float64) float64 {
	z, ok := serviceLevelZScores[serviceLevel]
	if !ok {
		z = defaultServiceLevelZ
	}
	return math.Round(z * demandStd * math.Sqrt(float64(leadTimeDays)))
}

// ReorderPoint = (daily demand × lead time) + safety stock, rounded.
func ReorderPoint(avgDailyDemand float64, leadTimeDays int, safetyStock float64) float64 {
	return math.Round(avgDailyDemand*float64(leadTimeDays) + safetyStock)
}

// EconomicOrderQuantity = √(2 × annual demand × ordering cost / holding cost), rounded.
func EconomicOrderQuantity(annualDemand, orderingCost, holdingCostRate, unitCost float64) (float64, error) {
	holdingCost := unitCost * holdingCostRate
	if holdingCost == 0 {
		return 0, ErrZeroHoldingCost
	}
	return math.Round(math.Sqrt(2 * annualDemand * orderingCost / holdingCost)), nil
}

// OptimizeParams are the inputs of a stock optimization. Nil demand
// statistics are estimated.
type OptimizeParams struct {
	CurrentStock   float64
	LeadTimeDays   int
	ServiceLevel   float64
	AvgDailyDemand *float64
	DemandStd      *float64
}

// Optimize computes safety stock, reorder point and EOQ and classifies the
// current stock level against them.
func (o *StockOptimizer) Optimize(p OptimizeParams) (*domain.OptimizationResult, error) {
	// 1. Demand statistics; estimated until real sales history is wired in
	var avgDemand float64
	if p.AvgDailyDemand != nil {
		avgDemand = *p.AvgDailyDemand
	} else {
		avgDemand = uniform(o.rnd, 10, 50)
	}

	stdDemand := avgDemand * 0.3
	if p.DemandStd != nil {
		stdDemand = *p.DemandStd
	}

	// 2. Safety stock and reorder point
	safetyStock := SafetyStock(stdDemand, p.LeadTimeDays, p.ServiceLevel)
	reorderPoint := ReorderPoint(avgDemand, p.LeadTimeDays, safetyStock)

	// 3. Order quantity
	eoq, err := EconomicOrderQuantity(avgDemand*365, o.costs.OrderingCost, o.costs.HoldingCostRate, o.costs.UnitCost)
	if err != nil {
		return nil, fmt.Errorf("economic order quantity: %w", err)
	}

	// 4. Days of stock
	daysOfStock := float64(noDemandDaysOfStock)
	if avgDemand > 0 {
		daysOfStock = p.CurrentStock / avgDemand
	}

	// 5. Status
	status := classifyStock(p.CurrentStock, reorderPoint)

	return &domain.OptimizationResult{
		ReorderPoint:  reorderPoint,
		OrderQuantity: eoq,
		SafetyStock:   safetyStock,
		Status:        status,
		RiskLevel:     status.Risk(),
		DaysOfStock:   roundFloat(daysOfStock, 1),
		Suggestions:   stockSuggestions(status, eoq, reorderPoint, daysOfStock),
		Metrics: domain.OptimizationMetrics{
			AvgDailyDemand:    roundFloat(avgDemand, 2),
			DemandVariability: roundFloat(stdDemand, 2),
			ServiceLevel:      p.ServiceLevel,
			LeadTimeDays:      p.LeadTimeDays,
		},
	}, nil
}

func classifyStock(currentStock, reorderPoint float64) domain.StockStatus {
	switch {
	case currentStock <= reorderPoint*0.5:
		return domain.StatusCritical
	case currentStock <= reorderPoint:
		return domain.StatusReorderNeeded
	case currentStock <= reorderPoint*1.5:
		return domain.StatusAdequate
	default:
		return domain.StatusOverstocked
	}
}

func stockSuggestions(status domain.StockStatus, eoq, reorderPoint, daysOfStock float64) []string {
	var suggestions []string

	switch status {
	case domain.StatusCritical:
		suggestions = append(suggestions,
			"URGENT: Current stock critically low. Order immediately!",
			fmt.Sprintf("Recommended order quantity: %.0f units", eoq),
		)
	case domain.StatusReorderNeeded:
		suggestions = append(suggestions,
			"Stock has reached reorder point. Consider ordering soon.",
			fmt.Sprintf("Recommended order quantity: %.0f units", eoq),
		)
	case domain.StatusOverstocked:
		suggestions = append(suggestions,
			"Stock levels are high. Consider reducing next order.",
			"Review demand forecasts for potential changes.",
		)
	default:
		suggestions = append(suggestions,
			"Stock levels are adequate.",
			fmt.Sprintf("Plan next order when stock reaches %.0f units.", reorderPoint),
		)
	}

	return append(suggestions, fmt.Sprintf("Current days of stock: %.1f days", roundFloat(daysOfStock, 1)))
}
