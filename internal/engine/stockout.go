// internal/engine/stockout.go
package engine

import (
	"math"
	"sort"

	"github.com/tj309c/supply-signals/internal/domain"
)

// noDemandDays is the reported horizon for SKUs with zero daily demand. The
// tier already says "No Demand"; the number keeps JSON and CSV finite.
const noDemandDays = 9999

// PredictStockouts produces a RiskAssessment per canonical SKU: safety stock
// and reorder point from service-level math, days-until-stockout with and
// without open-PO coverage, a risk tier, and a 0-100 score for sorting.
func PredictStockouts(cfg Config, positions map[string]domain.InventoryPosition, demand map[string]domain.DemandRecord, leadTimes map[string]domain.LeadTimeStat, openPOQty map[string]float64, master map[string]domain.MasterRow) ([]domain.RiskAssessment, []domain.Issue) {
	log := domain.NewIssueLog("stockout_predictor")
	z := cfg.ZScore()

	skus := make([]string, 0, len(positions))
	for sku := range positions {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	defaulted := 0
	out := make([]domain.RiskAssessment, 0, len(skus))
	for _, sku := range skus {
		pos := positions[sku]
		d := demand[sku]
		daily := d.DailyDemand

		lt, ok := leadTimes[sku]
		if !ok {
			lt = DefaultLeadTime(cfg, sku)
			defaulted++
		}

		stddev := d.DemandStdDev
		if stddev <= 0 {
			stddev = 0.3 * daily
		}

		safetyStock := int(math.Round(z * math.Sqrt(lt.LeadTimeDays) * stddev))
		reorderPoint := int(math.Round(daily*lt.LeadTimeDays)) + safetyStock

		a := domain.RiskAssessment{
			SKU:            sku,
			Category:       master[sku].Category,
			OnHandQty:      pos.OnHandQty,
			InTransitQty:   pos.InTransitQty,
			AvailableStock: pos.OnHandQty + pos.InTransitQty,
			DailyDemand:    daily,
			DemandStdDev:   stddev,
			VendorName:     lt.VendorName,
			LeadTimeDays:   lt.LeadTimeDays,
			SafetyStock:    safetyStock,
			ReorderPoint:   reorderPoint,
			HasDemand:      daily > 0,
			OpenPOQty:      openPOQty[sku],
		}
		if a.Category == "" {
			a.Category = "Unknown"
		}
		a.HasPOCoverage = a.OpenPOQty > 0
		a.StockGap = float64(a.ReorderPoint) - a.AvailableStock
		a.BelowReorderPoint = a.AvailableStock < float64(a.ReorderPoint)

		if a.HasDemand {
			a.DaysUntilStockout = a.AvailableStock / daily
			a.DaysUntilStockoutWithPO = (a.AvailableStock + a.OpenPOQty) / daily
		} else {
			a.DaysUntilStockout = noDemandDays
			a.DaysUntilStockoutWithPO = noDemandDays
		}

		a.RiskLevel = riskTier(a.HasDemand, a.DaysUntilStockout)
		a.RiskScore = riskScore(a.HasDemand, a.DaysUntilStockout)

		urgent := a.RiskLevel == domain.RiskTierOutOfStock ||
			a.RiskLevel == domain.RiskTierCritical ||
			a.RiskLevel == domain.RiskTierHigh
		a.RequiresAction = urgent && (a.BelowReorderPoint || a.OpenPOQty < a.StockGap)

		if a.RequiresAction {
			qty := a.StockGap + daily*cfg.ReorderBufferDays
			if qty < 1 {
				qty = 1
			}
			a.RecommendedOrderQty = int(math.Round(qty))
		}

		out = append(out, a)
	}

	if defaulted > 0 {
		log.Warnf("%d SKU(s) without lead time history, default %v-day estimate used", defaulted, cfg.DefaultLeadTimeDays)
	}
	return out, log.All()
}

func riskTier(hasDemand bool, days float64) domain.RiskTier {
	if !hasDemand {
		return domain.RiskTierNoDemand
	}
	switch {
	case days <= 0:
		return domain.RiskTierOutOfStock
	case days <= 7:
		return domain.RiskTierCritical
	case days <= 14:
		return domain.RiskTierHigh
	case days <= 30:
		return domain.RiskTierModerate
	default:
		return domain.RiskTierLow
	}
}

func riskScore(hasDemand bool, days float64) int {
	if !hasDemand {
		return 0
	}
	switch {
	case days <= 0:
		return 100
	case days <= 7:
		return 90
	case days <= 14:
		return 70
	case days <= 30:
		return 50
	case days <= 60:
		return 30
	default:
		return 10
	}
}

// SortRiskAssessments orders results by risk score descending, then
// days-until-stockout ascending, then SKU for a stable, deterministic list.
func SortRiskAssessments(v []domain.RiskAssessment) {
	sort.Slice(v, func(i, j int) bool {
		if v[i].RiskScore != v[j].RiskScore {
			return v[i].RiskScore > v[j].RiskScore
		}
		if v[i].DaysUntilStockout != v[j].DaysUntilStockout {
			return v[i].DaysUntilStockout < v[j].DaysUntilStockout
		}
		return v[i].SKU < v[j].SKU
	})
}

// SummarizeRisk aggregates a risk run for dashboard consumption.
func SummarizeRisk(v []domain.RiskAssessment) domain.StockoutSummary {
	s := domain.StockoutSummary{TotalSKUs: len(v)}
	var daysSum float64
	var daysCount int
	for _, a := range v {
		switch a.RiskLevel {
		case domain.RiskTierOutOfStock:
			s.OutOfStockCount++
		case domain.RiskTierCritical:
			s.CriticalCount++
		case domain.RiskTierHigh:
			s.HighCount++
		case domain.RiskTierModerate:
			s.ModerateCount++
		}
		if a.RequiresAction {
			s.RequiresActionCount++
		}
		if a.BelowReorderPoint {
			s.BelowReorderCount++
		}
		if a.HasDemand && !a.HasPOCoverage {
			s.NoPOCoverageCount++
		}
		if a.HasDemand {
			daysSum += a.DaysUntilStockout
			daysCount++
		}
	}
	if daysCount > 0 {
		s.AvgDaysUntilStockout = daysSum / float64(daysCount)
	}
	return s
}

// TopCritical returns the n highest-risk SKUs that require action.
func TopCritical(v []domain.RiskAssessment, n int) []domain.RiskAssessment {
	sorted := make([]domain.RiskAssessment, len(v))
	copy(sorted, v)
	SortRiskAssessments(sorted)
	out := make([]domain.RiskAssessment, 0, n)
	for _, a := range sorted {
		if !a.RequiresAction {
			continue
		}
		out = append(out, a)
		if len(out) == n {
			break
		}
	}
	return out
}

// ReorderRecommendations returns every SKU with a positive recommended order
// quantity, highest risk first.
func ReorderRecommendations(v []domain.RiskAssessment) []domain.RiskAssessment {
	out := make([]domain.RiskAssessment, 0)
	for _, a := range v {
		if a.RecommendedOrderQty > 0 {
			out = append(out, a)
		}
	}
	SortRiskAssessments(out)
	return out
}
