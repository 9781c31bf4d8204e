// internal/engine/classify.go
package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tj309c/supply-signals/internal/domain"
)

// skuValue pairs a SKU with its stock value for ABC ranking.
type skuValue struct {
	SKU   string
	Value decimal.Decimal
}

// ABCStrategy assigns A/B/C classes over a value-ranked catalog. Users switch
// between strategies at runtime, so the choice is injected, not compiled in.
type ABCStrategy interface {
	Classify(values []skuValue) map[string]domain.ABCClass
}

// ValueBasedABC classifies by cumulative share of total stock value.
type ValueBasedABC struct {
	APercent float64
	BPercent float64
}

// Classify ranks SKUs by value descending and cuts classes at the cumulative
// value percentages. A zero-value catalog is all class C.
func (s ValueBasedABC) Classify(values []skuValue) map[string]domain.ABCClass {
	out := make(map[string]domain.ABCClass, len(values))
	ranked := rankByValue(values)

	total := decimal.Zero
	for _, v := range ranked {
		total = total.Add(v.Value)
	}
	if total.IsZero() || total.IsNegative() {
		for _, v := range ranked {
			out[v.SKU] = domain.ABCClassC
		}
		return out
	}

	aCut := decimal.NewFromFloat(s.APercent)
	bCut := decimal.NewFromFloat(s.BPercent)
	cum := decimal.Zero
	for _, v := range ranked {
		cum = cum.Add(v.Value)
		pct := cum.Div(total).Mul(decimal.NewFromInt(100))
		switch {
		case pct.LessThanOrEqual(aCut):
			out[v.SKU] = domain.ABCClassA
		case pct.LessThanOrEqual(bCut):
			out[v.SKU] = domain.ABCClassB
		default:
			out[v.SKU] = domain.ABCClassC
		}
	}
	return out
}

// CountBasedABC classifies the top APercent of SKUs by value as A and the
// next BPercent as B.
type CountBasedABC struct {
	APercent float64
	BPercent float64
}

func (s CountBasedABC) Classify(values []skuValue) map[string]domain.ABCClass {
	out := make(map[string]domain.ABCClass, len(values))
	ranked := rankByValue(values)
	n := float64(len(ranked))
	for i, v := range ranked {
		pos := float64(i)
		switch {
		case pos < n*s.APercent/100:
			out[v.SKU] = domain.ABCClassA
		case pos < n*(s.APercent+s.BPercent)/100:
			out[v.SKU] = domain.ABCClassB
		default:
			out[v.SKU] = domain.ABCClassC
		}
	}
	return out
}

// NewABCStrategy builds the configured strategy, defaulting to value-based.
func NewABCStrategy(cfg ABCConfig) ABCStrategy {
	if cfg.Method == "count" {
		return CountBasedABC{APercent: cfg.CountAPercent, BPercent: cfg.CountBPercent}
	}
	return ValueBasedABC{APercent: cfg.ValueAPercent, BPercent: cfg.ValueBPercent}
}

func rankByValue(values []skuValue) []skuValue {
	ranked := make([]skuValue, len(values))
	copy(ranked, values)
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Value.Equal(ranked[j].Value) {
			return ranked[i].Value.GreaterThan(ranked[j].Value)
		}
		return ranked[i].SKU < ranked[j].SKU
	})
	return ranked
}

// ClassifyInventory computes DIO, movement class, stock-out tier, and ABC
// class per canonical SKU. SKUs with no demand record degrade to zero demand
// rather than failing.
func ClassifyInventory(cfg Config, positions map[string]domain.InventoryPosition, demand map[string]domain.DemandRecord, conv *Converter) ([]domain.ClassificationResult, []domain.Issue) {
	log := domain.NewIssueLog("inventory_classifier")

	skus := make([]string, 0, len(positions))
	for sku := range positions {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	values := make([]skuValue, 0, len(skus))
	var unknownCurrency []string
	results := make([]domain.ClassificationResult, 0, len(skus))
	for _, sku := range skus {
		pos := positions[sku]
		daily := demand[sku].DailyDemand

		var dio float64
		if daily > 0 {
			dio = pos.OnHandQty / daily
		}

		value, ok := conv.ConvertFloat(pos.OnHandQty*pos.UnitCost, pos.Currency)
		if !ok {
			unknownCurrency = append(unknownCurrency, sku)
		}

		results = append(results, domain.ClassificationResult{
			SKU:           sku,
			DIO:           dio,
			MovementClass: movementClass(cfg.Movement, dio, pos.OnHandQty),
			StockOutRisk:  stockOutTier(cfg.StockOut, dio),
			StockValueUSD: value,
		})
		values = append(values, skuValue{SKU: sku, Value: value})
	}

	abc := NewABCStrategy(cfg.ABC).Classify(values)
	for i := range results {
		results[i].ABCClass = abc[results[i].SKU]
	}

	log.WarnKeys("unknown cost currency, value reported unconverted", unknownCurrency)
	return results, log.All()
}

func movementClass(t MovementThresholds, dio, onHand float64) domain.MovementClass {
	switch {
	case dio == 0 && onHand > 0:
		return domain.MovementDeadStock
	case dio <= t.FastMax:
		return domain.MovementFast
	case dio <= t.NormalMax:
		return domain.MovementNormal
	case dio <= t.SlowMax:
		return domain.MovementSlow
	case dio <= t.VerySlowMax:
		return domain.MovementVerySlow
	default:
		return domain.MovementObsoleteRisk
	}
}

func stockOutTier(t StockOutThresholds, dio float64) domain.StockOutRisk {
	switch {
	case dio == 0:
		return domain.StockOutRiskOutOfStock
	case dio < t.CriticalMax:
		return domain.StockOutRiskCritical
	case dio < t.WarningMax:
		return domain.StockOutRiskWarning
	case dio >= t.SafeMin:
		return domain.StockOutRiskSafe
	default:
		return domain.StockOutRiskMonitor
	}
}
