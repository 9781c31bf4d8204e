// internal/engine/scrap.go
package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tj309c/supply-signals/internal/domain"
)

// RecommendScrap computes three graduated scrap recommendations per canonical
// SKU. Older SKUs with excess inventory are higher-confidence scrap
// candidates: more demand history behind the overstocking diagnosis. All
// levels gate on a minimum SKU age; a SKU with zero demand past the gate is
// dead stock and every level recommends the full on-hand quantity.
func RecommendScrap(cfg Config, positions map[string]domain.InventoryPosition, demand map[string]domain.DemandRecord, classifications []domain.ClassificationResult, master map[string]domain.MasterRow, superseded map[string]bool, conv *Converter) ([]domain.ScrapRecommendation, []domain.Issue) {
	log := domain.NewIssueLog("scrap_engine")
	sc := cfg.Scrap

	abc := make(map[string]domain.ABCClass, len(classifications))
	for _, c := range classifications {
		abc[c.SKU] = c.ABCClass
	}

	skus := make([]string, 0, len(positions))
	for sku := range positions {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	var noMaster []string
	var unknownCurrency []string
	out := make([]domain.ScrapRecommendation, 0, len(skus))
	for _, sku := range skus {
		pos := positions[sku]
		rec := domain.ScrapRecommendation{SKU: sku}

		m, hasMaster := master[sku]
		if !hasMaster || m.ActivationDate == nil {
			// Unknown age is age 0: the gate below drops the SKU.
			noMaster = append(noMaster, sku)
		} else {
			rec.SkuAgeDays = int(cfg.Today.Sub(*m.ActivationDate).Hours() / 24)
		}

		if rec.SkuAgeDays <= sc.MinAgeDays {
			out = append(out, rec)
			continue
		}

		d := demand[sku]
		lowPriority := abc[sku] == domain.ABCClassC ||
			isDiscontinued(m, cfg.Today) ||
			superseded[sku]

		convert := func(qty float64) decimal.Decimal {
			v, ok := conv.ConvertFloat(qty*pos.UnitCost, pos.Currency)
			if !ok {
				unknownCurrency = append(unknownCurrency, sku)
			}
			return v
		}

		if d.DailyDemand == 0 {
			rec.DeadStock = true
			full := domain.ScrapLevelResult{Qty: pos.OnHandQty, ValueUSD: convert(pos.OnHandQty)}
			rec.Conservative, rec.Medium, rec.Aggressive = full, full, full
			out = append(out, rec)
			continue
		}

		if rec.SkuAgeDays > sc.ConservativeMinAgeDays && d.MonthsWithDemand < sc.ConservativeMaxActiveMonths {
			qty := excessOver(pos.OnHandQty, d.DailyDemand, sc.ConservativeKeepDays)
			rec.Conservative = domain.ScrapLevelResult{Qty: qty, ValueUSD: convert(qty)}
		}

		if rec.SkuAgeDays > sc.MediumMinAgeDays {
			keep := sc.MediumKeepDays
			if lowPriority {
				keep = sc.MediumLowKeepDays
			}
			qty := excessOver(pos.OnHandQty, d.DailyDemand, keep)
			rec.Medium = domain.ScrapLevelResult{Qty: qty, ValueUSD: convert(qty)}
		}

		if rec.SkuAgeDays > sc.AggressiveMinAgeDays {
			keep := sc.AggressiveKeepDays
			if rec.SkuAgeDays > sc.AggressiveOldAgeDays {
				keep = sc.AggressiveOldKeepDays
				if lowPriority {
					keep = sc.AggressiveLowKeepDays
				}
			}
			qty := excessOver(pos.OnHandQty, d.DailyDemand, keep)
			rec.Aggressive = domain.ScrapLevelResult{Qty: qty, ValueUSD: convert(qty)}
		}

		out = append(out, rec)
	}

	log.WarnKeys("no activation date, SKU age unknown and scrap gated out", noMaster)
	log.WarnKeys("unknown cost currency, scrap value reported unconverted", dedupeSorted(unknownCurrency))
	return out, log.All()
}

// excessOver is the on-hand quantity beyond keepDays of supply, floored at 0.
func excessOver(onHand, dailyDemand, keepDays float64) float64 {
	excess := onHand - dailyDemand*keepDays
	if excess < 0 {
		return 0
	}
	return excess
}

func isDiscontinued(m domain.MasterRow, today time.Time) bool {
	status := strings.ToLower(m.LifecycleStatus)
	if strings.Contains(status, "discontinued") || strings.Contains(status, "expired") {
		return true
	}
	return m.ExpirationDate != nil && m.ExpirationDate.Before(today)
}
