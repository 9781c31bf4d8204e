// internal/engine/demand.go
package engine

import (
	"math"
	"sort"
	"time"

	"github.com/tj309c/supply-signals/internal/domain"
)

const monthKeyLayout = "2006-01"

// CalculateDemand produces an age-adjusted daily demand rate per canonical
// SKU from shipment history. SKUs with shipments but no master match use the
// unadjusted full-window divisor; SKUs active fewer than MinActiveDays are
// excluded with zero demand but keep their history fields for diagnostics.
func CalculateDemand(cfg Config, deliveries []domain.DeliveryRow, master map[string]domain.MasterRow) (map[string]domain.DemandRecord, []domain.Issue) {
	log := domain.NewIssueLog("demand_calculator")
	windowStart := cfg.Today.AddDate(0, 0, -cfg.LookbackDays)

	type acc struct {
		total    float64
		buckets  map[string]float64
		orderQty []float64
	}
	bySku := make(map[string]*acc)

	for _, d := range deliveries {
		if d.SKU == "" {
			continue
		}
		if d.ShipDate.Before(windowStart) || d.ShipDate.After(cfg.Today) {
			continue
		}
		a, ok := bySku[d.SKU]
		if !ok {
			a = &acc{buckets: make(map[string]float64)}
			bySku[d.SKU] = a
		}
		a.total += d.Qty
		a.buckets[d.ShipDate.Format(monthKeyLayout)] += d.Qty
		a.orderQty = append(a.orderQty, d.Qty)
	}

	monthKeys := lastMonthKeys(cfg.Today, 12)

	out := make(map[string]domain.DemandRecord, len(bySku))
	var unmatched []string
	for sku, a := range bySku {
		rec := domain.DemandRecord{
			SKU:              sku,
			RollingYearTotal: a.total,
			MonthlyBuckets:   make(map[string]float64, 12),
			OrderCount:       len(a.orderQty),
		}
		for _, key := range monthKeys {
			if qty, ok := a.buckets[key]; ok && qty > 0 {
				rec.MonthlyBuckets[key] = qty
				rec.MonthsWithDemand++
			}
		}
		rec.DemandStdDev = orderStdDev(a.orderQty)

		m, hasMaster := master[sku]
		divisor := float64(cfg.LookbackDays)
		excluded := false
		switch {
		case !hasMaster:
			unmatched = append(unmatched, sku)
		case m.ActivationDate == nil:
			// No activation date behaves like no master match.
		default:
			intro := m.ActivationDate.AddDate(0, 0, cfg.MarketIntroBufferDays)
			active := cfg.Today.Sub(intro).Hours() / 24
			if active < 0 {
				active = 0
			}
			if active > float64(cfg.LookbackDays) {
				active = float64(cfg.LookbackDays)
			}
			divisor = active
			if active < float64(cfg.MinActiveDays) {
				excluded = true
			}
		}

		rec.Divisor = divisor
		rec.Excluded = excluded
		if !excluded && divisor > 0 {
			rec.DailyDemand = a.total / divisor
		}
		out[sku] = rec
	}

	sort.Strings(unmatched)
	log.WarnKeys("shipments without master data, unadjusted divisor used", unmatched)

	return out, log.All()
}

// ZeroDemandRecord is the degraded record for a SKU with no shipments in the
// window.
func ZeroDemandRecord(cfg Config, sku string) domain.DemandRecord {
	return domain.DemandRecord{
		SKU:            sku,
		Divisor:        float64(cfg.LookbackDays),
		MonthlyBuckets: map[string]float64{},
	}
}

func lastMonthKeys(today time.Time, n int) []string {
	keys := make([]string, 0, n)
	anchor := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	for i := 0; i < n; i++ {
		keys = append(keys, anchor.AddDate(0, -i, 0).Format(monthKeyLayout))
	}
	return keys
}

// orderStdDev is the standard error of the mean order quantity: sample
// standard deviation over orders divided by sqrt(order count). Fewer than two
// orders yields 0; the stockout predictor substitutes its proxy then.
func orderStdDev(qty []float64) float64 {
	n := len(qty)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, q := range qty {
		sum += q
	}
	mean := sum / float64(n)
	var ss float64
	for _, q := range qty {
		ss += (q - mean) * (q - mean)
	}
	sd := math.Sqrt(ss / float64(n-1))
	return sd / math.Sqrt(float64(n))
}
