// internal/engine/leadtime.go
package engine

import (
	"sort"

	"github.com/tj309c/supply-signals/internal/domain"
)

// EstimateLeadTimes joins PO-creation records with inbound receipts on
// (PO number, SKU) over the lookback window and produces per-SKU lead time
// statistics: median observed days plus a fixed safety buffer. Negative lead
// times are discarded as data errors. Missing inputs yield an empty lookup;
// callers fall back to the configured default.
func EstimateLeadTimes(cfg Config, pos []domain.PORow, receipts []domain.ReceiptRow) (map[string]domain.LeadTimeStat, []domain.Issue) {
	log := domain.NewIssueLog("lead_time_estimator")
	out := make(map[string]domain.LeadTimeStat)
	if len(pos) == 0 || len(receipts) == 0 {
		log.Warnf("missing PO or receipt history, lead time lookup empty")
		return out, log.All()
	}

	windowStart := cfg.Today.AddDate(0, 0, -cfg.LeadTimeLookbackDays)

	type poKey struct{ po, sku string }
	poIndex := make(map[poKey]domain.PORow, len(pos))
	for _, po := range pos {
		if po.PONumber == "" || po.SKU == "" {
			continue
		}
		if po.CreatedAt.Before(windowStart) {
			continue
		}
		poIndex[poKey{po.PONumber, po.SKU}] = po
	}

	type obs struct {
		days   float64
		vendor string
		posted int64
	}
	bySku := make(map[string][]obs)
	var orphanReceipts []string
	negatives := 0
	for _, r := range receipts {
		if r.PONumber == "" || r.SKU == "" {
			continue
		}
		po, ok := poIndex[poKey{r.PONumber, r.SKU}]
		if !ok {
			orphanReceipts = append(orphanReceipts, r.PONumber)
			continue
		}
		days := r.PostedAt.Sub(po.CreatedAt).Hours() / 24
		if days < 0 {
			negatives++
			continue
		}
		bySku[r.SKU] = append(bySku[r.SKU], obs{
			days:   days,
			vendor: po.VendorName,
			posted: r.PostedAt.Unix(),
		})
	}

	if negatives > 0 {
		log.Warnf("%d receipt(s) posted before PO creation discarded", negatives)
	}
	sort.Strings(orphanReceipts)
	log.WarnKeys("receipts without a matching purchase order dropped", dedupeSorted(orphanReceipts))

	for sku, observations := range bySku {
		days := make([]float64, len(observations))
		vendor := ""
		var latest int64
		for i, o := range observations {
			days[i] = o.days
			if o.posted >= latest {
				latest = o.posted
				vendor = o.vendor
			}
		}
		med := median(days)
		stat := domain.LeadTimeStat{
			SKU:          sku,
			MedianDays:   med,
			BufferDays:   cfg.LeadTimeBufferDays,
			LeadTimeDays: med + cfg.LeadTimeBufferDays,
			Observations: len(days),
			VendorName:   vendor,
		}
		switch {
		case stat.Observations >= cfg.HighConfidenceMinPOs:
			stat.Confidence = domain.ConfidenceHigh
		case stat.Observations >= cfg.MediumConfidenceMinPOs:
			stat.Confidence = domain.ConfidenceMedium
		default:
			stat.Confidence = domain.ConfidenceLow
		}
		out[sku] = stat
	}

	return out, log.All()
}

// DefaultLeadTime is the conservative stat used when a SKU has no usable
// PO/receipt history.
func DefaultLeadTime(cfg Config, sku string) domain.LeadTimeStat {
	return domain.LeadTimeStat{
		SKU:          sku,
		LeadTimeDays: cfg.DefaultLeadTimeDays,
		Confidence:   domain.ConfidenceLow,
	}
}

// median returns the middle value of the input, averaging the two middle
// values for even-length input. The slice is copied before sorting.
func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := make([]float64, len(v))
	copy(s, v)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func dedupeSorted(v []string) []string {
	if len(v) == 0 {
		return nil
	}
	out := v[:1]
	for _, s := range v[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
