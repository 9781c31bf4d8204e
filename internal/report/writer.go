// internal/report/writer.go
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/tj309c/supply-signals/internal/domain"
	"github.com/tj309c/supply-signals/pkg/logger"
)

// WriteAll exports every signal table from a run as CSV files under dir.
func WriteAll(dir string, set *domain.SignalSet) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	writers := []struct {
		name string
		fn   func(string, *domain.SignalSet) error
	}{
		{"demand.csv", writeDemand},
		{"lead_times.csv", writeLeadTimes},
		{"classifications.csv", writeClassifications},
		{"scrap_recommendations.csv", writeScrap},
		{"stockout_risk.csv", writeRisk},
		{"code_families.csv", writeFamilies},
		{"issues.csv", writeIssues},
	}
	for _, w := range writers {
		path := filepath.Join(dir, w.name)
		if err := w.fn(path, set); err != nil {
			return fmt.Errorf("write %s: %w", w.name, err)
		}
	}
	logger.Log.Info().Str("dir", dir).Msg("signal reports written")
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeDemand(path string, set *domain.SignalSet) error {
	header := []string{"sku", "daily_demand", "divisor", "excluded", "rolling_year_total", "months_with_demand", "order_count", "demand_std_dev"}
	var rows [][]string
	for _, sku := range sortedKeys(set.Demand) {
		d := set.Demand[sku]
		rows = append(rows, []string{
			d.SKU,
			ftoa(d.DailyDemand),
			ftoa(d.Divisor),
			strconv.FormatBool(d.Excluded),
			ftoa(d.RollingYearTotal),
			strconv.Itoa(d.MonthsWithDemand),
			strconv.Itoa(d.OrderCount),
			ftoa(d.DemandStdDev),
		})
	}
	return writeCSV(path, header, rows)
}

func writeLeadTimes(path string, set *domain.SignalSet) error {
	header := []string{"sku", "median_days", "buffer_days", "lead_time_days", "observations", "confidence", "vendor_name"}
	var rows [][]string
	for _, sku := range sortedKeys(set.LeadTimes) {
		lt := set.LeadTimes[sku]
		rows = append(rows, []string{
			lt.SKU,
			ftoa(lt.MedianDays),
			ftoa(lt.BufferDays),
			ftoa(lt.LeadTimeDays),
			strconv.Itoa(lt.Observations),
			string(lt.Confidence),
			lt.VendorName,
		})
	}
	return writeCSV(path, header, rows)
}

func writeClassifications(path string, set *domain.SignalSet) error {
	header := []string{"sku", "dio", "movement_class", "stock_out_risk", "abc_class", "stock_value_usd"}
	var rows [][]string
	for _, c := range set.Classifications {
		rows = append(rows, []string{
			c.SKU,
			ftoa(c.DIO),
			string(c.MovementClass),
			string(c.StockOutRisk),
			string(c.ABCClass),
			c.StockValueUSD.StringFixed(2),
		})
	}
	return writeCSV(path, header, rows)
}

func writeScrap(path string, set *domain.SignalSet) error {
	header := []string{"sku", "sku_age_days", "dead_stock", "conservative_qty", "conservative_value_usd", "medium_qty", "medium_value_usd", "aggressive_qty", "aggressive_value_usd"}
	var rows [][]string
	for _, s := range set.Scrap {
		rows = append(rows, []string{
			s.SKU,
			strconv.Itoa(s.SkuAgeDays),
			strconv.FormatBool(s.DeadStock),
			ftoa(s.Conservative.Qty),
			s.Conservative.ValueUSD.StringFixed(2),
			ftoa(s.Medium.Qty),
			s.Medium.ValueUSD.StringFixed(2),
			ftoa(s.Aggressive.Qty),
			s.Aggressive.ValueUSD.StringFixed(2),
		})
	}
	return writeCSV(path, header, rows)
}

func writeRisk(path string, set *domain.SignalSet) error {
	header := []string{"sku", "category", "available_stock", "daily_demand", "lead_time_days", "safety_stock", "reorder_point", "days_until_stockout", "days_until_stockout_with_po", "open_po_qty", "risk_level", "risk_score", "requires_action", "recommended_order_qty"}
	var rows [][]string
	for _, a := range set.Risk {
		rows = append(rows, []string{
			a.SKU,
			a.Category,
			ftoa(a.AvailableStock),
			ftoa(a.DailyDemand),
			ftoa(a.LeadTimeDays),
			strconv.Itoa(a.SafetyStock),
			strconv.Itoa(a.ReorderPoint),
			ftoa(a.DaysUntilStockout),
			ftoa(a.DaysUntilStockoutWithPO),
			ftoa(a.OpenPOQty),
			string(a.RiskLevel),
			strconv.Itoa(a.RiskScore),
			strconv.FormatBool(a.RequiresAction),
			strconv.Itoa(a.RecommendedOrderQty),
		})
	}
	return writeCSV(path, header, rows)
}

func writeFamilies(path string, set *domain.SignalSet) error {
	header := []string{"current_code", "old_code"}
	var rows [][]string
	for _, current := range sortedKeys(set.Families) {
		fam := set.Families[current]
		if len(fam.OldCodes) == 0 {
			rows = append(rows, []string{current, ""})
			continue
		}
		for _, old := range fam.OldCodes {
			rows = append(rows, []string{current, old})
		}
	}
	return writeCSV(path, header, rows)
}

func writeIssues(path string, set *domain.SignalSet) error {
	header := []string{"component", "severity", "message", "count", "keys"}
	var rows [][]string
	for _, is := range set.Issues {
		keys := ""
		if len(is.Keys) > 0 {
			keys = is.Keys[0]
			for _, k := range is.Keys[1:] {
				keys += ";" + k
			}
		}
		rows = append(rows, []string{
			is.Component,
			string(is.Severity),
			is.Message,
			strconv.Itoa(is.Count),
			keys,
		})
	}
	return writeCSV(path, header, rows)
}
