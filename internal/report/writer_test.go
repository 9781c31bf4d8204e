// internal/report/writer_test.go
package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tj309c/supply-signals/internal/domain"
)

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	set := &domain.SignalSet{
		Demand: map[string]domain.DemandRecord{
			"NEW-1": {SKU: "NEW-1", DailyDemand: 1.5, Divisor: 365, RollingYearTotal: 547.5},
		},
		LeadTimes: map[string]domain.LeadTimeStat{
			"NEW-1": {SKU: "NEW-1", MedianDays: 12, BufferDays: 5, LeadTimeDays: 17, Observations: 6, Confidence: domain.ConfidenceHigh, VendorName: "ACME"},
		},
		Classifications: []domain.ClassificationResult{
			{SKU: "NEW-1", DIO: 33.3, MovementClass: domain.MovementNormal, StockOutRisk: domain.StockOutRiskSafe, ABCClass: domain.ABCClassA, StockValueUSD: decimal.NewFromInt(100)},
		},
		Scrap: []domain.ScrapRecommendation{
			{SKU: "NEW-1", SkuAgeDays: 400},
		},
		Risk: []domain.RiskAssessment{
			{SKU: "NEW-1", Category: "Spares", RiskLevel: domain.RiskTierLow, RiskScore: 10, DaysUntilStockout: 33.3},
		},
		Families: map[string]domain.CodeFamily{
			"NEW-1": {Current: "NEW-1", OldCodes: []string{"OLD-1", "OLD-2"}},
		},
		Issues: []domain.Issue{
			{Component: "demand_calculator", Severity: domain.SeverityWarning, Message: "test", Count: 2, Keys: []string{"A", "B"}},
		},
	}

	if err := WriteAll(dir, set); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	for _, name := range []string{
		"demand.csv", "lead_times.csv", "classifications.csv",
		"scrap_recommendations.csv", "stockout_risk.csv",
		"code_families.csv", "issues.csv",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		if len(strings.Split(strings.TrimSpace(string(data)), "\n")) < 2 {
			t.Errorf("%s has no data rows", name)
		}
	}

	families, _ := os.ReadFile(filepath.Join(dir, "code_families.csv"))
	if !strings.Contains(string(families), "NEW-1,OLD-2") {
		t.Errorf("code_families.csv missing family rows:\n%s", families)
	}
	issues, _ := os.ReadFile(filepath.Join(dir, "issues.csv"))
	if !strings.Contains(string(issues), "A;B") {
		t.Errorf("issues.csv missing joined keys:\n%s", issues)
	}
}
