// internal/engine/scrap_test.go
package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tj309c/supply-signals/internal/domain"
)

func scrapFixture(ageDays int, onHand, dailyDemand float64, monthsWithDemand int) (map[string]domain.InventoryPosition, map[string]domain.DemandRecord, map[string]domain.MasterRow) {
	positions := map[string]domain.InventoryPosition{
		"SKU-1": {SKU: "SKU-1", OnHandQty: onHand, UnitCost: 2, Currency: "USD"},
	}
	demand := map[string]domain.DemandRecord{
		"SKU-1": {SKU: "SKU-1", DailyDemand: dailyDemand, MonthsWithDemand: monthsWithDemand},
	}
	master := map[string]domain.MasterRow{
		"SKU-1": {SKU: "SKU-1", ActivationDate: datePtr(testToday.AddDate(0, 0, -ageDays))},
	}
	return positions, demand, master
}

func runScrap(t *testing.T, cfg Config, positions map[string]domain.InventoryPosition, demand map[string]domain.DemandRecord, master map[string]domain.MasterRow, classifications []domain.ClassificationResult, superseded map[string]bool) domain.ScrapRecommendation {
	t.Helper()
	got, _ := RecommendScrap(cfg, positions, demand, classifications, master, superseded, testConverter())
	if len(got) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(got))
	}
	return got[0]
}

func TestDeadStockScenario(t *testing.T) {
	cfg := testConfig()
	positions, demand, master := scrapFixture(400, 500, 0, 0)
	rec := runScrap(t, cfg, positions, demand, master, nil, nil)

	if !rec.DeadStock {
		t.Error("expected dead-stock flag")
	}
	for name, level := range map[string]domain.ScrapLevelResult{
		"conservative": rec.Conservative,
		"medium":       rec.Medium,
		"aggressive":   rec.Aggressive,
	} {
		if level.Qty != 500 {
			t.Errorf("%s qty = %v, want full 500", name, level.Qty)
		}
		if !level.ValueUSD.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("%s value = %v, want 1000", name, level.ValueUSD)
		}
	}
}

func TestAgeGateBlocksYoungSkus(t *testing.T) {
	cfg := testConfig()
	for _, age := range []int{0, 100, 364, 365} {
		positions, demand, master := scrapFixture(age, 1000, 0, 0)
		rec := runScrap(t, cfg, positions, demand, master, nil, nil)
		if rec.Conservative.Qty != 0 || rec.Medium.Qty != 0 || rec.Aggressive.Qty != 0 {
			t.Errorf("age %d: got nonzero scrap %+v", age, rec)
		}
	}
}

func TestScrapMonotonicity(t *testing.T) {
	cfg := testConfig()
	// Qualifies for all three levels: age > 1095, one active month, live demand.
	positions, demand, master := scrapFixture(1100, 1000, 1, 1)
	rec := runScrap(t, cfg, positions, demand, master, nil, nil)

	if rec.Conservative.Qty != 635 { // 1000 - 1*365
		t.Errorf("conservative qty = %v, want 635", rec.Conservative.Qty)
	}
	if rec.Medium.Qty != 820 { // 1000 - 1*180
		t.Errorf("medium qty = %v, want 820", rec.Medium.Qty)
	}
	if rec.Aggressive.Qty != 940 { // age > 1095 tightens keep to 60
		t.Errorf("aggressive qty = %v, want 940", rec.Aggressive.Qty)
	}
	if !(rec.Aggressive.Qty >= rec.Medium.Qty && rec.Medium.Qty >= rec.Conservative.Qty) {
		t.Errorf("levels not monotonic: %v / %v / %v", rec.Conservative.Qty, rec.Medium.Qty, rec.Aggressive.Qty)
	}
}

func TestConservativeRequiresLowActivity(t *testing.T) {
	cfg := testConfig()
	// Two active months disqualifies the conservative level only.
	positions, demand, master := scrapFixture(1100, 1000, 1, 2)
	rec := runScrap(t, cfg, positions, demand, master, nil, nil)
	if rec.Conservative.Qty != 0 {
		t.Errorf("conservative qty = %v, want 0 with 2 active months", rec.Conservative.Qty)
	}
	if rec.Medium.Qty == 0 || rec.Aggressive.Qty == 0 {
		t.Error("medium and aggressive must still apply")
	}
}

func TestLowPriorityTightensKeepDays(t *testing.T) {
	cfg := testConfig()
	positions, demand, master := scrapFixture(1100, 1000, 1, 2)
	classifications := []domain.ClassificationResult{
		{SKU: "SKU-1", ABCClass: domain.ABCClassC},
	}
	rec := runScrap(t, cfg, positions, demand, master, classifications, nil)
	if rec.Medium.Qty != 910 { // keep 90 instead of 180
		t.Errorf("medium qty = %v, want 910 for class C", rec.Medium.Qty)
	}
	if rec.Aggressive.Qty != 970 { // keep 30 instead of 60
		t.Errorf("aggressive qty = %v, want 970 for class C", rec.Aggressive.Qty)
	}
}

func TestSupersededCountsAsLowPriority(t *testing.T) {
	cfg := testConfig()
	positions, demand, master := scrapFixture(800, 1000, 1, 3)
	rec := runScrap(t, cfg, positions, demand, master, nil, map[string]bool{"SKU-1": true})
	if rec.Medium.Qty != 910 { // age > 730, superseded keeps 90 days
		t.Errorf("medium qty = %v, want 910 for superseded SKU", rec.Medium.Qty)
	}
	// Aggressive stays at the 90-day baseline below the 1095-day tightening.
	if rec.Aggressive.Qty != 910 {
		t.Errorf("aggressive qty = %v, want 910", rec.Aggressive.Qty)
	}
}

func TestDiscontinuedCountsAsLowPriority(t *testing.T) {
	cfg := testConfig()
	positions, demand, master := scrapFixture(800, 1000, 1, 3)
	m := master["SKU-1"]
	m.LifecycleStatus = "Discontinued"
	master["SKU-1"] = m
	rec := runScrap(t, cfg, positions, demand, master, nil, nil)
	if rec.Medium.Qty != 910 {
		t.Errorf("medium qty = %v, want 910 for discontinued SKU", rec.Medium.Qty)
	}
}

func TestNoExcessMeansNoScrap(t *testing.T) {
	cfg := testConfig()
	// 20 on hand with 1/day demand is under every keep-days target.
	positions, demand, master := scrapFixture(1100, 20, 1, 1)
	rec := runScrap(t, cfg, positions, demand, master, nil, nil)
	if rec.Conservative.Qty != 0 || rec.Medium.Qty != 0 || rec.Aggressive.Qty != 0 {
		t.Errorf("expected zero scrap, got %+v", rec)
	}
}

func TestMissingMasterDataGatesOutWithWarning(t *testing.T) {
	cfg := testConfig()
	positions := map[string]domain.InventoryPosition{
		"SKU-1": {SKU: "SKU-1", OnHandQty: 1000, UnitCost: 2, Currency: "USD"},
	}
	got, issues := RecommendScrap(cfg, positions, nil, nil, nil, nil, testConverter())
	if got[0].Aggressive.Qty != 0 {
		t.Errorf("unknown-age SKU must not be scrapped, got %v", got[0].Aggressive.Qty)
	}
	var warned bool
	for _, is := range issues {
		if len(is.Keys) > 0 && is.Keys[0] == "SKU-1" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected missing-activation-date warning")
	}
}
