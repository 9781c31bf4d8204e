// internal/engine/demand_test.go
package engine

import (
	"testing"
	"time"

	"github.com/tj309c/supply-signals/internal/domain"
)

var testToday = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Today = testToday
	return cfg
}

func datePtr(t time.Time) *time.Time { return &t }

func TestDemandDivisorBounds(t *testing.T) {
	cfg := testConfig()

	cases := []struct {
		name        string
		activation  *time.Time
		wantDivisor float64
		wantExclude bool
	}{
		{
			name:        "old sku clamps to full window",
			activation:  datePtr(testToday.AddDate(-3, 0, 0)),
			wantDivisor: 365,
		},
		{
			name:        "mid age uses days since intro",
			activation:  datePtr(testToday.AddDate(0, 0, -160)),
			wantDivisor: 100, // 160 - 60 intro buffer
		},
		{
			name:        "too new is excluded",
			activation:  datePtr(testToday.AddDate(0, 0, -70)),
			wantDivisor: 10,
			wantExclude: true,
		},
		{
			name:        "pre launch clamps to zero and excludes",
			activation:  datePtr(testToday.AddDate(0, 0, -30)),
			wantDivisor: 0,
			wantExclude: true,
		},
		{
			name:        "no activation date uses full window",
			activation:  nil,
			wantDivisor: 365,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deliveries := []domain.DeliveryRow{
				{SKU: "SKU-1", ShipDate: testToday.AddDate(0, 0, -5), Qty: 100},
			}
			master := map[string]domain.MasterRow{
				"SKU-1": {SKU: "SKU-1", ActivationDate: tc.activation},
			}
			got, _ := CalculateDemand(cfg, deliveries, master)
			rec := got["SKU-1"]
			if rec.Divisor != tc.wantDivisor {
				t.Errorf("divisor = %v, want %v", rec.Divisor, tc.wantDivisor)
			}
			if rec.Excluded != tc.wantExclude {
				t.Errorf("excluded = %v, want %v", rec.Excluded, tc.wantExclude)
			}
			if tc.wantExclude && rec.DailyDemand != 0 {
				t.Errorf("excluded SKU must have zero demand, got %v", rec.DailyDemand)
			}
			if !tc.wantExclude && rec.Divisor > 0 {
				want := 100 / rec.Divisor
				if rec.DailyDemand != want {
					t.Errorf("daily demand = %v, want %v", rec.DailyDemand, want)
				}
			}
		})
	}
}

func TestDemandNoMasterMatchUsesFullWindow(t *testing.T) {
	cfg := testConfig()
	deliveries := []domain.DeliveryRow{
		{SKU: "GHOST-1", ShipDate: testToday.AddDate(0, 0, -10), Qty: 365},
	}
	got, issues := CalculateDemand(cfg, deliveries, map[string]domain.MasterRow{})
	rec := got["GHOST-1"]
	if rec.Divisor != 365 {
		t.Errorf("divisor = %v, want 365", rec.Divisor)
	}
	if rec.DailyDemand != 1 {
		t.Errorf("daily demand = %v, want 1", rec.DailyDemand)
	}
	var warned bool
	for _, is := range issues {
		if len(is.Keys) > 0 && is.Keys[0] == "GHOST-1" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning listing the unmatched SKU")
	}
}

func TestDemandWindowAndBuckets(t *testing.T) {
	cfg := testConfig()
	deliveries := []domain.DeliveryRow{
		{SKU: "SKU-1", ShipDate: testToday.AddDate(0, 0, -3), Qty: 10},
		{SKU: "SKU-1", ShipDate: testToday.AddDate(0, -2, 0), Qty: 20},
		{SKU: "SKU-1", ShipDate: testToday.AddDate(0, -2, 5), Qty: 5},
		// Outside the window, must not count.
		{SKU: "SKU-1", ShipDate: testToday.AddDate(-2, 0, 0), Qty: 999},
	}
	master := map[string]domain.MasterRow{
		"SKU-1": {SKU: "SKU-1", ActivationDate: datePtr(testToday.AddDate(-3, 0, 0))},
	}
	got, _ := CalculateDemand(cfg, deliveries, master)
	rec := got["SKU-1"]
	if rec.RollingYearTotal != 35 {
		t.Errorf("rolling year total = %v, want 35", rec.RollingYearTotal)
	}
	if rec.MonthsWithDemand != 2 {
		t.Errorf("months with demand = %d, want 2", rec.MonthsWithDemand)
	}
	if rec.MonthlyBuckets["2026-06"] != 0 {
		// Shipments 3 days back land in May with a June 1 anchor.
		t.Errorf("unexpected June bucket: %v", rec.MonthlyBuckets["2026-06"])
	}
	if rec.MonthlyBuckets["2026-05"] != 10 {
		t.Errorf("May bucket = %v, want 10", rec.MonthlyBuckets["2026-05"])
	}
	if rec.MonthlyBuckets["2026-04"] != 25 {
		t.Errorf("April bucket = %v, want 25", rec.MonthlyBuckets["2026-04"])
	}
	if rec.OrderCount != 3 {
		t.Errorf("order count = %d, want 3", rec.OrderCount)
	}
}

func TestDemandStdDevSingleOrderIsZero(t *testing.T) {
	cfg := testConfig()
	deliveries := []domain.DeliveryRow{
		{SKU: "SKU-1", ShipDate: testToday.AddDate(0, 0, -5), Qty: 10},
	}
	got, _ := CalculateDemand(cfg, deliveries, map[string]domain.MasterRow{})
	if sd := got["SKU-1"].DemandStdDev; sd != 0 {
		t.Errorf("single-order stddev = %v, want 0", sd)
	}
}

func TestOrderStdDev(t *testing.T) {
	// [10, 20]: mean 15, sample sd sqrt(50) ~ 7.0711, sem sd/sqrt(2) = 5.
	got := orderStdDev([]float64{10, 20})
	if got < 4.999 || got > 5.001 {
		t.Errorf("orderStdDev([10 20]) = %v, want 5", got)
	}
}
