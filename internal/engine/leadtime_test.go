// internal/engine/leadtime_test.go
package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/tj309c/supply-signals/internal/domain"
)

func poPair(sku string, n int, created time.Time, leadDays int, vendor string) (domain.PORow, domain.ReceiptRow) {
	num := fmt.Sprintf("PO-%d", n)
	return domain.PORow{PONumber: num, SKU: sku, CreatedAt: created, VendorName: vendor},
		domain.ReceiptRow{PONumber: num, SKU: sku, PostedAt: created.AddDate(0, 0, leadDays), Qty: 1}
}

func TestLeadTimeMedianResistsOutlier(t *testing.T) {
	cfg := testConfig()
	leads := []int{10, 12, 11, 13, 12, 50}
	var pos []domain.PORow
	var receipts []domain.ReceiptRow
	for i, d := range leads {
		po, rc := poPair("SKU-1", i, testToday.AddDate(0, 0, -200-i), d, "ACME")
		pos = append(pos, po)
		receipts = append(receipts, rc)
	}

	got, _ := EstimateLeadTimes(cfg, pos, receipts)
	stat, ok := got["SKU-1"]
	if !ok {
		t.Fatal("no stat for SKU-1")
	}
	if stat.MedianDays != 12 {
		t.Errorf("median = %v, want 12", stat.MedianDays)
	}
	if stat.LeadTimeDays != 17 {
		t.Errorf("lead time = %v, want median 12 + buffer 5", stat.LeadTimeDays)
	}
	if stat.Observations != 6 {
		t.Errorf("observations = %d, want 6", stat.Observations)
	}
	if stat.Confidence != domain.ConfidenceHigh {
		t.Errorf("confidence = %q, want High", stat.Confidence)
	}
	if stat.VendorName != "ACME" {
		t.Errorf("vendor = %q, want ACME", stat.VendorName)
	}
}

func TestLeadTimeConfidenceTiers(t *testing.T) {
	cfg := testConfig()
	cases := []struct {
		pairs int
		want  domain.ConfidenceTier
	}{
		{1, domain.ConfidenceLow},
		{2, domain.ConfidenceMedium},
		{4, domain.ConfidenceMedium},
		{5, domain.ConfidenceHigh},
	}
	for _, tc := range cases {
		var pos []domain.PORow
		var receipts []domain.ReceiptRow
		for i := 0; i < tc.pairs; i++ {
			po, rc := poPair("SKU-1", i, testToday.AddDate(0, 0, -100-i), 10, "V")
			pos = append(pos, po)
			receipts = append(receipts, rc)
		}
		got, _ := EstimateLeadTimes(cfg, pos, receipts)
		if got["SKU-1"].Confidence != tc.want {
			t.Errorf("%d pairs: confidence = %q, want %q", tc.pairs, got["SKU-1"].Confidence, tc.want)
		}
	}
}

func TestLeadTimeDiscardsNegativeAndOrphans(t *testing.T) {
	cfg := testConfig()
	po1, rc1 := poPair("SKU-1", 1, testToday.AddDate(0, 0, -100), 20, "V")
	po2, _ := poPair("SKU-1", 2, testToday.AddDate(0, 0, -90), 0, "V")
	// Receipt posted before the PO was created.
	rcNeg := domain.ReceiptRow{PONumber: po2.PONumber, SKU: "SKU-1", PostedAt: po2.CreatedAt.AddDate(0, 0, -3)}
	// Receipt with no matching PO.
	rcOrphan := domain.ReceiptRow{PONumber: "PO-MISSING", SKU: "SKU-1", PostedAt: testToday}

	got, issues := EstimateLeadTimes(cfg, []domain.PORow{po1, po2}, []domain.ReceiptRow{rc1, rcNeg, rcOrphan})
	stat := got["SKU-1"]
	if stat.Observations != 1 {
		t.Fatalf("observations = %d, want 1", stat.Observations)
	}
	if stat.MedianDays != 20 {
		t.Errorf("median = %v, want 20", stat.MedianDays)
	}
	var orphanWarned bool
	for _, is := range issues {
		if len(is.Keys) > 0 && is.Keys[0] == "PO-MISSING" {
			orphanWarned = true
		}
	}
	if !orphanWarned {
		t.Error("expected orphan receipt warning naming PO-MISSING")
	}
}

func TestLeadTimeEmptyInputs(t *testing.T) {
	cfg := testConfig()
	got, issues := EstimateLeadTimes(cfg, nil, nil)
	if len(got) != 0 {
		t.Errorf("expected empty lookup, got %d entries", len(got))
	}
	if len(issues) == 0 {
		t.Error("expected a warning about the missing history")
	}
}

func TestLeadTimeWindowExcludesOldPOs(t *testing.T) {
	cfg := testConfig()
	po, rc := poPair("SKU-1", 1, testToday.AddDate(-3, 0, 0), 15, "V")
	got, _ := EstimateLeadTimes(cfg, []domain.PORow{po}, []domain.ReceiptRow{rc})
	if _, ok := got["SKU-1"]; ok {
		t.Error("PO older than the lookback window must not contribute")
	}
}

func TestMedian(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{5}, 5},
		{[]float64{1, 3}, 2},
		{[]float64{3, 1, 2}, 2},
		{[]float64{10, 11, 12, 12, 13, 50}, 12},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := median(tc.in); got != tc.want {
			t.Errorf("median(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDefaultLeadTime(t *testing.T) {
	cfg := testConfig()
	stat := DefaultLeadTime(cfg, "SKU-X")
	if stat.LeadTimeDays != 90 {
		t.Errorf("default lead time = %v, want 90", stat.LeadTimeDays)
	}
	if stat.Confidence != domain.ConfidenceLow {
		t.Errorf("default confidence = %q, want Low", stat.Confidence)
	}
}
