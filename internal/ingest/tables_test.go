// internal/ingest/tables_test.go
package ingest

import (
	"errors"
	"strings"
	"testing"
)

func records(t *testing.T, csvText string) [][]string {
	t.Helper()
	recs, err := ReadCSV(strings.NewReader(strings.TrimSpace(csvText)))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return recs
}

func TestLoadInventoryTolerantHeaders(t *testing.T) {
	// Headers renamed cosmetically: case, separators, spacing.
	recs := records(t, `
material_number,pop actual stock qty,POP Actual Stock In Transit Qty,POP Last Purchase: Price in Purch. Currency,pop-last-purchase:-currency,Storage Location
AB-100,"1,250",10,3.5,USD,Z101
AB-101,not-a-number,0,2,USD,Z503
`)
	rows, issues, err := LoadInventory(recs)
	if err != nil {
		t.Fatalf("LoadInventory: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].OnHandQty != 1250 {
		t.Errorf("comma-grouped qty = %v, want 1250", rows[0].OnHandQty)
	}
	if rows[0].LocationCategory != "on_hand" {
		t.Errorf("location category = %q, want on_hand", rows[0].LocationCategory)
	}
	if rows[1].OnHandQty != 0 {
		t.Errorf("bad qty must coerce to 0, got %v", rows[1].OnHandQty)
	}
	var coerceWarned bool
	for _, is := range issues {
		if strings.Contains(is.Message, "coerced") {
			coerceWarned = true
		}
	}
	if !coerceWarned {
		t.Error("expected a parse-failure warning")
	}
}

func TestLoadInventoryScrappedLocationWarns(t *testing.T) {
	recs := records(t, `
Material Number,POP Actual Stock Qty,Storage Location
AB-100,50,Z503
`)
	_, issues, err := LoadInventory(recs)
	if err != nil {
		t.Fatalf("LoadInventory: %v", err)
	}
	var warned bool
	for _, is := range issues {
		if len(is.Keys) > 0 && is.Keys[0] == "AB-100" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected scrapped-location warning for AB-100")
	}
}

func TestLoadInventoryMissingColumns(t *testing.T) {
	recs := records(t, `
Some Column,Another
a,b
`)
	_, _, err := LoadInventory(recs)
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("err = %v, want ErrMissingColumns", err)
	}
}

func TestLoadDeliveriesDropsDatelessRows(t *testing.T) {
	recs := records(t, `
Item - SAP Model Code,Delivery Creation Date: Date,Deliveries - TOTAL Goods Issue Qty
AB-100,2026-05-01,10
AB-100,garbage,5
AB-101,05/20/2026,7
`)
	rows, issues, err := LoadDeliveries(recs)
	if err != nil {
		t.Fatalf("LoadDeliveries: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (dateless dropped)", len(rows))
	}
	if rows[1].ShipDate.Month() != 5 || rows[1].ShipDate.Day() != 20 {
		t.Errorf("US-format date parsed as %v", rows[1].ShipDate)
	}
	if len(issues) == 0 {
		t.Error("expected dropped-row warning")
	}
}

func TestLoadVendorPOsOpenQuantity(t *testing.T) {
	recs := records(t, `
SAP Purchase Orders - Purchasing Document Number,Order Creation Date - Date,SAP Material Code,Vendor Name,Open Quantity
PO-1,2026-01-15,AB-100,ACME,25
PO-2,2026-02-01,AB-100,ACME,0
`)
	rows, _, err := LoadVendorPOs(recs)
	if err != nil {
		t.Fatalf("LoadVendorPOs: %v", err)
	}
	if !rows[0].IsOpen || rows[0].OpenQty != 25 {
		t.Errorf("PO-1 = %+v, want open with qty 25", rows[0])
	}
	if rows[1].IsOpen {
		t.Error("PO-2 with zero open quantity must not be open")
	}
}

func TestLoadReceipts(t *testing.T) {
	recs := records(t, `
Purchase Order Number,Posting Date,Material Number,POP Good Receipts Quantity
PO-1,2026-01-30,AB-100,25
,2026-01-30,AB-100,5
`)
	rows, _, err := LoadReceipts(recs)
	if err != nil {
		t.Fatalf("LoadReceipts: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 (missing PO number skipped)", len(rows))
	}
	if rows[0].Qty != 25 {
		t.Errorf("qty = %v, want 25", rows[0].Qty)
	}
}

func TestLoadSupersessions(t *testing.T) {
	recs := records(t, `
SAP Material Current,SAP Material Last Old Code,SAP Material Original Code
NEW-1,MID-1,ORIG-1
NEW-2,,
`)
	rows, _, err := LoadSupersessions(recs)
	if err != nil {
		t.Fatalf("LoadSupersessions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].OriginalCode != "ORIG-1" {
		t.Errorf("original code = %q", rows[0].OriginalCode)
	}
}

func TestLoadMasterDefaultsCategory(t *testing.T) {
	recs := records(t, `
Material Number,PLM: Level Classification 4,Activation Date (Code),PLM Current Status
AB-100,,2023-04-01,Active
`)
	rows, _, err := LoadMaster(recs)
	if err != nil {
		t.Fatalf("LoadMaster: %v", err)
	}
	if rows[0].Category != "Unknown" {
		t.Errorf("empty category = %q, want Unknown", rows[0].Category)
	}
	if rows[0].ActivationDate == nil {
		t.Error("activation date must parse")
	}
}

func TestNormalizeColumnName(t *testing.T) {
	cases := map[string]string{
		"Material Number":               "materialnumber",
		"  POP_Actual-Stock.Qty ":       "popactualstockqty",
		"Order Creation Date - Date":    "ordercreationdatedate",
		"POP Last Purchase: Currency":   "poplastpurchasecurrency",
		"Delivery Creation Date: Date":  "deliverycreationdatedate",
	}
	for in, want := range cases {
		if got := normalizeColumnName(in); got != want {
			t.Errorf("normalizeColumnName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocationCatalog(t *testing.T) {
	loc, ok := LookupLocation("z101")
	if !ok || loc.Category != "on_hand" {
		t.Errorf("LookupLocation(z101) = %+v (%v)", loc, ok)
	}
	if LocationCategory("NOPE") != "unknown" {
		t.Errorf("unknown code category = %q, want unknown", LocationCategory("NOPE"))
	}
	scrapped := LocationsByCategory("scrapped")
	if len(scrapped) != 2 || scrapped[0] != "Z501" {
		t.Errorf("scrapped locations = %v", scrapped)
	}
}
