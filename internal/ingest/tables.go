// internal/ingest/tables.go
package ingest

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tj309c/supply-signals/internal/domain"
)

// ErrMissingColumns marks a table whose required columns are absent. The
// caller treats the table as empty and lets downstream stages degrade.
var ErrMissingColumns = errors.New("required columns missing")

func missingColumns(table string, names ...string) error {
	return fmt.Errorf("%s: %w: %v", table, ErrMissingColumns, names)
}

// LoadMaster parses the product master extract.
func LoadMaster(records [][]string) ([]domain.MasterRow, []domain.Issue, error) {
	log := domain.NewIssueLog("ingest_master")
	if len(records) == 0 {
		return nil, log.All(), missingColumns("master", "Material Number")
	}
	header := records[0]
	idxSKU := colIndex(header, "Material Number")
	if idxSKU < 0 {
		return nil, log.All(), missingColumns("master", "Material Number")
	}
	idxCategory := colIndex(header, "PLM: Level Classification 4")
	idxActivation := colIndex(header, "Activation Date (Code)")
	idxStatus := colIndex(header, "PLM Current Status")
	idxExpiration := colIndex(header, "PLM Expiration Date")

	var dateFailures int
	out := make([]domain.MasterRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		sku := field(rec, idxSKU)
		if sku == "" {
			continue
		}
		row := domain.MasterRow{
			SKU:             sku,
			Category:        field(rec, idxCategory),
			LifecycleStatus: field(rec, idxStatus),
			ActivationDate:  parseDate(field(rec, idxActivation), &dateFailures),
			ExpirationDate:  parseDate(field(rec, idxExpiration), &dateFailures),
		}
		if row.Category == "" {
			row.Category = "Unknown"
		}
		out = append(out, row)
	}
	if dateFailures > 0 {
		log.Warnf("%d unparseable date(s) coerced to empty", dateFailures)
	}
	return out, log.All(), nil
}

// LoadInventory parses the inventory snapshot. Stock sitting in scrapped
// locations is loaded but flagged, since it should already be written off.
func LoadInventory(records [][]string) ([]domain.InventoryRow, []domain.Issue, error) {
	log := domain.NewIssueLog("ingest_inventory")
	if len(records) == 0 {
		return nil, log.All(), missingColumns("inventory", "Material Number", "POP Actual Stock Qty")
	}
	header := records[0]
	idxSKU := colIndex(header, "Material Number")
	idxOnHand := colIndex(header, "POP Actual Stock Qty")
	if idxSKU < 0 || idxOnHand < 0 {
		return nil, log.All(), missingColumns("inventory", "Material Number", "POP Actual Stock Qty")
	}
	idxTransit := colIndex(header, "POP Actual Stock in Transit Qty")
	idxCost := colIndex(header, "POP Last Purchase: Price in Purch. Currency")
	idxCurrency := colIndex(header, "POP Last Purchase: Currency")
	idxLocation := colIndex(header, "Storage Location")
	idxDesc := colIndex(header, "Material Desc")
	idxInbound := colIndex(header, "Last Inbound Date")
	idxPeriod := colIndex(header, "Period")

	var numFailures, dateFailures int
	var scrappedStock []string
	out := make([]domain.InventoryRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		sku := field(rec, idxSKU)
		if sku == "" {
			continue
		}
		row := domain.InventoryRow{
			SKU:             sku,
			OnHandQty:       parseFloat(field(rec, idxOnHand), &numFailures),
			InTransitQty:    parseFloat(field(rec, idxTransit), &numFailures),
			UnitCost:        parseFloat(field(rec, idxCost), &numFailures),
			Currency:        field(rec, idxCurrency),
			StorageLocation: field(rec, idxLocation),
			Description:     field(rec, idxDesc),
			LastInboundDate: parseDate(field(rec, idxInbound), &dateFailures),
			Period:          field(rec, idxPeriod),
		}
		row.LocationCategory = LocationCategory(row.StorageLocation)
		if row.LocationCategory == "scrapped" && row.OnHandQty > 0 {
			scrappedStock = append(scrappedStock, sku)
		}
		out = append(out, row)
	}
	if numFailures > 0 {
		log.Warnf("%d non-numeric quantity/cost cell(s) coerced to 0", numFailures)
	}
	if dateFailures > 0 {
		log.Warnf("%d unparseable date(s) coerced to empty", dateFailures)
	}
	sort.Strings(scrappedStock)
	log.WarnKeys("stock recorded in scrapped locations", dedupe(scrappedStock))
	return out, log.All(), nil
}

// LoadDeliveries parses the shipment history extract.
func LoadDeliveries(records [][]string) ([]domain.DeliveryRow, []domain.Issue, error) {
	log := domain.NewIssueLog("ingest_deliveries")
	required := []string{"Item - SAP Model Code", "Delivery Creation Date: Date", "Deliveries - TOTAL Goods Issue Qty"}
	if len(records) == 0 {
		return nil, log.All(), missingColumns("deliveries", required...)
	}
	header := records[0]
	idxSKU := colIndex(header, required[0])
	idxDate := colIndex(header, required[1])
	idxQty := colIndex(header, required[2])
	if idxSKU < 0 || idxDate < 0 || idxQty < 0 {
		return nil, log.All(), missingColumns("deliveries", required...)
	}

	var numFailures, dateFailures, dateless int
	out := make([]domain.DeliveryRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		sku := field(rec, idxSKU)
		if sku == "" {
			continue
		}
		when := parseDate(field(rec, idxDate), &dateFailures)
		if when == nil {
			dateless++
			continue
		}
		out = append(out, domain.DeliveryRow{
			SKU:      sku,
			ShipDate: *when,
			Qty:      parseFloat(field(rec, idxQty), &numFailures),
		})
	}
	if numFailures > 0 {
		log.Warnf("%d non-numeric quantity cell(s) coerced to 0", numFailures)
	}
	if dateless > 0 {
		log.Warnf("%d delivery row(s) without a usable ship date dropped", dateless)
	}
	return out, log.All(), nil
}

// LoadVendorPOs parses the purchase order history extract.
func LoadVendorPOs(records [][]string) ([]domain.PORow, []domain.Issue, error) {
	log := domain.NewIssueLog("ingest_vendor_pos")
	required := []string{"SAP Purchase Orders - Purchasing Document Number", "Order Creation Date - Date", "SAP Material Code"}
	if len(records) == 0 {
		return nil, log.All(), missingColumns("vendor_pos", required...)
	}
	header := records[0]
	idxPO := colIndex(header, required[0])
	idxDate := colIndex(header, required[1])
	idxSKU := colIndex(header, required[2])
	if idxPO < 0 || idxDate < 0 || idxSKU < 0 {
		return nil, log.All(), missingColumns("vendor_pos", required...)
	}
	idxVendor := colIndex(header, "Vendor Name")
	idxOpenQty := colIndex(header, "Open Quantity")

	var numFailures, dateless int
	out := make([]domain.PORow, 0, len(records)-1)
	for _, rec := range records[1:] {
		po := field(rec, idxPO)
		sku := field(rec, idxSKU)
		if po == "" || sku == "" {
			continue
		}
		when := parseDate(field(rec, idxDate), nil)
		if when == nil {
			dateless++
			continue
		}
		openQty := parseFloat(field(rec, idxOpenQty), &numFailures)
		out = append(out, domain.PORow{
			PONumber:   po,
			SKU:        sku,
			CreatedAt:  *when,
			VendorName: field(rec, idxVendor),
			OpenQty:    openQty,
			IsOpen:     openQty > 0,
		})
	}
	if numFailures > 0 {
		log.Warnf("%d non-numeric open quantity cell(s) coerced to 0", numFailures)
	}
	if dateless > 0 {
		log.Warnf("%d PO row(s) without a usable creation date dropped", dateless)
	}
	return out, log.All(), nil
}

// LoadReceipts parses the inbound goods receipt extract.
func LoadReceipts(records [][]string) ([]domain.ReceiptRow, []domain.Issue, error) {
	log := domain.NewIssueLog("ingest_receipts")
	required := []string{"Purchase Order Number", "Posting Date", "Material Number"}
	if len(records) == 0 {
		return nil, log.All(), missingColumns("receipts", required...)
	}
	header := records[0]
	idxPO := colIndex(header, required[0])
	idxDate := colIndex(header, required[1])
	idxSKU := colIndex(header, required[2])
	if idxPO < 0 || idxDate < 0 || idxSKU < 0 {
		return nil, log.All(), missingColumns("receipts", required...)
	}
	idxQty := colIndex(header, "POP Good Receipts Quantity")

	var numFailures, dateless int
	out := make([]domain.ReceiptRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		po := field(rec, idxPO)
		sku := field(rec, idxSKU)
		if po == "" || sku == "" {
			continue
		}
		when := parseDate(field(rec, idxDate), nil)
		if when == nil {
			dateless++
			continue
		}
		out = append(out, domain.ReceiptRow{
			PONumber: po,
			SKU:      sku,
			PostedAt: *when,
			Qty:      parseFloat(field(rec, idxQty), &numFailures),
		})
	}
	if numFailures > 0 {
		log.Warnf("%d non-numeric receipt quantity cell(s) coerced to 0", numFailures)
	}
	if dateless > 0 {
		log.Warnf("%d receipt row(s) without a usable posting date dropped", dateless)
	}
	return out, log.All(), nil
}

// LoadSupersessions parses the material supersession table.
func LoadSupersessions(records [][]string) ([]domain.SupersessionRow, []domain.Issue, error) {
	log := domain.NewIssueLog("ingest_supersessions")
	if len(records) == 0 {
		return nil, log.All(), missingColumns("supersessions", "SAP Material Current")
	}
	header := records[0]
	idxCurrent := colIndex(header, "SAP Material Current")
	if idxCurrent < 0 {
		return nil, log.All(), missingColumns("supersessions", "SAP Material Current")
	}
	idxLastOld := colIndex(header, "SAP Material Last Old Code")
	idxOriginal := colIndex(header, "SAP Material Original Code")

	out := make([]domain.SupersessionRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		out = append(out, domain.SupersessionRow{
			CurrentCode:  field(rec, idxCurrent),
			LastOldCode:  field(rec, idxLastOld),
			OriginalCode: field(rec, idxOriginal),
		})
	}
	return out, log.All(), nil
}

func dedupe(v []string) []string {
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
