// internal/ingest/locations.go
package ingest

import "strings"

// Location describes a warehouse storage location and whether its stock is
// usable for order fulfillment.
type Location struct {
	Code         string
	Description  string
	Status       string
	Category     string
	Availability string
}

// The location catalog is operational reference data, not configuration:
// codes are SAP storage locations with fixed meanings.
var locationCatalog = map[string]Location{
	"Z101": {Code: "Z101", Description: "DWM Main Storage", Status: "On Hand", Category: "on_hand", Availability: "available"},
	"Z106": {Code: "Z106", Description: "AFA ATL DWM WH", Status: "On Hand", Category: "on_hand", Availability: "available"},
	"Z109": {Code: "Z109", Description: "POP ATL Whs Sloc", Status: "On Hand", Category: "on_hand", Availability: "available"},
	"Z116": {Code: "Z116", Description: "STELLA Stock", Status: "On Hand", Category: "on_hand", Availability: "available"},
	"Z303": {Code: "Z303", Description: "ATL PhantomTrans", Status: "Missing", Category: "missing", Availability: "unavailable"},
	"Z307": {Code: "Z307", Description: "POP Transit : IT", Status: "Incoming from Italy", Category: "in_transit", Availability: "pending"},
	"Z308": {Code: "Z308", Description: "POP Transit China", Status: "Incoming from China", Category: "in_transit", Availability: "pending"},
	"Z401": {Code: "Z401", Description: "POP AIT", Status: "Vendor Managed", Category: "vendor_managed", Availability: "external"},
	"Z402": {Code: "Z402", Description: "POP Ryan Scott", Status: "Vendor Managed", Category: "vendor_managed", Availability: "external"},
	"Z501": {Code: "Z501", Description: "Scrap Returns", Status: "Scrapped", Category: "scrapped", Availability: "unavailable"},
	"Z503": {Code: "Z503", Description: "Write OFF S.ATL", Status: "Scrapped", Category: "scrapped", Availability: "unavailable"},
	"Z799": {Code: "Z799", Description: "Com Pool transf", Status: "Unknown", Category: "unknown", Availability: "unknown"},
}

// LookupLocation returns the catalog entry for a storage location code.
func LookupLocation(code string) (Location, bool) {
	loc, ok := locationCatalog[strings.ToUpper(strings.TrimSpace(code))]
	return loc, ok
}

// LocationCategory returns the category for a code, "unknown" for codes not
// in the catalog.
func LocationCategory(code string) string {
	if loc, ok := LookupLocation(code); ok {
		return loc.Category
	}
	return "unknown"
}

// LocationsByCategory returns the codes in a category, in catalog order.
func LocationsByCategory(category string) []string {
	var out []string
	for _, code := range catalogOrder {
		if locationCatalog[code].Category == category {
			out = append(out, code)
		}
	}
	return out
}

var catalogOrder = []string{
	"Z101", "Z106", "Z109", "Z116", "Z303", "Z307",
	"Z308", "Z401", "Z402", "Z501", "Z503", "Z799",
}
