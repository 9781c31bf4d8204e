// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MasterRow is one row of the product master extract, keyed by canonical SKU
// after code resolution. Absence of master data for a SKU degrades to
// category "Unknown" and age 0 downstream.
type MasterRow struct {
	SKU             string     `json:"sku" db:"sku"`
	Category        string     `json:"category" db:"category"`
	ActivationDate  *time.Time `json:"activation_date" db:"activation_date"`
	LifecycleStatus string     `json:"lifecycle_status" db:"lifecycle_status"`
	ExpirationDate  *time.Time `json:"expiration_date" db:"expiration_date"`
}

// InventoryRow is one raw row of the inventory snapshot. The same SKU can
// appear on multiple rows (one per storage location); rows are summed into an
// InventoryPosition during aggregation.
type InventoryRow struct {
	SKU              string
	OnHandQty        float64
	InTransitQty     float64
	UnitCost         float64
	Currency         string
	StorageLocation  string
	LocationCategory string
	Description      string
	LastInboundDate  *time.Time
	Period           string
}

// InventoryPosition is the aggregated per-canonical-SKU inventory state.
type InventoryPosition struct {
	SKU              string             `json:"sku"`
	OnHandQty        float64            `json:"on_hand_qty"`
	InTransitQty     float64            `json:"in_transit_qty"`
	UnitCost         float64            `json:"unit_cost"`
	Currency         string             `json:"currency"`
	StorageLocations []string           `json:"storage_locations"`
	Description      string             `json:"description"`
	LastInboundDate  *time.Time         `json:"last_inbound_date"`
	MonthlySnapshots map[string]float64 `json:"monthly_snapshots,omitempty"`
}

// DeliveryRow is one shipment record from the delivery history extract.
type DeliveryRow struct {
	SKU      string
	ShipDate time.Time
	Qty      float64
}

// PORow is one purchase-order creation record.
type PORow struct {
	PONumber   string
	SKU        string
	CreatedAt  time.Time
	VendorName string
	OpenQty    float64
	IsOpen     bool
}

// ReceiptRow is one inbound goods-receipt record.
type ReceiptRow struct {
	PONumber string
	SKU      string
	PostedAt time.Time
	Qty      float64
}

// SupersessionRow is one row of the material supersession table.
type SupersessionRow struct {
	CurrentCode  string
	LastOldCode  string
	OriginalCode string
}

// CodeFamily is the set of codes that refer to one product over its lifetime,
// current code first.
type CodeFamily struct {
	Current  string   `json:"current" db:"current_code"`
	OldCodes []string `json:"old_codes" db:"-"`
}

// DemandRecord holds the age-adjusted daily demand rate and demand history
// for one canonical SKU.
type DemandRecord struct {
	SKU              string             `json:"sku" db:"sku"`
	DailyDemand      float64            `json:"daily_demand" db:"daily_demand"`
	Divisor          float64            `json:"divisor" db:"divisor"`
	Excluded         bool               `json:"excluded" db:"excluded"`
	MonthlyBuckets   map[string]float64 `json:"monthly_buckets" db:"-"`
	RollingYearTotal float64            `json:"rolling_year_total" db:"rolling_year_total"`
	MonthsWithDemand int                `json:"months_with_demand" db:"months_with_demand"`
	DemandStdDev     float64            `json:"demand_std_dev" db:"demand_std_dev"`
	OrderCount       int                `json:"order_count" db:"order_count"`
}

// LeadTimeStat holds replenishment lead time statistics for one SKU derived
// from historical PO/receipt pairs.
type LeadTimeStat struct {
	SKU          string         `json:"sku" db:"sku"`
	MedianDays   float64        `json:"median_days" db:"median_days"`
	BufferDays   float64        `json:"buffer_days" db:"buffer_days"`
	LeadTimeDays float64        `json:"lead_time_days" db:"lead_time_days"`
	Observations int            `json:"observations" db:"observations"`
	Confidence   ConfidenceTier `json:"confidence" db:"confidence"`
	VendorName   string         `json:"vendor_name" db:"vendor_name"`
}

// ClassificationResult carries the DIO-driven classes for one canonical SKU.
type ClassificationResult struct {
	SKU           string          `json:"sku" db:"sku"`
	DIO           float64         `json:"dio" db:"dio"`
	MovementClass MovementClass   `json:"movement_class" db:"movement_class"`
	StockOutRisk  StockOutRisk    `json:"stock_out_risk" db:"stock_out_risk"`
	ABCClass      ABCClass        `json:"abc_class" db:"abc_class"`
	StockValueUSD decimal.Decimal `json:"stock_value_usd" db:"stock_value_usd"`
}

// ScrapLevelResult is one graduated scrap recommendation: quantity in excess
// of the level's safety-stock target and its reporting-currency value.
type ScrapLevelResult struct {
	Qty      float64         `json:"qty"`
	ValueUSD decimal.Decimal `json:"value_usd"`
}

// ScrapRecommendation holds the three graduated scrap levels for one SKU.
type ScrapRecommendation struct {
	SKU          string           `json:"sku" db:"sku"`
	SkuAgeDays   int              `json:"sku_age_days" db:"sku_age_days"`
	Conservative ScrapLevelResult `json:"conservative"`
	Medium       ScrapLevelResult `json:"medium"`
	Aggressive   ScrapLevelResult `json:"aggressive"`
	DeadStock    bool             `json:"dead_stock" db:"dead_stock"`
}

// RiskAssessment is the stockout risk prediction for one canonical SKU.
type RiskAssessment struct {
	SKU                     string   `json:"sku" db:"sku"`
	Category                string   `json:"category" db:"category"`
	OnHandQty               float64  `json:"on_hand_qty" db:"on_hand_qty"`
	InTransitQty            float64  `json:"in_transit_qty" db:"in_transit_qty"`
	AvailableStock          float64  `json:"available_stock" db:"available_stock"`
	DailyDemand             float64  `json:"daily_demand" db:"daily_demand"`
	DemandStdDev            float64  `json:"demand_std_dev" db:"demand_std_dev"`
	VendorName              string   `json:"vendor_name" db:"vendor_name"`
	LeadTimeDays            float64  `json:"lead_time_days" db:"lead_time_days"`
	SafetyStock             int      `json:"safety_stock" db:"safety_stock"`
	ReorderPoint            int      `json:"reorder_point" db:"reorder_point"`
	HasDemand               bool     `json:"has_demand" db:"has_demand"`
	DaysUntilStockout       float64  `json:"days_until_stockout" db:"days_until_stockout"`
	OpenPOQty               float64  `json:"open_po_qty" db:"open_po_qty"`
	HasPOCoverage           bool     `json:"has_po_coverage" db:"has_po_coverage"`
	DaysUntilStockoutWithPO float64  `json:"days_until_stockout_with_po" db:"days_until_stockout_with_po"`
	StockGap                float64  `json:"stock_gap" db:"stock_gap"`
	BelowReorderPoint       bool     `json:"below_reorder_point" db:"below_reorder_point"`
	RiskLevel               RiskTier `json:"risk_level" db:"risk_level"`
	RiskScore               int      `json:"risk_score" db:"risk_score"`
	RequiresAction          bool     `json:"requires_action" db:"requires_action"`
	RecommendedOrderQty     int      `json:"recommended_order_qty" db:"recommended_order_qty"`
}

// StockoutSummary aggregates a risk run for dashboard consumption.
type StockoutSummary struct {
	TotalSKUs            int     `json:"total_skus"`
	OutOfStockCount      int     `json:"out_of_stock_count"`
	CriticalCount        int     `json:"critical_count"`
	HighCount            int     `json:"high_count"`
	ModerateCount        int     `json:"moderate_count"`
	RequiresActionCount  int     `json:"requires_action_count"`
	BelowReorderCount    int     `json:"below_reorder_count"`
	NoPOCoverageCount    int     `json:"no_po_coverage_count"`
	AvgDaysUntilStockout float64 `json:"avg_days_until_stockout"`
}

// ResolverSummary reports the shape of the loaded code-family graph.
type ResolverSummary struct {
	TotalFamilies       int `json:"total_families"`
	TotalOldCodes       int `json:"total_old_codes"`
	TotalUniqueCodes    int `json:"total_unique_codes"`
	FamiliesWith2Codes  int `json:"families_with_2_codes"`
	FamiliesWith3Codes  int `json:"families_with_3_codes"`
	FamiliesWith4OrMore int `json:"families_with_4_or_more"`
}

// Snapshot is the fully materialized input set for one engine run. All SKU
// columns are canonicalized before any component consumes them.
type Snapshot struct {
	Today         time.Time
	Master        []MasterRow
	Inventory     []InventoryRow
	Deliveries    []DeliveryRow
	VendorPOs     []PORow
	Receipts      []ReceiptRow
	Supersessions []SupersessionRow
}

// SignalSet is the engine's complete output for one run.
type SignalSet struct {
	Demand          map[string]DemandRecord         `json:"demand"`
	LeadTimes       map[string]LeadTimeStat         `json:"lead_times"`
	Positions       map[string]InventoryPosition    `json:"positions"`
	Classifications []ClassificationResult          `json:"classifications"`
	Scrap           []ScrapRecommendation           `json:"scrap"`
	Risk            []RiskAssessment                `json:"risk"`
	Families        map[string]CodeFamily           `json:"families"`
	Issues          []Issue                         `json:"issues"`
}
