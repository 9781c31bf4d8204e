package postgres

import (
	"github.com/shopspring/decimal"

	"github.com/tj309c/supply-signals/internal/domain"
)

// Scan targets for the signal tables. The domain structs carry nested and
// derived fields the tables flatten, so the mapping is explicit.

type riskRow struct {
	SKU                     string  `db:"sku"`
	Category                string  `db:"category"`
	AvailableStock          float64 `db:"available_stock"`
	DailyDemand             float64 `db:"daily_demand"`
	VendorName              string  `db:"vendor_name"`
	LeadTimeDays            float64 `db:"lead_time_days"`
	SafetyStock             int     `db:"safety_stock"`
	ReorderPoint            int     `db:"reorder_point"`
	DaysUntilStockout       float64 `db:"days_until_stockout"`
	DaysUntilStockoutWithPO float64 `db:"days_until_stockout_with_po"`
	OpenPOQty               float64 `db:"open_po_qty"`
	BelowReorderPoint       bool    `db:"below_reorder_point"`
	RiskLevel               string  `db:"risk_level"`
	RiskScore               int     `db:"risk_score"`
	RequiresAction          bool    `db:"requires_action"`
	RecommendedOrderQty     int     `db:"recommended_order_qty"`
}

func (r riskRow) toDomain() domain.RiskAssessment {
	return domain.RiskAssessment{
		SKU:                     r.SKU,
		Category:                r.Category,
		AvailableStock:          r.AvailableStock,
		DailyDemand:             r.DailyDemand,
		HasDemand:               r.DailyDemand > 0,
		VendorName:              r.VendorName,
		LeadTimeDays:            r.LeadTimeDays,
		SafetyStock:             r.SafetyStock,
		ReorderPoint:            r.ReorderPoint,
		DaysUntilStockout:       r.DaysUntilStockout,
		DaysUntilStockoutWithPO: r.DaysUntilStockoutWithPO,
		OpenPOQty:               r.OpenPOQty,
		HasPOCoverage:           r.OpenPOQty > 0,
		StockGap:                float64(r.ReorderPoint) - r.AvailableStock,
		BelowReorderPoint:       r.BelowReorderPoint,
		RiskLevel:               domain.RiskTier(r.RiskLevel),
		RiskScore:               r.RiskScore,
		RequiresAction:          r.RequiresAction,
		RecommendedOrderQty:     r.RecommendedOrderQty,
	}
}

type scrapRow struct {
	SKU                  string          `db:"sku"`
	SkuAgeDays           int             `db:"sku_age_days"`
	DeadStock            bool            `db:"dead_stock"`
	ConservativeQty      float64         `db:"conservative_qty"`
	ConservativeValueUSD decimal.Decimal `db:"conservative_value_usd"`
	MediumQty            float64         `db:"medium_qty"`
	MediumValueUSD       decimal.Decimal `db:"medium_value_usd"`
	AggressiveQty        float64         `db:"aggressive_qty"`
	AggressiveValueUSD   decimal.Decimal `db:"aggressive_value_usd"`
}

func (r scrapRow) toDomain() domain.ScrapRecommendation {
	return domain.ScrapRecommendation{
		SKU:          r.SKU,
		SkuAgeDays:   r.SkuAgeDays,
		DeadStock:    r.DeadStock,
		Conservative: domain.ScrapLevelResult{Qty: r.ConservativeQty, ValueUSD: r.ConservativeValueUSD},
		Medium:       domain.ScrapLevelResult{Qty: r.MediumQty, ValueUSD: r.MediumValueUSD},
		Aggressive:   domain.ScrapLevelResult{Qty: r.AggressiveQty, ValueUSD: r.AggressiveValueUSD},
	}
}
