// internal/domain/filter.go
package domain

// RiskFilter narrows a stockout-risk query from the API layer.
type RiskFilter struct {
	RiskLevels     []string `form:"risk_level"`
	Categories     []string `form:"category"`
	Vendors        []string `form:"vendor"`
	RequiresAction *bool    `form:"requires_action"`
	MinScore       *int     `form:"min_score"`
	Limit          int      `form:"limit"`
}

// ScrapFilter narrows a scrap-recommendation query.
type ScrapFilter struct {
	Level    string   `form:"level"`
	DeadOnly bool     `form:"dead_only"`
	MinQty   *float64 `form:"min_qty"`
	Limit    int      `form:"limit"`
}
