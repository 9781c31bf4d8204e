package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/tj309c/supply-signals/internal/domain"
)

// SignalRepository persists the output of an engine run and serves the
// filtered queries behind the API. Each run replaces the previous signal
// tables; history stays in signal_runs.
type SignalRepository struct {
	db *DB
}

func NewSignalRepository(db *DB) *SignalRepository {
	return &SignalRepository{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS signal_runs (
	id          BIGSERIAL PRIMARY KEY,
	run_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	sku_count   INT NOT NULL,
	issue_count INT NOT NULL
);

CREATE TABLE IF NOT EXISTS stockout_risk (
	sku                    TEXT PRIMARY KEY,
	category               TEXT NOT NULL,
	available_stock        DOUBLE PRECISION NOT NULL,
	daily_demand           DOUBLE PRECISION NOT NULL,
	vendor_name            TEXT NOT NULL DEFAULT '',
	lead_time_days         DOUBLE PRECISION NOT NULL,
	safety_stock           INT NOT NULL,
	reorder_point          INT NOT NULL,
	days_until_stockout    DOUBLE PRECISION NOT NULL,
	days_with_po           DOUBLE PRECISION NOT NULL,
	open_po_qty            DOUBLE PRECISION NOT NULL,
	below_reorder_point    BOOLEAN NOT NULL,
	risk_level             TEXT NOT NULL,
	risk_score             INT NOT NULL,
	requires_action        BOOLEAN NOT NULL,
	recommended_order_qty  INT NOT NULL
);

CREATE TABLE IF NOT EXISTS scrap_recommendations (
	sku                     TEXT PRIMARY KEY,
	sku_age_days            INT NOT NULL,
	dead_stock              BOOLEAN NOT NULL,
	conservative_qty        DOUBLE PRECISION NOT NULL,
	conservative_value_usd  NUMERIC(18,2) NOT NULL,
	medium_qty              DOUBLE PRECISION NOT NULL,
	medium_value_usd        NUMERIC(18,2) NOT NULL,
	aggressive_qty          DOUBLE PRECISION NOT NULL,
	aggressive_value_usd    NUMERIC(18,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS classifications (
	sku             TEXT PRIMARY KEY,
	dio             DOUBLE PRECISION NOT NULL,
	movement_class  TEXT NOT NULL,
	stock_out_risk  TEXT NOT NULL,
	abc_class       TEXT NOT NULL,
	stock_value_usd NUMERIC(18,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS code_families (
	old_code     TEXT PRIMARY KEY,
	current_code TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stockout_risk_level ON stockout_risk (risk_level);
CREATE INDEX IF NOT EXISTS idx_stockout_risk_score ON stockout_risk (risk_score DESC);
CREATE INDEX IF NOT EXISTS idx_code_families_current ON code_families (current_code);
`

// Migrate creates the signal tables.
func (r *SignalRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate signal tables: %w", err)
	}
	return nil
}

// SaveRun replaces the signal tables with the results of one engine run.
func (r *SignalRepository) SaveRun(ctx context.Context, set *domain.SignalSet) error {
	start := time.Now()
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"stockout_risk", "scrap_recommendations", "classifications", "code_families"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		if err := insertRisk(ctx, tx, set.Risk); err != nil {
			return err
		}
		if err := insertScrap(ctx, tx, set.Scrap); err != nil {
			return err
		}
		if err := insertClassifications(ctx, tx, set.Classifications); err != nil {
			return err
		}
		if err := insertFamilies(ctx, tx, set.Families); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO signal_runs (sku_count, issue_count) VALUES ($1, $2)`,
			len(set.Positions), len(set.Issues))
		return err
	})
	if err != nil {
		return err
	}
	log.Info().
		Int("skus", len(set.Positions)).
		Dur("elapsed", time.Since(start)).
		Msg("signal run persisted")
	return nil
}

func insertRisk(ctx context.Context, tx *sql.Tx, items []domain.RiskAssessment) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stockout_risk (
			sku, category, available_stock, daily_demand, vendor_name,
			lead_time_days, safety_stock, reorder_point, days_until_stockout,
			days_with_po, open_po_qty, below_reorder_point, risk_level,
			risk_score, requires_action, recommended_order_qty
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`)
	if err != nil {
		return fmt.Errorf("prepare risk insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range items {
		if _, err := stmt.ExecContext(ctx,
			a.SKU, a.Category, a.AvailableStock, a.DailyDemand, a.VendorName,
			a.LeadTimeDays, a.SafetyStock, a.ReorderPoint, a.DaysUntilStockout,
			a.DaysUntilStockoutWithPO, a.OpenPOQty, a.BelowReorderPoint, a.RiskLevel,
			a.RiskScore, a.RequiresAction, a.RecommendedOrderQty,
		); err != nil {
			return fmt.Errorf("insert risk %s: %w", a.SKU, err)
		}
	}
	return nil
}

func insertScrap(ctx context.Context, tx *sql.Tx, items []domain.ScrapRecommendation) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scrap_recommendations (
			sku, sku_age_days, dead_stock,
			conservative_qty, conservative_value_usd,
			medium_qty, medium_value_usd,
			aggressive_qty, aggressive_value_usd
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`)
	if err != nil {
		return fmt.Errorf("prepare scrap insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range items {
		if _, err := stmt.ExecContext(ctx,
			s.SKU, s.SkuAgeDays, s.DeadStock,
			s.Conservative.Qty, s.Conservative.ValueUSD,
			s.Medium.Qty, s.Medium.ValueUSD,
			s.Aggressive.Qty, s.Aggressive.ValueUSD,
		); err != nil {
			return fmt.Errorf("insert scrap %s: %w", s.SKU, err)
		}
	}
	return nil
}

func insertClassifications(ctx context.Context, tx *sql.Tx, items []domain.ClassificationResult) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO classifications (sku, dio, movement_class, stock_out_risk, abc_class, stock_value_usd)
		VALUES ($1,$2,$3,$4,$5,$6)`)
	if err != nil {
		return fmt.Errorf("prepare classification insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range items {
		if _, err := stmt.ExecContext(ctx,
			c.SKU, c.DIO, c.MovementClass, c.StockOutRisk, c.ABCClass, c.StockValueUSD,
		); err != nil {
			return fmt.Errorf("insert classification %s: %w", c.SKU, err)
		}
	}
	return nil
}

func insertFamilies(ctx context.Context, tx *sql.Tx, families map[string]domain.CodeFamily) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO code_families (old_code, current_code) VALUES ($1,$2) ON CONFLICT (old_code) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare family insert: %w", err)
	}
	defer stmt.Close()

	for current, fam := range families {
		for _, old := range fam.OldCodes {
			if _, err := stmt.ExecContext(ctx, old, current); err != nil {
				return fmt.Errorf("insert family %s: %w", current, err)
			}
		}
	}
	return nil
}

// ListRisk returns risk assessments matching the filter, highest score first.
func (r *SignalRepository) ListRisk(ctx context.Context, filter domain.RiskFilter) ([]domain.RiskAssessment, error) {
	query := `
		SELECT sku, category, available_stock, daily_demand, vendor_name,
		       lead_time_days, safety_stock, reorder_point, days_until_stockout,
		       days_with_po AS days_until_stockout_with_po, open_po_qty,
		       below_reorder_point, risk_level, risk_score, requires_action,
		       recommended_order_qty
		FROM stockout_risk`
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.RiskLevels) > 0 {
		conds = append(conds, "risk_level = ANY("+arg(pq.Array(filter.RiskLevels))+")")
	}
	if len(filter.Categories) > 0 {
		conds = append(conds, "category = ANY("+arg(pq.Array(filter.Categories))+")")
	}
	if len(filter.Vendors) > 0 {
		conds = append(conds, "vendor_name = ANY("+arg(pq.Array(filter.Vendors))+")")
	}
	if filter.RequiresAction != nil {
		conds = append(conds, "requires_action = "+arg(*filter.RequiresAction))
	}
	if filter.MinScore != nil {
		conds = append(conds, "risk_score >= "+arg(*filter.MinScore))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY risk_score DESC, days_until_stockout ASC, sku ASC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	var out []riskRow
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list risk: %w", err)
	}
	items := make([]domain.RiskAssessment, len(out))
	for i, row := range out {
		items[i] = row.toDomain()
	}
	return items, nil
}

// RiskSummary aggregates the persisted risk table.
func (r *SignalRepository) RiskSummary(ctx context.Context) (*domain.StockoutSummary, error) {
	const query = `
		SELECT
			COUNT(*)                                                          AS total_skus,
			COUNT(*) FILTER (WHERE risk_level = 'Out of Stock')               AS out_of_stock_count,
			COUNT(*) FILTER (WHERE risk_level = 'Critical')                   AS critical_count,
			COUNT(*) FILTER (WHERE risk_level = 'High')                       AS high_count,
			COUNT(*) FILTER (WHERE risk_level = 'Moderate')                   AS moderate_count,
			COUNT(*) FILTER (WHERE requires_action)                           AS requires_action_count,
			COUNT(*) FILTER (WHERE below_reorder_point)                       AS below_reorder_count,
			COUNT(*) FILTER (WHERE daily_demand > 0 AND open_po_qty <= 0)     AS no_po_coverage_count,
			COALESCE(AVG(days_until_stockout) FILTER (WHERE daily_demand > 0), 0) AS avg_days_until_stockout
		FROM stockout_risk`

	var s struct {
		TotalSKUs            int     `db:"total_skus"`
		OutOfStockCount      int     `db:"out_of_stock_count"`
		CriticalCount        int     `db:"critical_count"`
		HighCount            int     `db:"high_count"`
		ModerateCount        int     `db:"moderate_count"`
		RequiresActionCount  int     `db:"requires_action_count"`
		BelowReorderCount    int     `db:"below_reorder_count"`
		NoPOCoverageCount    int     `db:"no_po_coverage_count"`
		AvgDaysUntilStockout float64 `db:"avg_days_until_stockout"`
	}
	if err := r.db.GetContext(ctx, &s, query); err != nil {
		return nil, fmt.Errorf("risk summary: %w", err)
	}
	return &domain.StockoutSummary{
		TotalSKUs:            s.TotalSKUs,
		OutOfStockCount:      s.OutOfStockCount,
		CriticalCount:        s.CriticalCount,
		HighCount:            s.HighCount,
		ModerateCount:        s.ModerateCount,
		RequiresActionCount:  s.RequiresActionCount,
		BelowReorderCount:    s.BelowReorderCount,
		NoPOCoverageCount:    s.NoPOCoverageCount,
		AvgDaysUntilStockout: s.AvgDaysUntilStockout,
	}, nil
}

// ListScrap returns scrap recommendations matching the filter, largest
// aggressive quantity first.
func (r *SignalRepository) ListScrap(ctx context.Context, filter domain.ScrapFilter) ([]domain.ScrapRecommendation, error) {
	query := `
		SELECT sku, sku_age_days, dead_stock,
		       conservative_qty, conservative_value_usd,
		       medium_qty, medium_value_usd,
		       aggressive_qty, aggressive_value_usd
		FROM scrap_recommendations`
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	qtyColumn := "aggressive_qty"
	switch strings.ToLower(filter.Level) {
	case "conservative":
		qtyColumn = "conservative_qty"
	case "medium":
		qtyColumn = "medium_qty"
	}
	if filter.DeadOnly {
		conds = append(conds, "dead_stock")
	}
	if filter.MinQty != nil {
		conds = append(conds, qtyColumn+" >= "+arg(*filter.MinQty))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + qtyColumn + " DESC, sku ASC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	var out []scrapRow
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list scrap: %w", err)
	}
	items := make([]domain.ScrapRecommendation, len(out))
	for i, row := range out {
		items[i] = row.toDomain()
	}
	return items, nil
}

// ListFamilies rebuilds the code-family map from the persisted pairs.
func (r *SignalRepository) ListFamilies(ctx context.Context) (map[string]domain.CodeFamily, error) {
	var pairs []struct {
		OldCode     string `db:"old_code"`
		CurrentCode string `db:"current_code"`
	}
	const query = `SELECT old_code, current_code FROM code_families ORDER BY current_code, old_code`
	if err := r.db.SelectContext(ctx, &pairs, query); err != nil {
		return nil, fmt.Errorf("list code families: %w", err)
	}

	families := make(map[string]domain.CodeFamily)
	for _, p := range pairs {
		fam := families[p.CurrentCode]
		fam.Current = p.CurrentCode
		fam.OldCodes = append(fam.OldCodes, p.OldCode)
		families[p.CurrentCode] = fam
	}
	return families, nil
}

// ListClassifications returns the persisted classification table.
func (r *SignalRepository) ListClassifications(ctx context.Context) ([]domain.ClassificationResult, error) {
	var out []domain.ClassificationResult
	const query = `
		SELECT sku, dio, movement_class, stock_out_risk, abc_class, stock_value_usd
		FROM classifications ORDER BY sku`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("list classifications: %w", err)
	}
	return out, nil
}
