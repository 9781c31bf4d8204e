// internal/engine/engine.go
package engine

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tj309c/supply-signals/internal/codes"
	"github.com/tj309c/supply-signals/internal/domain"
	"github.com/tj309c/supply-signals/pkg/logger"
)

// Engine runs the full signal computation over one input snapshot. It holds
// no state across runs; the code resolver is rebuilt per snapshot and passed
// to every stage by reference.
type Engine struct {
	cfg  Config
	conv *Converter
}

// New creates an engine with the given configuration.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:  cfg,
		conv: NewConverter(cfg.BaseCurrency, cfg.CurrencyRates),
	}
}

// Run computes the complete signal set for a snapshot. Stages degrade on bad
// or missing inputs and accumulate issues; the only returned error is a
// context cancellation.
func (e *Engine) Run(ctx context.Context, snap domain.Snapshot) (*domain.SignalSet, error) {
	cfg := e.cfg
	if !snap.Today.IsZero() {
		cfg.Today = snap.Today
	}

	resolver := codes.NewResolver(snap.Supersessions)
	var issues []domain.Issue
	issues = append(issues, resolver.Issues()...)

	master := canonicalMaster(resolver, snap.Master)
	deliveries := canonicalDeliveries(resolver, snap.Deliveries)
	pos, receipts := canonicalOrders(resolver, snap.VendorPOs, snap.Receipts)
	positions, superseded, invIssues := AggregateInventory(resolver, snap.Inventory)
	issues = append(issues, invIssues...)

	var (
		demand    map[string]domain.DemandRecord
		leadTimes map[string]domain.LeadTimeStat
		mu        sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, is := CalculateDemand(cfg, deliveries, master)
		mu.Lock()
		demand, issues = d, append(issues, is...)
		mu.Unlock()
		return gctx.Err()
	})
	g.Go(func() error {
		lt, is := EstimateLeadTimes(cfg, pos, receipts)
		mu.Lock()
		leadTimes, issues = lt, append(issues, is...)
		mu.Unlock()
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// SKUs with inventory but no shipments still get a record so every
	// downstream table is complete.
	for sku := range positions {
		if _, ok := demand[sku]; !ok {
			demand[sku] = ZeroDemandRecord(cfg, sku)
		}
	}

	classifications, is := ClassifyInventory(cfg, positions, demand, e.conv)
	issues = append(issues, is...)

	openPO := openPOQuantities(pos)

	var (
		scrap []domain.ScrapRecommendation
		risk  []domain.RiskAssessment
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		s, is := RecommendScrap(cfg, positions, demand, classifications, master, superseded, e.conv)
		mu.Lock()
		scrap, issues = s, append(issues, is...)
		mu.Unlock()
		return gctx.Err()
	})
	g.Go(func() error {
		r, is := e.predictParallel(gctx, cfg, positions, demand, leadTimes, openPO, master)
		mu.Lock()
		risk, issues = r, append(issues, is...)
		mu.Unlock()
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortRiskAssessments(risk)

	logger.Log.Info().
		Int("skus", len(positions)).
		Int("families", len(resolver.Families())).
		Int("issues", len(issues)).
		Msg("signal run complete")

	return &domain.SignalSet{
		Demand:          demand,
		LeadTimes:       leadTimes,
		Positions:       positions,
		Classifications: classifications,
		Scrap:           scrap,
		Risk:            risk,
		Families:        resolver.Families(),
		Issues:          issues,
	}, nil
}

// predictParallel shards the catalog and runs the stockout predictor over the
// shards with a bounded group. SKUs are independent; results are merged and
// sorted by the caller.
func (e *Engine) predictParallel(ctx context.Context, cfg Config, positions map[string]domain.InventoryPosition, demand map[string]domain.DemandRecord, leadTimes map[string]domain.LeadTimeStat, openPO map[string]float64, master map[string]domain.MasterRow) ([]domain.RiskAssessment, []domain.Issue) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(positions) {
		workers = len(positions)
	}
	if workers <= 1 {
		return PredictStockouts(cfg, positions, demand, leadTimes, openPO, master)
	}

	skus := make([]string, 0, len(positions))
	for sku := range positions {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	shards := make([]map[string]domain.InventoryPosition, workers)
	for i := range shards {
		shards[i] = make(map[string]domain.InventoryPosition)
	}
	for i, sku := range skus {
		shards[i%workers][sku] = positions[sku]
	}

	results := make([][]domain.RiskAssessment, workers)
	shardIssues := make([][]domain.Issue, workers)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range shards {
		g.Go(func() error {
			results[i], shardIssues[i] = PredictStockouts(cfg, shards[i], demand, leadTimes, openPO, master)
			return nil
		})
	}
	// Shard workers never return errors.
	_ = g.Wait()

	var merged []domain.RiskAssessment
	var issues []domain.Issue
	for i := range results {
		merged = append(merged, results[i]...)
		issues = append(issues, shardIssues[i]...)
	}
	return merged, issues
}

// AggregateInventory canonicalizes raw inventory rows and sums duplicates
// into one position per canonical SKU. The first nonzero unit cost and first
// nonempty currency win; storage locations accumulate; monthly snapshot rows
// fold into the period series. The returned set marks canonical SKUs whose
// stock still sits under a superseded code.
func AggregateInventory(resolver *codes.Resolver, rows []domain.InventoryRow) (map[string]domain.InventoryPosition, map[string]bool, []domain.Issue) {
	log := domain.NewIssueLog("inventory_aggregation")
	positions := make(map[string]domain.InventoryPosition)
	superseded := make(map[string]bool)

	var oldCoded []string
	for _, row := range rows {
		if row.SKU == "" {
			continue
		}
		sku := resolver.Resolve(row.SKU)
		if resolver.IsOld(row.SKU) {
			superseded[sku] = true
			oldCoded = append(oldCoded, row.SKU)
		}

		p, ok := positions[sku]
		if !ok {
			p = domain.InventoryPosition{SKU: sku}
		}
		p.OnHandQty += row.OnHandQty
		p.InTransitQty += row.InTransitQty
		if p.UnitCost == 0 && row.UnitCost != 0 {
			p.UnitCost = row.UnitCost
		}
		if p.Currency == "" && row.Currency != "" {
			p.Currency = row.Currency
		}
		if p.Description == "" && row.Description != "" {
			p.Description = row.Description
		}
		if row.StorageLocation != "" && !containsString(p.StorageLocations, row.StorageLocation) {
			p.StorageLocations = append(p.StorageLocations, row.StorageLocation)
		}
		if row.LastInboundDate != nil {
			if p.LastInboundDate == nil || row.LastInboundDate.After(*p.LastInboundDate) {
				p.LastInboundDate = row.LastInboundDate
			}
		}
		if row.Period != "" {
			if p.MonthlySnapshots == nil {
				p.MonthlySnapshots = make(map[string]float64)
			}
			p.MonthlySnapshots[row.Period] += row.OnHandQty
		}
		positions[sku] = p
	}

	sort.Strings(oldCoded)
	log.WarnKeys("stock held under superseded codes, merged into current code", dedupeSorted(oldCoded))
	return positions, superseded, log.All()
}

func canonicalMaster(resolver *codes.Resolver, rows []domain.MasterRow) map[string]domain.MasterRow {
	out := make(map[string]domain.MasterRow, len(rows))
	for _, row := range rows {
		sku := resolver.Resolve(row.SKU)
		if sku == "" {
			continue
		}
		if _, ok := out[sku]; ok {
			continue
		}
		row.SKU = sku
		out[sku] = row
	}
	return out
}

func canonicalDeliveries(resolver *codes.Resolver, rows []domain.DeliveryRow) []domain.DeliveryRow {
	out := make([]domain.DeliveryRow, 0, len(rows))
	for _, row := range rows {
		row.SKU = resolver.Resolve(row.SKU)
		out = append(out, row)
	}
	return out
}

func canonicalOrders(resolver *codes.Resolver, pos []domain.PORow, receipts []domain.ReceiptRow) ([]domain.PORow, []domain.ReceiptRow) {
	outPO := make([]domain.PORow, 0, len(pos))
	for _, row := range pos {
		row.SKU = resolver.Resolve(row.SKU)
		outPO = append(outPO, row)
	}
	outRc := make([]domain.ReceiptRow, 0, len(receipts))
	for _, row := range receipts {
		row.SKU = resolver.Resolve(row.SKU)
		outRc = append(outRc, row)
	}
	return outPO, outRc
}

func openPOQuantities(pos []domain.PORow) map[string]float64 {
	out := make(map[string]float64)
	for _, po := range pos {
		if po.IsOpen && po.OpenQty > 0 {
			out[po.SKU] += po.OpenQty
		}
	}
	return out
}

func containsString(v []string, s string) bool {
	for _, x := range v {
		if x == s {
			return true
		}
	}
	return false
}
