// internal/service/signal_service.go
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tj309c/supply-signals/internal/cache"
	"github.com/tj309c/supply-signals/internal/domain"
	"github.com/tj309c/supply-signals/internal/repository/postgres"
)

// SignalService sits between the API and the persisted signal tables,
// consulting the cache first. Cache failures degrade to repository reads.
type SignalService struct {
	repo  *postgres.SignalRepository
	cache cache.SignalCache
}

func NewSignalService(repo *postgres.SignalRepository, c cache.SignalCache) *SignalService {
	if c == nil {
		c = cache.NewNoopSignalCache()
	}
	return &SignalService{repo: repo, cache: c}
}

// StoreRun persists an engine run and invalidates all cached queries.
func (s *SignalService) StoreRun(ctx context.Context, set *domain.SignalSet) error {
	if err := s.repo.SaveRun(ctx, set); err != nil {
		return fmt.Errorf("store signal run: %w", err)
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate signal cache")
	}
	return nil
}

// Risk returns risk assessments matching the filter.
func (s *SignalService) Risk(ctx context.Context, filter domain.RiskFilter) ([]domain.RiskAssessment, error) {
	if items, ok, err := s.cache.GetRisk(ctx, filter); err != nil {
		log.Warn().Err(err).Msg("risk cache read failed")
	} else if ok {
		return items, nil
	}

	items, err := s.repo.ListRisk(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetRisk(ctx, filter, items); err != nil {
		log.Warn().Err(err).Msg("risk cache write failed")
	}
	return items, nil
}

// RiskSummary returns the aggregated risk counters.
func (s *SignalService) RiskSummary(ctx context.Context) (*domain.StockoutSummary, error) {
	if summary, ok, err := s.cache.GetRiskSummary(ctx); err != nil {
		log.Warn().Err(err).Msg("risk summary cache read failed")
	} else if ok {
		return summary, nil
	}

	summary, err := s.repo.RiskSummary(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetRiskSummary(ctx, *summary); err != nil {
		log.Warn().Err(err).Msg("risk summary cache write failed")
	}
	return summary, nil
}

// Scrap returns scrap recommendations matching the filter.
func (s *SignalService) Scrap(ctx context.Context, filter domain.ScrapFilter) ([]domain.ScrapRecommendation, error) {
	if items, ok, err := s.cache.GetScrap(ctx, filter); err != nil {
		log.Warn().Err(err).Msg("scrap cache read failed")
	} else if ok {
		return items, nil
	}

	items, err := s.repo.ListScrap(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetScrap(ctx, filter, items); err != nil {
		log.Warn().Err(err).Msg("scrap cache write failed")
	}
	return items, nil
}

// Classifications returns the persisted classification table.
func (s *SignalService) Classifications(ctx context.Context) ([]domain.ClassificationResult, error) {
	return s.repo.ListClassifications(ctx)
}

// Families returns the persisted supersession families keyed by current code.
func (s *SignalService) Families(ctx context.Context) (map[string]domain.CodeFamily, error) {
	return s.repo.ListFamilies(ctx)
}
