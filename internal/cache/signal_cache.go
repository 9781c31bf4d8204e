package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tj309c/supply-signals/internal/config"
	"github.com/tj309c/supply-signals/internal/domain"
)

const (
	riskKeyPrefix        = "signals:risk"
	riskSummaryKey       = "signals:risk_summary"
	scrapKeyPrefix       = "signals:scrap"
	signalCacheScanBatch = 100
)

// SignalCache caches filtered query results between engine runs. A run
// invalidates everything; queries within a run window are served hot.
type SignalCache interface {
	GetRisk(ctx context.Context, filter domain.RiskFilter) ([]domain.RiskAssessment, bool, error)
	SetRisk(ctx context.Context, filter domain.RiskFilter, items []domain.RiskAssessment) error
	GetRiskSummary(ctx context.Context) (*domain.StockoutSummary, bool, error)
	SetRiskSummary(ctx context.Context, summary domain.StockoutSummary) error
	GetScrap(ctx context.Context, filter domain.ScrapFilter) ([]domain.ScrapRecommendation, bool, error)
	SetScrap(ctx context.Context, filter domain.ScrapFilter, items []domain.ScrapRecommendation) error
	InvalidateAll(ctx context.Context) error
}

type redisSignalCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSignalCache struct{}

// NewSignalCache returns a redis-backed cache when enabled, a noop otherwise.
func NewSignalCache(cfg config.CacheConfig) (SignalCache, error) {
	if !cfg.Enabled {
		return &noopSignalCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSignalCache{client: client, ttl: ttl}, nil
}

func NewNoopSignalCache() SignalCache {
	return &noopSignalCache{}
}

func (c *redisSignalCache) GetRisk(ctx context.Context, filter domain.RiskFilter) ([]domain.RiskAssessment, bool, error) {
	var items []domain.RiskAssessment
	ok, err := c.get(ctx, riskKey(filter), &items)
	return items, ok, err
}

func (c *redisSignalCache) SetRisk(ctx context.Context, filter domain.RiskFilter, items []domain.RiskAssessment) error {
	return c.set(ctx, riskKey(filter), items)
}

func (c *redisSignalCache) GetRiskSummary(ctx context.Context) (*domain.StockoutSummary, bool, error) {
	var summary domain.StockoutSummary
	ok, err := c.get(ctx, riskSummaryKey, &summary)
	if !ok || err != nil {
		return nil, ok, err
	}
	return &summary, true, nil
}

func (c *redisSignalCache) SetRiskSummary(ctx context.Context, summary domain.StockoutSummary) error {
	return c.set(ctx, riskSummaryKey, summary)
}

func (c *redisSignalCache) GetScrap(ctx context.Context, filter domain.ScrapFilter) ([]domain.ScrapRecommendation, bool, error) {
	var items []domain.ScrapRecommendation
	ok, err := c.get(ctx, scrapKey(filter), &items)
	return items, ok, err
}

func (c *redisSignalCache) SetScrap(ctx context.Context, filter domain.ScrapFilter, items []domain.ScrapRecommendation) error {
	return c.set(ctx, scrapKey(filter), items)
}

func (c *redisSignalCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, "signals:", signalCacheScanBatch)
}

func (c *redisSignalCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode signal cache: %w", err)
	}
	return true, nil
}

func (c *redisSignalCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode signal cache: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopSignalCache) GetRisk(ctx context.Context, filter domain.RiskFilter) ([]domain.RiskAssessment, bool, error) {
	return nil, false, nil
}

func (n *noopSignalCache) SetRisk(ctx context.Context, filter domain.RiskFilter, items []domain.RiskAssessment) error {
	return nil
}

func (n *noopSignalCache) GetRiskSummary(ctx context.Context) (*domain.StockoutSummary, bool, error) {
	return nil, false, nil
}

func (n *noopSignalCache) SetRiskSummary(ctx context.Context, summary domain.StockoutSummary) error {
	return nil
}

func (n *noopSignalCache) GetScrap(ctx context.Context, filter domain.ScrapFilter) ([]domain.ScrapRecommendation, bool, error) {
	return nil, false, nil
}

func (n *noopSignalCache) SetScrap(ctx context.Context, filter domain.ScrapFilter, items []domain.ScrapRecommendation) error {
	return nil
}

func (n *noopSignalCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func riskKey(filter domain.RiskFilter) string {
	parts := []string{}
	if len(filter.RiskLevels) > 0 {
		parts = append(parts, "risk_level="+joinStrings(filter.RiskLevels))
	}
	if len(filter.Categories) > 0 {
		parts = append(parts, "category="+joinStrings(filter.Categories))
	}
	if len(filter.Vendors) > 0 {
		parts = append(parts, "vendor="+joinStrings(filter.Vendors))
	}
	if filter.RequiresAction != nil {
		parts = append(parts, fmt.Sprintf("requires_action=%t", *filter.RequiresAction))
	}
	if filter.MinScore != nil {
		parts = append(parts, fmt.Sprintf("min_score=%d", *filter.MinScore))
	}
	if filter.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", filter.Limit))
	}
	return fmt.Sprintf("%s:%s", riskKeyPrefix, hashParts(parts))
}

func scrapKey(filter domain.ScrapFilter) string {
	parts := []string{}
	if filter.Level != "" {
		parts = append(parts, "level="+strings.ToLower(strings.TrimSpace(filter.Level)))
	}
	if filter.DeadOnly {
		parts = append(parts, "dead_only=true")
	}
	if filter.MinQty != nil {
		parts = append(parts, fmt.Sprintf("min_qty=%.2f", *filter.MinQty))
	}
	if filter.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", filter.Limit))
	}
	return fmt.Sprintf("%s:%s", scrapKeyPrefix, hashParts(parts))
}

func hashParts(parts []string) string {
	if len(parts) == 0 {
		return "default"
	}
	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinStrings(values []string) string {
	c := append([]string(nil), values...)
	for i := range c {
		c[i] = strings.TrimSpace(strings.ToLower(c[i]))
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
