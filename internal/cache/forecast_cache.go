package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-py/forecast-go/internal/config"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix        = "forecast"
	demandKeyPrefix       = cacheKeyPrefix + ":demand"
	seasonalKeyPrefix     = cacheKeyPrefix + ":seasonal"
	forecastScanBatchSize = 100
)

// DemandKey identifies a cached demand forecast. AnchorDate is the day the
// prediction dates are counted from (YYYY-MM-DD).
type DemandKey struct {
	ProductID         string
	TenantID          string
	ForecastDays      int
	IncludeConfidence bool
	AnchorDate        string
}

// SeasonalKey identifies a cached seasonal profile.
type SeasonalKey struct {
	ProductID string
	TenantID  string
	Years     int
}

type ForecastCache interface {
	GetDemand(ctx context.Context, key DemandKey) (*domain.ForecastResult, bool, error)
	SetDemand(ctx context.Context, key DemandKey, result *domain.ForecastResult) error
	GetSeasonal(ctx context.Context, key SeasonalKey) (*domain.SeasonalProfile, bool, error)
	SetSeasonal(ctx context.Context, key SeasonalKey, profile *domain.SeasonalProfile) error
	InvalidateAll(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisForecastCache(client, ttl), nil
}

// NewRedisForecastCache wraps an existing client.
func NewRedisForecastCache(client *redis.Client, ttl time.Duration) ForecastCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisForecastCache{client: client, ttl: ttl}
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetDemand(ctx context.Context, key DemandKey) (*domain.ForecastResult, bool, error) {
	var result domain.ForecastResult
	ok, err := c.get(ctx, buildDemandKey(key), &result)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &result, true, nil
}

func (c *redisForecastCache) SetDemand(ctx context.Context, key DemandKey, result *domain.ForecastResult) error {
	return c.set(ctx, buildDemandKey(key), result)
}

func (c *redisForecastCache) GetSeasonal(ctx context.Context, key SeasonalKey) (*domain.SeasonalProfile, bool, error) {
	var profile domain.SeasonalProfile
	ok, err := c.get(ctx, buildSeasonalKey(key), &profile)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &profile, true, nil
}

func (c *redisForecastCache) SetSeasonal(ctx context.Context, key SeasonalKey, profile *domain.SeasonalProfile) error {
	return c.set(ctx, buildSeasonalKey(key), profile)
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, cacheKeyPrefix+":", forecastScanBatchSize)
}

func (c *redisForecastCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisForecastCache) Close() error {
	return c.client.Close()
}

func (c *redisForecastCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode forecast cache %s: %w", key, err)
	}
	return true, nil
}

func (c *redisForecastCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode forecast cache %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopForecastCache) GetDemand(ctx context.Context, key DemandKey) (*domain.ForecastResult, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetDemand(ctx context.Context, key DemandKey, result *domain.ForecastResult) error {
	return nil
}

func (n *noopForecastCache) GetSeasonal(ctx context.Context, key SeasonalKey) (*domain.SeasonalProfile, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetSeasonal(ctx context.Context, key SeasonalKey, profile *domain.SeasonalProfile) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error { return nil }
func (n *noopForecastCache) Ping(ctx context.Context) error          { return nil }
func (n *noopForecastCache) Close() error                            { return nil }

func buildDemandKey(key DemandKey) string {
	return fmt.Sprintf("%s:%s", demandKeyPrefix, hashParts([]string{
		"product_id=" + normalizeID(key.ProductID),
		"tenant_id=" + normalizeID(key.TenantID),
		fmt.Sprintf("forecast_days=%d", key.ForecastDays),
		fmt.Sprintf("include_confidence=%t", key.IncludeConfidence),
		"anchor_date=" + key.AnchorDate,
	}))
}

func buildSeasonalKey(key SeasonalKey) string {
	return fmt.Sprintf("%s:%s", seasonalKeyPrefix, hashParts([]string{
		"product_id=" + normalizeID(key.ProductID),
		"tenant_id=" + normalizeID(key.TenantID),
		fmt.Sprintf("years=%d", key.Years),
	}))
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func hashParts(parts []string) string {
	sorted := append([]string(nil), parts...)
	sort.Strings(sorted)
	sum := sha1.Sum([]byte(strings.Join(sorted, "|")))
	return hex.EncodeToString(sum[:])
}
