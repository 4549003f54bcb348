package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/config"
	"github.com/andresuchdata/autopo-py/forecast-go/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (ForecastCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisForecastCache(client, time.Minute), mr
}

func TestRedisForecastCacheDemandRoundTrip(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()
	key := DemandKey{ProductID: "P-1", TenantID: "T-1", ForecastDays: 7, IncludeConfidence: true}

	_, ok, err := c.GetDemand(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	lower, upper := 90.5, 110.25
	want := &domain.ForecastResult{
		Predictions: []domain.ForecastPoint{
			{Date: "2026-03-11", PredictedDemand: 100, LowerBound: &lower, UpperBound: &upper},
		},
		ModelMetrics:   domain.ModelMetrics{MAE: 7, MSE: 49, R2: 0.8, Trend: 0.5},
		HistorySummary: domain.HistorySummary{DaysAnalyzed: 90, MeanDemand: 100},
	}
	require.NoError(t, c.SetDemand(ctx, key, want))

	got, ok, err := c.GetDemand(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	other := key
	other.IncludeConfidence = false
	_, ok, err = c.GetDemand(ctx, other)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisForecastCacheExpires(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()
	key := SeasonalKey{ProductID: "P-1", TenantID: "T-1", Years: 2}

	profile := &domain.SeasonalProfile{
		PeakSeasons:   []domain.SeasonIndex{{Month: "December", Index: 1.3}},
		TrendAnalysis: domain.TrendAnalysis{AnnualGrowthRate: 4.2, Direction: domain.TrendIncreasing},
	}
	require.NoError(t, c.SetSeasonal(ctx, key, profile))

	got, ok, err := c.GetSeasonal(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "December", got.PeakSeasons[0].Month)

	mr.FastForward(2 * time.Minute)

	_, ok, err = c.GetSeasonal(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisForecastCacheInvalidateAll(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, c.SetDemand(ctx, DemandKey{ProductID: "P", ForecastDays: i}, &domain.ForecastResult{}))
	}
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, c.InvalidateAll(ctx))

	assert.Equal(t, []string{"unrelated"}, mr.Keys())
}

func TestCacheKeysAreStable(t *testing.T) {
	a := buildDemandKey(DemandKey{ProductID: " ABC ", TenantID: "t", ForecastDays: 30, IncludeConfidence: true})
	b := buildDemandKey(DemandKey{ProductID: "abc", TenantID: "T", ForecastDays: 30, IncludeConfidence: true})
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, demandKeyPrefix+":"))

	c := buildDemandKey(DemandKey{ProductID: "abc", TenantID: "T", ForecastDays: 31, IncludeConfidence: true})
	assert.NotEqual(t, a, c)

	today := buildDemandKey(DemandKey{ProductID: "abc", TenantID: "T", ForecastDays: 30, AnchorDate: "2026-03-10"})
	tomorrow := buildDemandKey(DemandKey{ProductID: "abc", TenantID: "T", ForecastDays: 30, AnchorDate: "2026-03-11"})
	assert.NotEqual(t, today, tomorrow)

	s := buildSeasonalKey(SeasonalKey{ProductID: "abc", TenantID: "t", Years: 2})
	assert.True(t, strings.HasPrefix(s, seasonalKeyPrefix+":"))
}

func TestNoopForecastCache(t *testing.T) {
	c, err := NewForecastCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.SetDemand(ctx, DemandKey{ProductID: "x"}, &domain.ForecastResult{}))
	_, ok, err := c.GetDemand(ctx, DemandKey{ProductID: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.InvalidateAll(ctx))
	assert.NoError(t, c.Close())
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@localhost:6379/1"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 1, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "://nope"})
	assert.Error(t, err)

	assert.Equal(t, time.Hour, ttlFromConfig(config.CacheConfig{}))
	assert.Equal(t, 30*time.Second, ttlFromConfig(config.CacheConfig{ModelTTLSeconds: 30}))
}
