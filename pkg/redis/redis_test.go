package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairvalue/screener/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	assert.False(t, client.Enabled())
	assert.Nil(t, client.Redis())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	cfg := ProviderRateLimit(5)

	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed, "requests pass through when Redis is disabled")
	assert.Equal(t, cfg.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), cfg))
}

func TestProviderRateLimit(t *testing.T) {
	tests := []struct {
		rps   float64
		limit int
	}{
		{5, 5},
		{2.5, 3},
		{0, 1},
		{-1, 1},
	}

	for _, tt := range tests {
		cfg := ProviderRateLimit(tt.rps)
		if cfg.Limit != tt.limit {
			t.Errorf("ProviderRateLimit(%v).Limit = %d, want %d", tt.rps, cfg.Limit, tt.limit)
		}
		if cfg.Window != time.Second {
			t.Errorf("ProviderRateLimit(%v).Window = %v, want 1s", tt.rps, cfg.Window)
		}
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetOrSetDisabledCallsLoader(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	type snapshot struct {
		Ticker string  `json:"ticker"`
		Price  float64 `json:"price"`
	}

	calls := 0
	var got snapshot
	err := cache.GetOrSet(context.Background(), FundamentalsKey("msft"), &got, TTLFundamentals, func() (interface{}, error) {
		calls++
		return snapshot{Ticker: "MSFT", Price: 410.5}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, snapshot{Ticker: "MSFT", Price: 410.5}, got)
}

func TestCache_GetOrSetPropagatesLoaderError(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	boom := errors.New("upstream down")

	var got map[string]interface{}
	err := cache.GetOrSet(context.Background(), "k", &got, time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"FundamentalsKey canonical", FundamentalsKey(" aapl "), "fundamentals:AAPL"},
		{"FundamentalsKey upper", FundamentalsKey("BRK.B"), "fundamentals:BRK.B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}
