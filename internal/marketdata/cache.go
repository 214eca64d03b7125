package marketdata

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/pkg/logger"
)

// DefaultTTL is the freshness window of a cached snapshot
const DefaultTTL = 15 * time.Minute

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// Fetcher loads raw financials for one ticker
type Fetcher func(ctx context.Context, ticker string) (*contracts.RawFinancials, error)

// CacheEntry is one memoized snapshot
type CacheEntry struct {
	Key       string
	Value     contracts.RawFinancials
	FetchedAt time.Time
}

// CacheStats are cumulative counters since construction
type CacheStats struct {
	Entries     int   `json:"entries"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	FetchErrors int64 `json:"fetch_errors"`
}

// ValuationCache memoizes provider snapshots for a fixed TTL
// ⭐ SSOT: 시장 데이터 메모이제이션은 여기서만
// 만료 항목은 다음 조회 시 제거 (백그라운드 정리 없음)
type ValuationCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	ttl     time.Duration
	clock   Clock
	group   singleflight.Group
	stats   CacheStats
	logger  *logger.Logger
}

// NewValuationCache creates a cache. ttl <= 0 selects DefaultTTL; nil clock selects SystemClock.
func NewValuationCache(ttl time.Duration, clock Clock, log *logger.Logger) *ValuationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ValuationCache{
		entries: make(map[string]*CacheEntry),
		ttl:     ttl,
		clock:   clock,
		logger:  log.Component("valuation_cache"),
	}
}

// KeyFor builds the cache key from the canonical ticker and optional parameters
func KeyFor(ticker string, params ...string) string {
	key := contracts.CanonicalTicker(ticker)
	if len(params) == 0 {
		return key
	}
	return key + "|" + strings.Join(params, "|")
}

// TTL returns the configured freshness window
func (c *ValuationCache) TTL() time.Duration {
	return c.ttl
}

// Get returns a live snapshot or fetches a fresh one.
// Fetch failures are not cached and come back wrapped in ErrDataUnavailable.
// The returned value is a copy; callers may mutate it freely.
func (c *ValuationCache) Get(ctx context.Context, ticker string, fetch Fetcher, params ...string) (contracts.RawFinancials, error) {
	ticker = contracts.CanonicalTicker(ticker)
	if ticker == "" {
		return contracts.RawFinancials{}, fmt.Errorf("%w: empty ticker", contracts.ErrInsufficientData)
	}
	key := KeyFor(ticker, params...)

	if entry, ok := c.lookup(key); ok {
		return entry.Value.Clone(), nil
	}

	// 동일 키 동시 조회는 한 번의 fetch 로 합침
	// 공유 fetch 는 첫 호출자의 취소와 분리, 각 호출자는 자기 ctx 만 기다림
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		if entry, ok := c.peek(key); ok {
			return entry, nil
		}
		return c.fill(fetchCtx, key, ticker, fetch)
	})

	select {
	case <-ctx.Done():
		return contracts.RawFinancials{}, wrapUnavailable(ticker, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return contracts.RawFinancials{}, res.Err
		}
		if res.Shared {
			c.logger.WithField("key", key).Debug("Shared in-flight fetch")
		}
		entry := res.Val.(*CacheEntry)
		return entry.Value.Clone(), nil
	}
}

// lookup checks for a live entry, evicting a stale one
func (c *ValuationCache) lookup(key string) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	if c.clock.Now().Sub(entry.FetchedAt) >= c.ttl {
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	return entry, true
}

// peek checks for a live entry without touching counters
func (c *ValuationCache) peek(key string) (*CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.clock.Now().Sub(entry.FetchedAt) >= c.ttl {
		return nil, false
	}
	return entry, true
}

func (c *ValuationCache) fill(ctx context.Context, key, ticker string, fetch Fetcher) (*CacheEntry, error) {
	fin, err := fetch(ctx, ticker)
	if err == nil && fin == nil {
		err = fmt.Errorf("provider returned no data")
	}
	if err != nil {
		c.mu.Lock()
		c.stats.FetchErrors++
		c.mu.Unlock()

		c.logger.WithTicker(ticker).WithError(err).Warn("Fetch failed, not cached")
		return nil, wrapUnavailable(ticker, err)
	}

	value := fin.Clone()
	if value.Ticker == "" {
		value.Ticker = ticker
	}

	now := c.clock.Now()
	if value.FetchedAt.IsZero() {
		value.FetchedAt = now
	}
	entry := &CacheEntry{Key: key, Value: value, FetchedAt: now}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"key":       key,
		"fcf_count": len(value.FCFSeries),
	}).Debug("Cached snapshot")

	return entry, nil
}

// Invalidate drops one key
func (c *ValuationCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge drops every stale entry and returns how many were removed
func (c *ValuationCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.FetchedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	c.stats.Evictions += int64(removed)
	return removed
}

// Len returns the number of stored entries, stale ones included
func (c *ValuationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the counters
func (c *ValuationCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// Provider returns a contracts.Provider that reads through the cache
func (c *ValuationCache) Provider(upstream contracts.Provider) contracts.Provider {
	return contracts.ProviderFunc(func(ctx context.Context, ticker string) (*contracts.RawFinancials, error) {
		fin, err := c.Get(ctx, ticker, upstream.FetchFinancials)
		if err != nil {
			return nil, err
		}
		return &fin, nil
	})
}
