package marketdata

import (
	"context"
	"time"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/pkg/logger"
	"github.com/fairvalue/screener/pkg/redis"
)

// RedisProvider shares snapshots across processes through Redis.
// A disabled Redis client makes it a transparent pass-through.
type RedisProvider struct {
	upstream contracts.Provider
	cache    *redis.Cache
	ttl      time.Duration
	logger   *logger.Logger
}

// NewRedisProvider decorates upstream with a Redis tier
func NewRedisProvider(upstream contracts.Provider, client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisProvider {
	if ttl <= 0 {
		ttl = redis.TTLFundamentals
	}
	return &RedisProvider{
		upstream: upstream,
		cache:    redis.NewCache(client, "fairvalue"),
		ttl:      ttl,
		logger:   log.Component("redis_provider"),
	}
}

// FetchFinancials implements contracts.Provider
func (p *RedisProvider) FetchFinancials(ctx context.Context, ticker string) (*contracts.RawFinancials, error) {
	ticker = contracts.CanonicalTicker(ticker)

	var fin contracts.RawFinancials
	err := p.cache.GetOrSet(ctx, redis.FundamentalsKey(ticker), &fin, p.ttl, func() (interface{}, error) {
		return p.upstream.FetchFinancials(ctx, ticker)
	})
	if err != nil {
		return nil, wrapUnavailable(ticker, err)
	}

	p.logger.WithTicker(ticker).Debug("Resolved through redis tier")
	return &fin, nil
}
