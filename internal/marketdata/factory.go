package marketdata

import (
	"context"
	"fmt"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/pkg/config"
	"github.com/fairvalue/screener/pkg/database"
	"github.com/fairvalue/screener/pkg/httputil"
	"github.com/fairvalue/screener/pkg/logger"
	"github.com/fairvalue/screener/pkg/redis"
)

// NewProvider builds the configured provider behind the Redis tier.
// The returned close func releases the provider's resources.
func NewProvider(ctx context.Context, cfg *config.Config, rdb *redis.Client, log *logger.Logger) (contracts.Provider, func(), error) {
	var (
		base    contracts.Provider
		closeFn = func() {}
	)

	switch cfg.Provider.Kind {
	case "http":
		client := httputil.New(cfg, log)
		if rdb.Enabled() {
			client.WithRateLimiter(redis.NewRateLimiter(rdb, "fairvalue"), redis.ProviderRateLimit(cfg.Provider.RPS))
		}
		base = NewHTTPProvider(client, cfg.Provider.BaseURL, log)

	case "postgres":
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect fundamentals database: %w", err)
		}
		base = NewPostgresProvider(db.Pool, log)
		closeFn = db.Close

	case "file":
		p, err := LoadFixtures(cfg.Provider.File)
		if err != nil {
			return nil, nil, err
		}
		// 로컬 파일은 Redis 계층 불필요
		return p, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}

	log.WithFields(map[string]interface{}{
		"provider":   cfg.Provider.Kind,
		"redis_tier": rdb.Enabled(),
		"cache_ttl":  cfg.Cache.TTL.String(),
		"rate_limit": cfg.Provider.RPS,
	}).Info("Market data provider ready")

	return NewRedisProvider(base, rdb, cfg.Cache.TTL, log), closeFn, nil
}
