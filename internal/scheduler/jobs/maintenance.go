package jobs

import (
	"context"

	"github.com/fairvalue/screener/internal/marketdata"
	"github.com/fairvalue/screener/pkg/logger"
)

// CachePurgeJob drops stale snapshots from the valuation cache.
// Reads already evict lazily; this only bounds memory for tickers never read again.
type CachePurgeJob struct {
	cache  *marketdata.ValuationCache
	logger *logger.Logger
}

// NewCachePurgeJob creates a new cache purge job
func NewCachePurgeJob(cache *marketdata.ValuationCache, log *logger.Logger) *CachePurgeJob {
	return &CachePurgeJob{
		cache:  cache,
		logger: log.Component("cache_purge"),
	}
}

// Name returns the job name
func (j *CachePurgeJob) Name() string {
	return "cache_purge"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CachePurgeJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the purge
func (j *CachePurgeJob) Run(ctx context.Context) error {
	count := j.cache.Purge()

	if count > 0 {
		stats := j.cache.Stats()
		j.logger.WithFields(map[string]interface{}{
			"removed": count,
			"entries": stats.Entries,
			"hits":    stats.Hits,
			"misses":  stats.Misses,
		}).Info("Cache purge completed")
	}

	return nil
}
