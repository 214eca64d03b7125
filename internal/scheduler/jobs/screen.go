package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/internal/philosophy"
	"github.com/fairvalue/screener/internal/universe"
	"github.com/fairvalue/screener/pkg/logger"
)

// Runner sweeps a ticker list under a profile
type Runner interface {
	Run(ctx context.Context, tickers []string, profile philosophy.Profile) (*contracts.ScoredUniverse, error)
}

// ScreenJob re-screens a configured universe on a schedule
// ⭐ SSOT: 주기적 스크리닝 스케줄은 이 Job에서만
// 결과는 메모리에만 보관 (영속화 없음)
type ScreenJob struct {
	runner      Runner
	universeDir string
	universe    string
	profile     philosophy.Profile
	schedule    string
	logger      *logger.Logger

	mu     sync.RWMutex
	latest *contracts.ScoredUniverse
}

// NewScreenJob creates a new screen job
func NewScreenJob(runner Runner, universeDir, universeName string, profile philosophy.Profile, schedule string, log *logger.Logger) *ScreenJob {
	return &ScreenJob{
		runner:      runner,
		universeDir: universeDir,
		universe:    universeName,
		profile:     profile,
		schedule:    schedule,
		logger:      log.Component("screen_job"),
	}
}

// Name returns the job name
func (j *ScreenJob) Name() string {
	return "screen:" + string(j.profile.Name)
}

// Schedule returns the cron schedule (with seconds)
func (j *ScreenJob) Schedule() string {
	return j.schedule
}

// Run loads the universe and screens it
func (j *ScreenJob) Run(ctx context.Context) error {
	j.logger.WithFields(map[string]interface{}{
		"universe": j.universe,
		"profile":  j.profile.Name,
	}).Info("Starting scheduled screen")

	tickers, err := universe.Load(j.universeDir, j.universe)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}

	result, err := j.runner.Run(ctx, tickers, j.profile)
	if err != nil {
		return fmt.Errorf("screen %s: %w", j.universe, err)
	}

	j.mu.Lock()
	j.latest = result
	j.mu.Unlock()

	fields := map[string]interface{}{
		"run_id":   result.RunID.String(),
		"ranked":   len(result.Ranked),
		"unranked": len(result.Unranked),
	}
	for _, row := range result.TopN(3) {
		fields[fmt.Sprintf("top_%d", row.Rank)] = row.Ticker
	}
	j.logger.WithFields(fields).Info("Scheduled screen completed")

	return nil
}

// Latest returns the most recent successful result, nil before the first run
func (j *ScreenJob) Latest() *contracts.ScoredUniverse {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.latest
}
