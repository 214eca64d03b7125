package screener

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/internal/marketdata"
	"github.com/fairvalue/screener/internal/philosophy"
	"github.com/fairvalue/screener/internal/selection"
	"github.com/fairvalue/screener/internal/valuation"
	"github.com/fairvalue/screener/pkg/logger"
)

// DefaultWorkers is used when Config.Workers is not positive
const DefaultWorkers = 8

// Screener sweeps a universe: fetch → DCF → score
// ⭐ SSOT: 유니버스 스크리닝 오케스트레이션은 이 패키지에서만
type Screener struct {
	provider contracts.Provider
	cache    *marketdata.ValuationCache
	calc     *valuation.Calculator
	scorer   *selection.Scorer
	workers  int
	logger   *logger.Logger
}

// Config holds screener configuration
type Config struct {
	Workers int // Number of concurrent fetch workers
}

// New creates a Screener. Every fetch goes through cache.
func New(
	provider contracts.Provider,
	cache *marketdata.ValuationCache,
	calc *valuation.Calculator,
	scorer *selection.Scorer,
	cfg Config,
	log *logger.Logger,
) *Screener {
	workers := cfg.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Screener{
		provider: provider,
		cache:    cache,
		calc:     calc,
		scorer:   scorer,
		workers:  workers,
		logger:   log.Component("screener"),
	}
}

// Valuation is the single-ticker view: snapshot, DCF and value metrics
type Valuation struct {
	Ticker      string                       `json:"ticker"`
	Profile     string                       `json:"profile"`
	Price       *float64                     `json:"price"`
	Estimate    *contracts.FairValueEstimate `json:"estimate"`
	Range       *contracts.ValueRange        `json:"range,omitempty"`
	ValueScore  *float64                     `json:"value_score"`
	DiscountPct *float64                     `json:"discount_pct"`
	Financials  contracts.RawFinancials      `json:"financials"`
}

// Value fetches one ticker and runs the DCF under profile.
// The 3x3 grid is best effort: a grid failure leaves Range nil.
func (s *Screener) Value(ctx context.Context, ticker string, profile philosophy.Profile) (*Valuation, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	fin, err := s.fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}

	est, err := s.calc.Calculate(ctx, fin, profile)
	if err != nil {
		return nil, err
	}

	v := &Valuation{
		Ticker:     fin.Ticker,
		Profile:    string(profile.Name),
		Price:      fin.Price,
		Estimate:   est,
		Financials: fin,
	}
	v.ValueScore, v.DiscountPct = selection.ValueMetrics(fin.Price, &est.PointEstimate)

	grid, err := s.calc.Grid(ctx, fin, profile, valuation.DefaultRateDelta, valuation.DefaultGrowthDelta)
	if err != nil {
		s.logger.WithTicker(fin.Ticker).WithError(err).Debug("Grid skipped")
	} else {
		v.Range = grid
	}

	return v, nil
}

// job is one ticker with its position in the canonical list
type job struct {
	index  int
	ticker string
}

// result is the scorer input built for one job
type result struct {
	index int
	input contracts.ScoreInput
}

// Run screens tickers under profile.
// Per-ticker failures end up in Unranked; only context cancellation aborts.
// Output does not depend on fetch completion order.
func (s *Screener) Run(ctx context.Context, tickers []string, profile philosophy.Profile) (*contracts.ScoredUniverse, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	// 1. Canonicalise and dedupe
	list := Canonical(tickers)
	if len(list) == 0 {
		return nil, fmt.Errorf("screen: %w: empty universe", contracts.ErrInsufficientData)
	}

	workers := s.workers
	if workers > len(list) {
		workers = len(list)
	}

	s.logger.WithFields(map[string]interface{}{
		"tickers": len(list),
		"profile": profile.Name,
		"workers": workers,
	}).Info("Starting screen")

	// 2. Create worker pool
	jobCh := make(chan job, len(list))
	resultCh := make(chan result, len(list))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID, profile, jobCh, resultCh)
		}(i)
	}

	for i, t := range list {
		jobCh <- job{index: i, ticker: t}
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// 3. Collect by index
	inputs := make([]contracts.ScoreInput, len(list))
	failCount := 0
	for r := range resultCh {
		inputs[r.index] = r.input
		if r.input.Err != nil {
			failCount++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("screen cancelled: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"success": len(list) - failCount,
		"failed":  failCount,
		"total":   len(list),
	}).Info("Fetch completed")

	// 4. Score
	return s.scorer.Score(ctx, inputs, profile)
}

// worker processes tickers until jobCh is drained or ctx is done
func (s *Screener) worker(ctx context.Context, workerID int, profile philosophy.Profile, jobCh <-chan job, resultCh chan<- result) {
	for j := range jobCh {
		select {
		case <-ctx.Done():
			resultCh <- result{index: j.index, input: contracts.ScoreInput{Ticker: j.ticker, Err: ctx.Err()}}
			continue
		default:
		}

		input := s.evaluate(ctx, j.ticker, profile)
		if input.Err != nil {
			s.logger.WithError(input.Err).WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": j.ticker,
			}).Warn("Ticker failed")
		}
		resultCh <- result{index: j.index, input: input}
	}
}

// evaluate builds the scorer input for one ticker.
// A failed DCF keeps the ticker with an absent fair value so the other axes still score.
func (s *Screener) evaluate(ctx context.Context, ticker string, profile philosophy.Profile) contracts.ScoreInput {
	fin, err := s.fetch(ctx, ticker)
	if err != nil {
		return contracts.ScoreInput{Ticker: ticker, Err: err}
	}

	in := contracts.ScoreInput{
		Ticker:        fin.Ticker,
		Price:         fin.Price,
		ROE:           fin.ROE,
		RevenueGrowth: fin.RevenueGrowth,
		DebtToEquity:  fin.DebtToEquity,
		DividendRate:  fin.DividendRate,
		PayoutRatio:   fin.PayoutRatio,
	}

	est, err := s.calc.Calculate(ctx, fin, profile)
	switch {
	case err == nil:
		in.FairValue = contracts.Float(est.PointEstimate)
		in.Flags = est.WarningCodes()
	case errors.Is(err, contracts.ErrInsufficientData), errors.Is(err, contracts.ErrInvalidAssumptions):
		in.Flags = []string{contracts.FlagDCFUnavailable}
	default:
		in.Err = err
	}
	return in
}

// fetch reads through the cache
func (s *Screener) fetch(ctx context.Context, ticker string) (contracts.RawFinancials, error) {
	return s.cache.Get(ctx, ticker, s.provider.FetchFinancials)
}

// Canonical trims, uppercases and dedupes tickers, keeping first-seen order
func Canonical(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = contracts.CanonicalTicker(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
