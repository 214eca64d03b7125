package selection

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/fairvalue/screener/internal/contracts"
	"github.com/fairvalue/screener/internal/philosophy"
	"github.com/fairvalue/screener/pkg/logger"
)

// Scorer ranks a universe on value, quality, growth and stability
// ⭐ SSOT: 교차 단면 스코어링 로직은 여기서만
// 백분위는 현재 유니버스 내에서만 계산 (누락 값은 대체하지 않음)
type Scorer struct {
	logger *logger.Logger
	now    func() time.Time
	newID  func() uuid.UUID
}

// NewScorer creates a scorer
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{
		logger: log.Component("scorer"),
		now:    time.Now,
		newID:  uuid.New,
	}
}

// WithClock overrides the AsOf source
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// WithIDs overrides the RunID source
func (s *Scorer) WithIDs(newID func() uuid.UUID) *Scorer {
	s.newID = newID
	return s
}

// axis is one composite input with its profile weight
type axis struct {
	value  *float64
	weight float64
}

// Score ranks records under profile.
// Rows with Err set, and rows covering fewer than half of the profile's
// weighted axes, are returned in Unranked with flags instead of failing the run.
func (s *Scorer) Score(ctx context.Context, records []contracts.ScoreInput, profile philosophy.Profile) (*contracts.ScoredUniverse, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("score universe: %w: no records", contracts.ErrInsufficientData)
	}

	weights := profile.Weights()
	if weights.Sum() <= 0 {
		return nil, contracts.ValidationError{Field: "weights", Message: "at least one weight must be > 0"}
	}

	// 실패 행 분리, 중복 티커는 첫 항목만 사용
	seen := make(map[string]bool, len(records))
	live := make([]contracts.ScoreInput, 0, len(records))
	universe := &contracts.ScoredUniverse{
		RunID:   s.newID(),
		Profile: string(profile.Name),
		AsOf:    s.now(),
	}

	for _, rec := range records {
		rec.Ticker = contracts.CanonicalTicker(rec.Ticker)
		if seen[rec.Ticker] {
			s.logger.WithTicker(rec.Ticker).Warn("Duplicate ticker ignored")
			continue
		}
		seen[rec.Ticker] = true

		if rec.Err != nil {
			row := rawRow(rec)
			row.Flags = mergeFlags(rec.Flags, contracts.FlagFor(rec.Err))
			row.Error = rec.Err.Error()
			universe.Unranked = append(universe.Unranked, row)
			continue
		}
		live = append(live, rec)
	}

	quality := Percentiles(column(live, func(r contracts.ScoreInput) *float64 { return r.ROE }))
	growth := Percentiles(column(live, func(r contracts.ScoreInput) *float64 { return r.RevenueGrowth }))
	leverage := Percentiles(column(live, func(r contracts.ScoreInput) *float64 { return r.DebtToEquity }))

	for i, rec := range live {
		row := rawRow(rec)
		row.Flags = mergeFlags(rec.Flags)
		row.ValueScore, row.DiscountPct = ValueMetrics(rec.Price, rec.FairValue)
		row.QualityPercentile = quality[i]
		row.GrowthPercentile = growth[i]
		row.StabilityPercentile = complement(leverage[i])

		row.MeetsROEThreshold = atLeast(rec.ROE, profile.ROEThreshold)
		row.MeetsGrowthThreshold = atLeast(rec.RevenueGrowth, profile.RevenueGrowthThreshold)
		if profile.RequiredYield != nil {
			row.MeetsYieldThreshold = atLeast(row.DividendYield, *profile.RequiredYield)
		}
		if profile.MaxPayoutRatio != nil {
			row.MeetsPayoutThreshold = atMost(rec.PayoutRatio, *profile.MaxPayoutRatio)
		}

		composite, ok := compositeScore([]axis{
			{row.ValueScore, weights.Value},
			{row.QualityPercentile, weights.Quality},
			{row.GrowthPercentile, weights.Growth},
			{row.StabilityPercentile, weights.Stability},
		})
		if !ok {
			row.Flags = mergeFlags(row.Flags, contracts.FlagInsufficientCoverage)
			universe.Unranked = append(universe.Unranked, row)
			continue
		}
		row.CompositeScore = composite
		universe.Ranked = append(universe.Ranked, row)
	}

	slices.SortFunc(universe.Ranked, compareRanked)
	for i := range universe.Ranked {
		universe.Ranked[i].Rank = i + 1
	}
	slices.SortFunc(universe.Unranked, func(a, b contracts.ScoredTicker) int {
		return cmp.Compare(a.Ticker, b.Ticker)
	})

	fields := map[string]interface{}{
		"run_id":   universe.RunID.String(),
		"profile":  universe.Profile,
		"ranked":   len(universe.Ranked),
		"unranked": len(universe.Unranked),
	}
	if len(universe.Ranked) > 0 {
		fields["top_ticker"] = universe.Ranked[0].Ticker
		fields["top_score"] = *universe.Ranked[0].CompositeScore
	}
	s.logger.WithFields(fields).Info("Scoring completed")

	return universe, nil
}

// compositeScore blends the present axes with weights rescaled over them.
// Returns false when fewer than half of the weighted axes are present.
func compositeScore(axes []axis) (*float64, bool) {
	intended, present := 0, 0
	var weightSum, total float64
	for _, a := range axes {
		if a.weight <= 0 {
			continue
		}
		intended++
		if a.value == nil {
			continue
		}
		present++
		weightSum += a.weight
		total += a.weight * *a.value
	}

	if intended == 0 || present*2 < intended || weightSum <= 0 {
		return nil, false
	}
	return contracts.Float(total / weightSum), true
}

// compareRanked orders by composite desc, valueScore desc (absent last), ticker asc
func compareRanked(a, b contracts.ScoredTicker) int {
	if c := cmp.Compare(*b.CompositeScore, *a.CompositeScore); c != 0 {
		return c
	}
	switch {
	case a.ValueScore != nil && b.ValueScore == nil:
		return -1
	case a.ValueScore == nil && b.ValueScore != nil:
		return 1
	case a.ValueScore != nil && b.ValueScore != nil:
		if c := cmp.Compare(*b.ValueScore, *a.ValueScore); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Ticker, b.Ticker)
}

// rawRow copies the raw fields shown for every row
func rawRow(rec contracts.ScoreInput) contracts.ScoredTicker {
	row := contracts.ScoredTicker{
		Ticker:    rec.Ticker,
		Price:     rec.Price,
		FairValue: rec.FairValue,
	}
	if rec.DividendRate != nil && rec.Price != nil && *rec.Price > 0 {
		row.DividendYield = contracts.Float(*rec.DividendRate / *rec.Price)
	}
	return row
}

func column(records []contracts.ScoreInput, get func(contracts.ScoreInput) *float64) []*float64 {
	out := make([]*float64, len(records))
	for i, r := range records {
		out[i] = get(r)
	}
	return out
}

// mergeFlags appends non-empty flags without duplicates, preserving order
func mergeFlags(base []string, extra ...string) []string {
	var out []string
	for _, f := range append(slices.Clone(base), extra...) {
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
