package contracts

import (
	"time"

	"github.com/google/uuid"
)

// ScoreInput is one universe member handed to the scorer
// Err 가 설정된 행은 순위에서 제외되고 플래그와 함께 보존됨
type ScoreInput struct {
	Ticker        string
	Price         *float64
	FairValue     *float64
	ROE           *float64
	RevenueGrowth *float64
	DebtToEquity  *float64
	DividendRate  *float64
	PayoutRatio   *float64
	Flags         []string
	Err           error
}

// ScoredTicker is one row of a ScoredUniverse
// nil 값은 JSON null 로 표시 (누락 표시)
type ScoredTicker struct {
	Ticker string `json:"ticker"`
	Rank   int    `json:"rank"` // 1-based, 0 when unranked

	Price         *float64 `json:"price"`
	FairValue     *float64 `json:"fair_value"`
	DividendYield *float64 `json:"dividend_yield"`

	ValueScore          *float64 `json:"value_score"`  // [0,1]
	DiscountPct         *float64 `json:"discount_pct"` // negative = premium
	QualityPercentile   *float64 `json:"quality_percentile"`
	GrowthPercentile    *float64 `json:"growth_percentile"`
	StabilityPercentile *float64 `json:"stability_percentile"`
	CompositeScore      *float64 `json:"composite_score"`

	MeetsROEThreshold    *bool `json:"meets_roe_threshold"`
	MeetsGrowthThreshold *bool `json:"meets_growth_threshold"`
	MeetsYieldThreshold  *bool `json:"meets_yield_threshold,omitempty"`
	MeetsPayoutThreshold *bool `json:"meets_payout_threshold,omitempty"`

	Flags []string `json:"flags,omitempty"`
	Error string   `json:"error,omitempty"`
}

// HasFlag reports whether the row carries flag
func (s *ScoredTicker) HasFlag(flag string) bool {
	for _, f := range s.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// ScoredUniverse is the output of one scoring pass
// ⭐ SSOT: 스코어러 → 표현 계층 전달
// 백분위는 이 유니버스 내에서만 의미가 있음
type ScoredUniverse struct {
	RunID    uuid.UUID      `json:"run_id"`
	Profile  string         `json:"profile"`
	AsOf     time.Time      `json:"as_of"`
	Ranked   []ScoredTicker `json:"ranked"`
	Unranked []ScoredTicker `json:"unranked"`
}

// Find returns the row for ticker from either list
func (u *ScoredUniverse) Find(ticker string) (*ScoredTicker, bool) {
	ticker = CanonicalTicker(ticker)
	for i := range u.Ranked {
		if u.Ranked[i].Ticker == ticker {
			return &u.Ranked[i], true
		}
	}
	for i := range u.Unranked {
		if u.Unranked[i].Ticker == ticker {
			return &u.Unranked[i], true
		}
	}
	return nil, false
}

// TopN returns at most n ranked rows
func (u *ScoredUniverse) TopN(n int) []ScoredTicker {
	if n <= 0 || n >= len(u.Ranked) {
		return u.Ranked
	}
	return u.Ranked[:n]
}

// Size is the total number of rows
func (u *ScoredUniverse) Size() int {
	return len(u.Ranked) + len(u.Unranked)
}

// DiscountView lists every row of a universe ordered by discount to fair value
// 순위와 무관하게 가격/적정가치만으로 정렬 (할인 없음은 마지막)
type DiscountView struct {
	RunID   uuid.UUID      `json:"run_id"`
	Profile string         `json:"profile"`
	AsOf    time.Time      `json:"as_of"`
	Rows    []ScoredTicker `json:"rows"`
}

// TopN returns at most n rows
func (v *DiscountView) TopN(n int) []ScoredTicker {
	if n <= 0 || n >= len(v.Rows) {
		return v.Rows
	}
	return v.Rows[:n]
}
