package contracts

import (
	"strings"
	"time"
)

// FCFPoint is one period of free cash flow
type FCFPoint struct {
	Period string  `json:"period"` // "2024", "2024Q4"
	Amount float64 `json:"amount"`
}

// RawFinancials is the provider's per-ticker snapshot
// ⭐ SSOT: 제공자 → 캐시 → 계산기 전달 스키마
// 누락 값은 nil 로 표현하며 0 으로 대체하지 않음
type RawFinancials struct {
	Ticker            string     `json:"ticker"`
	Name              string     `json:"name,omitempty"`
	FCFSeries         []FCFPoint `json:"fcf_series"` // most recent first
	Price             *float64   `json:"price"`
	SharesOutstanding *float64   `json:"shares_outstanding"`
	ROE               *float64   `json:"roe"`
	RevenueGrowth     *float64   `json:"revenue_growth"`
	DebtToEquity      *float64   `json:"debt_to_equity"`
	DividendRate      *float64   `json:"dividend_rate"`
	PayoutRatio       *float64   `json:"payout_ratio"`
	ExDividendDate    *time.Time `json:"ex_dividend_date"`
	FetchedAt         time.Time  `json:"fetched_at"`
}

// CanonicalTicker trims and uppercases a ticker symbol
func CanonicalTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Clone returns a deep copy that shares no memory with f
func (f *RawFinancials) Clone() RawFinancials {
	c := *f
	if f.FCFSeries != nil {
		c.FCFSeries = make([]FCFPoint, len(f.FCFSeries))
		copy(c.FCFSeries, f.FCFSeries)
	}
	c.Price = cloneFloat(f.Price)
	c.SharesOutstanding = cloneFloat(f.SharesOutstanding)
	c.ROE = cloneFloat(f.ROE)
	c.RevenueGrowth = cloneFloat(f.RevenueGrowth)
	c.DebtToEquity = cloneFloat(f.DebtToEquity)
	c.DividendRate = cloneFloat(f.DividendRate)
	c.PayoutRatio = cloneFloat(f.PayoutRatio)
	if f.ExDividendDate != nil {
		d := *f.ExDividendDate
		c.ExDividendDate = &d
	}
	return c
}

// Validate checks the schema constraints of a snapshot
func (f *RawFinancials) Validate() error {
	if f.Ticker == "" || f.Ticker != CanonicalTicker(f.Ticker) {
		return ValidationError{"ticker", "must be non-empty and canonical (uppercase, trimmed)"}
	}
	if f.Price != nil && *f.Price < 0 {
		return ValidationError{"price", "must be >= 0"}
	}
	if f.SharesOutstanding != nil && *f.SharesOutstanding <= 0 {
		return ValidationError{"shares_outstanding", "must be > 0"}
	}
	if f.DebtToEquity != nil && *f.DebtToEquity < 0 {
		return ValidationError{"debt_to_equity", "must be >= 0"}
	}
	if f.DividendRate != nil && *f.DividendRate < 0 {
		return ValidationError{"dividend_rate", "must be >= 0"}
	}
	return nil
}

// BaseFCF returns the most recent free cash flow
func (f *RawFinancials) BaseFCF() (float64, bool) {
	if len(f.FCFSeries) == 0 {
		return 0, false
	}
	return f.FCFSeries[0].Amount, true
}

// DividendYield is dividendRate / price, absent unless both are present and price > 0
func (f *RawFinancials) DividendYield() *float64 {
	if f.DividendRate == nil || f.Price == nil || *f.Price <= 0 {
		return nil
	}
	return Float(*f.DividendRate / *f.Price)
}
