package marketdata

import (
	"cmp"
	"slices"
	"time"

	"github.com/fairvalue/screener/internal/contracts"
)

// fundamentalsDTO is the wire shape shared by the HTTP API and fixture files
type fundamentalsDTO struct {
	Ticker            string               `json:"ticker"`
	Name              string               `json:"name"`
	Price             *float64             `json:"price"`
	SharesOutstanding *float64             `json:"shares_outstanding"`
	ROE               *float64             `json:"roe"`
	RevenueGrowth     *float64             `json:"revenue_growth"`
	DebtToEquity      *float64             `json:"debt_to_equity"`
	DividendRate      *float64             `json:"dividend_rate"`
	PayoutRatio       *float64             `json:"payout_ratio"`
	ExDividendDate    string               `json:"ex_dividend_date"` // YYYY-MM-DD
	FreeCashFlow      []contracts.FCFPoint `json:"free_cash_flow"`
}

func (d *fundamentalsDTO) toFinancials() *contracts.RawFinancials {
	fin := &contracts.RawFinancials{
		Ticker:            d.Ticker,
		Name:              d.Name,
		FCFSeries:         d.FreeCashFlow,
		Price:             d.Price,
		SharesOutstanding: d.SharesOutstanding,
		ROE:               d.ROE,
		RevenueGrowth:     d.RevenueGrowth,
		DebtToEquity:      d.DebtToEquity,
		DividendRate:      d.DividendRate,
		PayoutRatio:       d.PayoutRatio,
	}
	if d.ExDividendDate != "" {
		if t, err := time.Parse("2006-01-02", d.ExDividendDate); err == nil {
			fin.ExDividendDate = &t
		}
	}
	return normalize(fin)
}

// normalize canonicalises the ticker, orders FCF most-recent-first and
// converts percent-scaled roe and revenue growth (e.g. 35 for 35%) into fractions.
// Payout ratio is kept as reported: values above 1 are real over-distribution.
func normalize(fin *contracts.RawFinancials) *contracts.RawFinancials {
	fin.Ticker = contracts.CanonicalTicker(fin.Ticker)

	slices.SortStableFunc(fin.FCFSeries, func(a, b contracts.FCFPoint) int {
		return cmp.Compare(b.Period, a.Period)
	})

	fin.ROE = fraction(fin.ROE)
	fin.RevenueGrowth = fraction(fin.RevenueGrowth)

	return fin
}

// fraction divides values above 1 by 100
func fraction(v *float64) *float64 {
	if v == nil || *v <= 1 {
		return v
	}
	return contracts.Float(*v / 100)
}
