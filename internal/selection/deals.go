package selection

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fairvalue/screener/internal/contracts"
)

// SortMode selects how a screen result is presented
type SortMode string

const (
	SortComposite SortMode = "composite" // 철학 가중 점수 순위 (기본)
	SortDiscount  SortMode = "discount"  // 적정가치 대비 할인율 순 (deals)
)

// ParseSort resolves a sort mode name; empty selects SortComposite
func ParseSort(name string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(name))) {
	case "", SortComposite:
		return SortComposite, nil
	case SortDiscount:
		return SortDiscount, nil
	}
	return "", contracts.ValidationError{
		Field:   "sort",
		Message: "must be one of: composite, discount",
	}
}

// ByDiscount orders every row of u, ranked or not, by discountPct desc.
// Rows without a discount go last; ties break on ticker asc.
// u is not modified.
func ByDiscount(u *contracts.ScoredUniverse) *contracts.DiscountView {
	rows := make([]contracts.ScoredTicker, 0, u.Size())
	rows = append(rows, u.Ranked...)
	rows = append(rows, u.Unranked...)

	slices.SortStableFunc(rows, compareDiscount)

	return &contracts.DiscountView{
		RunID:   u.RunID,
		Profile: u.Profile,
		AsOf:    u.AsOf,
		Rows:    rows,
	}
}

// compareDiscount orders by discountPct desc (absent last), ticker asc
func compareDiscount(a, b contracts.ScoredTicker) int {
	switch {
	case a.DiscountPct != nil && b.DiscountPct == nil:
		return -1
	case a.DiscountPct == nil && b.DiscountPct != nil:
		return 1
	case a.DiscountPct != nil && b.DiscountPct != nil:
		if c := cmp.Compare(*b.DiscountPct, *a.DiscountPct); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Ticker, b.Ticker)
}
