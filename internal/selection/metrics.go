package selection

import "github.com/fairvalue/screener/internal/contracts"

// ValueMetrics returns (valueScore, discountPct).
//
// valueScore = max((fairValue - price) / fairValue, 0) requires fairValue > 0
// and price >= 0. discountPct = (fairValue - price) / price additionally
// requires price > 0. Absent inputs yield absent outputs.
func ValueMetrics(price, fairValue *float64) (*float64, *float64) {
	if !isPresent(price) || !isPresent(fairValue) || *fairValue <= 0 || *price < 0 {
		return nil, nil
	}

	score := (*fairValue - *price) / *fairValue
	if score < 0 {
		score = 0
	}

	var discount *float64
	if *price > 0 {
		discount = contracts.Float((*fairValue - *price) / *price)
	}

	return &score, discount
}

// atLeast returns v >= threshold, absent when v is absent
func atLeast(v *float64, threshold float64) *bool {
	if !isPresent(v) {
		return nil
	}
	ok := *v >= threshold
	return &ok
}

// atMost returns v <= threshold, absent when v is absent
func atMost(v *float64, threshold float64) *bool {
	if !isPresent(v) {
		return nil
	}
	ok := *v <= threshold
	return &ok
}

// complement returns 1 - v, absent when v is absent
func complement(v *float64) *float64 {
	if !isPresent(v) {
		return nil
	}
	return contracts.Float(1 - *v)
}
