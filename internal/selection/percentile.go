package selection

import (
	"math"
	"slices"
	"sort"
)

// Percentiles ranks the present values of one metric within the universe.
//
// Ties use the average-rank method: a value v among n present values gets
// (less + (equal+1)/2) / n, where less counts values strictly below v and
// equal counts values equal to v (v included). Results lie in (0,1] and are
// monotone non-decreasing in the metric. Absent (nil or NaN) entries stay nil.
func Percentiles(values []*float64) []*float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if isPresent(v) {
			present = append(present, *v)
		}
	}

	out := make([]*float64, len(values))
	if len(present) == 0 {
		return out
	}

	slices.Sort(present)
	n := float64(len(present))

	for i, v := range values {
		if !isPresent(v) {
			continue
		}
		less := sort.SearchFloat64s(present, *v)
		upto := sort.Search(len(present), func(j int) bool { return present[j] > *v })
		equal := upto - less

		pct := (float64(less) + float64(equal+1)/2) / n
		out[i] = &pct
	}
	return out
}

func isPresent(v *float64) bool {
	return v != nil && !math.IsNaN(*v)
}
