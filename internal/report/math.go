package report

import (
	"math"
	"sort"
)

// clamp100 pins v into [0,100].
func clamp100(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// percentChange follows the legacy dashboard convention: a zero baseline
// yields 0 when current is also zero and 100 otherwise.
func percentChange(cur, prev float64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return (cur - prev) / prev * 100
}

// finiteDelta is the strict variant: nil whenever previous is non-positive,
// so "no prior data" stays distinguishable from "0% change".
func finiteDelta(cur, prev float64) *float64 {
	if prev <= 0 {
		return nil
	}
	v := (cur - prev) / prev * 100
	return &v
}

// ratio returns num/den, nil on a non-positive denominator. Never NaN or
// Inf.
func ratio(num, den float64) *float64 {
	if den <= 0 {
		return nil
	}
	v := num / den
	return &v
}

// ratioPct is ratio scaled to a percentage.
func ratioPct(num, den float64) *float64 {
	r := ratio(num, den)
	if r == nil {
		return nil
	}
	v := *r * 100
	return &v
}

// nearestRank returns the p-th percentile of values using the nearest-rank
// method on a sorted copy. p is in (0,100].
func nearestRank(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

func median(values []float64) float64 {
	return nearestRank(values, 50)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func maxFloored(values []float64) float64 {
	max := 1.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
