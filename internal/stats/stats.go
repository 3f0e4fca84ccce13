// Package stats provides the set-similarity and distribution statistics
// used by the match and similarity analyses.
package stats

import (
	"math"
	"sort"
)

// Jaccard returns |A ∩ B| / |A ∪ B| for two sets with the given sizes and
// intersection. Returns 0 when the union is empty.
func Jaccard(matches, sizeA, sizeB int) float64 {
	union := sizeA + sizeB - matches
	if union <= 0 {
		return 0
	}
	return float64(matches) / float64(union)
}

// Overlap returns the overlap coefficient |A ∩ B| / min(|A|, |B|).
// Returns 0 when either set is empty.
func Overlap(matches, sizeA, sizeB int) float64 {
	smaller := sizeA
	if sizeB < sizeA {
		smaller = sizeB
	}
	if smaller <= 0 {
		return 0
	}
	return float64(matches) / float64(smaller)
}

// Rate returns part/total as a percentage, 0 when total is 0.
func Rate(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Summary describes a similarity score distribution.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	P5     float64
	P95    float64
}

// Summarize computes distribution statistics over the given values.
// An empty input yields a zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var sumSq float64
	for _, v := range sorted {
		d := v - mean
		sumSq += d * d
	}

	return Summary{
		Count:  len(sorted),
		Mean:   mean,
		Median: Percentile(sorted, 50),
		StdDev: math.Sqrt(sumSq / float64(len(sorted))),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P5:     Percentile(sorted, 5),
		P95:    Percentile(sorted, 95),
	}
}

// Percentile returns the p-th percentile of sorted values using linear
// interpolation between closest ranks. Values must be sorted ascending.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
