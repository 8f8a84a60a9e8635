package models

import (
	"cmp"
	"slices"
)

// Bucket holds the accumulated volume of one period.
type Bucket struct {
	Period int
	Volume float64
}

// Aggregation is the per-period volume of one extraction run.
//
// Buckets are sorted strictly ascending by Period and no Period appears twice.
// The Nth bucket maps to the Nth line of the extraction file.
type Aggregation []Bucket

// Len returns the number of distinct periods.
func (a Aggregation) Len() int { return len(a) }

// Periods returns the period keys in ascending order.
func (a Aggregation) Periods() []int {
	out := make([]int, len(a))
	for i, b := range a {
		out[i] = b.Period
	}
	return out
}

// Volume returns the accumulated volume for period, and false when the period
// had no contributing entries.
func (a Aggregation) Volume(period int) (float64, bool) {
	i, ok := slices.BinarySearchFunc(a, period, func(b Bucket, p int) int {
		return cmp.Compare(b.Period, p)
	})
	if !ok {
		return 0, false
	}
	return a[i].Volume, true
}

// Total sums the volume of all buckets.
func (a Aggregation) Total() float64 {
	var sum float64
	for _, b := range a {
		sum += b.Volume
	}
	return sum
}
