package aggregation

import (
	"cmp"
	"slices"

	"github.com/athabaska/Gazprom-power/internal/domain/models"
)

// ExpectedPeriods is the number of hourly periods of a regular trading day.
// Clock-change days have 23 or 25.
const ExpectedPeriods = 24

// Aggregate sums the volume of every period across all trades.
//
// Behavior:
//   - Entries sharing a period are added, never overwritten.
//   - The result is sorted ascending by period with unique keys.
//   - Nil or empty input yields an empty, non-nil Aggregation.
//   - Periods are not bounded; callers decide what a non-standard count means.
//
// Summation is plain float64 addition, so very large cumulative volumes lose
// precision in the last digits.
func Aggregate(trades []models.Trade) models.Aggregation {
	sums := make(map[int]float64, ExpectedPeriods)
	for _, t := range trades {
		for _, p := range t.Periods {
			sums[p.Period] += p.Volume
		}
	}

	out := make(models.Aggregation, 0, len(sums))
	for period, vol := range sums {
		out = append(out, models.Bucket{Period: period, Volume: vol})
	}
	slices.SortFunc(out, func(a, b models.Bucket) int {
		return cmp.Compare(a.Period, b.Period)
	})
	return out
}

// IsStandardDay reports whether the aggregation covers exactly ExpectedPeriods periods.
func IsStandardDay(a models.Aggregation) bool {
	return a.Len() == ExpectedPeriods
}
