package report

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/athabaska/Gazprom-power/internal/domain/models"
)

const (
	// Header is the first line of every extraction file.
	Header = "LocalTime;Volume"

	artifactLayout = "20060102_1504"
	labelLayout    = "15:04"
	separator      = ";"

	// Shortest round-trip output switches to exponent form below 1e-4, or once
	// the integer part needs more than max(significant digits, 15) digits.
	minPlainExponent = -4
	maxPlainDigits   = 15
)

// ArtifactName returns the extraction file name for a run started at at,
// e.g. "20240331_1005.csv".
func ArtifactName(at time.Time) string {
	return at.Format(artifactLayout) + ".csv"
}

// Lines renders one "HH:MM;volume" line per bucket, in bucket order.
//
// The first label is 23:00 of the day before ref's calendar date; every next
// line is one hour later. Labels follow the line ordinal, not the period value,
// and ref's clock time and zone are ignored.
func Lines(agg models.Aggregation, ref time.Time) []string {
	y, m, d := ref.Date()
	ts := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(-time.Hour)

	lines := make([]string, 0, agg.Len())
	for _, b := range agg {
		lines = append(lines, ts.Format(labelLayout)+separator+FormatVolume(b.Volume))
		ts = ts.Add(time.Hour)
	}
	return lines
}

// FormatVolume prints v with '.' as decimal separator and the fewest digits
// that round-trip.
//
// Values whose decimal exponent is below -4, or at least the larger of 15 and
// the number of significant digits, use exponent form with an uppercase E and
// a signed, at least two digit exponent:
//
//	0.00000007       -> 7E-08
//	1010000000000000 -> 1.01E+15
//	1234567890123456 -> 1234567890123456
//	33.333           -> 33.333
//	22               -> 22
func FormatVolume(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	case v == 0:
		return "0"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	mantissa, rawExp, _ := strings.Cut(sci, "e")
	exp, err := strconv.Atoi(rawExp)
	if err == nil && (exp < minPlainExponent || exp >= max(significantDigits(mantissa), maxPlainDigits)) {
		return mantissa + "E" + rawExp
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func significantDigits(mantissa string) int {
	n := 0
	for _, r := range mantissa {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
