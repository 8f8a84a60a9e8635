package models

import "time"

// Trade represents one trade record returned by the upstream trading service.
//
// A trade carries the reference date it was requested for and one PeriodVolume
// per hourly period of the trading day. Trades are immutable once received and
// are discarded after aggregation.
type Trade struct {
	Date    time.Time
	Periods []PeriodVolume
}

// PeriodVolume is the volume traded in a single hourly period.
//
// Period is a positive bucket index (1 = first hour of the trading day).
// Volume is signed: a negative value is a sell.
type PeriodVolume struct {
	Period int
	Volume float64
}

// NewTrade builds a trade with n periods numbered 1..n and zero volumes.
func NewTrade(date time.Time, n int) Trade {
	periods := make([]PeriodVolume, n)
	for i := range periods {
		periods[i].Period = i + 1
	}
	return Trade{Date: date, Periods: periods}
}
