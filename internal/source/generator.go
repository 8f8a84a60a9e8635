package source

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/athabaska/Gazprom-power/internal/domain/models"
)

// Generator is an in-process stand-in for the trading service.
//
// Every fetch returns a fixed number of trades with one random volume per
// hour of the trading day, and fails with the configured probability so the
// retry path is exercised.
type Generator struct {
	loc         *time.Location
	trades      int
	failureRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator creates a generator. loc defines where the trading day starts,
// which decides whether a day has 23, 24 or 25 periods.
func NewGenerator(loc *time.Location, trades int, failureRate float64, seed uint64) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	if trades < 0 {
		trades = 0
	}
	return &Generator{
		loc:         loc,
		trades:      trades,
		failureRate: failureRate,
		rnd:         rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// FetchTrades implements TradeSource.
func (g *Generator) FetchTrades(ctx context.Context, at time.Time) ([]models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rnd.Float64() < g.failureRate {
		return nil, ErrServiceUnavailable
	}

	n := PeriodsInDay(at, g.loc)
	date := tradeDate(at.In(g.loc))
	out := make([]models.Trade, 0, g.trades)
	for i := 0; i < g.trades; i++ {
		t := models.NewTrade(date, n)
		for j := range t.Periods {
			// two decimals, buys and sells
			t.Periods[j].Volume = math.Round((g.rnd.Float64()*400-200)*100) / 100
		}
		out = append(out, t)
	}
	return out, nil
}

// PeriodsInDay returns the number of hourly periods of the trading day named
// by at's calendar date in loc. That day runs from 23:00 the previous day to 23:00.
func PeriodsInDay(at time.Time, loc *time.Location) int {
	y, m, d := at.In(loc).Date()
	start := time.Date(y, m, d-1, 23, 0, 0, 0, loc)
	end := time.Date(y, m, d, 23, 0, 0, 0, loc)
	return int(end.Sub(start) / time.Hour)
}
