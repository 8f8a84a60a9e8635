package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/athabaska/Gazprom-power/config"
	"github.com/athabaska/Gazprom-power/internal/domain/models"
)

// TradeSource is the upstream trading service.
//
// FetchTrades returns the trades of the trading day named by at's date. It may
// block on I/O; a returned error means the extraction cycle should be retried.
type TradeSource interface {
	FetchTrades(ctx context.Context, at time.Time) ([]models.Trade, error)
}

var (
	// ErrUnknownSource is returned by New for an unsupported source kind.
	ErrUnknownSource = errors.New("unknown trade source")
	// ErrServiceUnavailable is the transient failure reported by the generator.
	ErrServiceUnavailable = errors.New("trading service unavailable")
	// ErrNoTradesFile is returned by the file source when the day's file has not been dropped yet.
	ErrNoTradesFile = errors.New("trades file not found")
)

// New builds the source selected by cfg.Kind. db is only used by the postgres source.
func New(cfg config.SourceConfig, db *sql.DB) (TradeSource, error) {
	switch cfg.Kind {
	case config.SourceGenerator:
		loc, err := time.LoadLocation(cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("load trading location %q: %w", cfg.Location, err)
		}
		return NewGenerator(loc, cfg.TradesPerFetch, cfg.FailureRate, uint64(time.Now().UnixNano())), nil
	case config.SourceFile:
		return NewFileSource(cfg.TradesDir), nil
	case config.SourcePostgres:
		if db == nil {
			return nil, errors.New("postgres source requires a database handle")
		}
		return NewPostgresSource(db), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Kind)
	}
}

// tradeDate strips the clock from at, keeping its calendar date.
func tradeDate(at time.Time) time.Time {
	y, m, d := at.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// groupByTrade collects period rows into trades, keeping the first-seen trade order.
type groupByTrade struct {
	date   time.Time
	index  map[string]int
	trades []models.Trade
}

func newGroupByTrade(date time.Time) *groupByTrade {
	return &groupByTrade{date: date, index: make(map[string]int)}
}

func (g *groupByTrade) add(tradeID string, p models.PeriodVolume) {
	i, ok := g.index[tradeID]
	if !ok {
		i = len(g.trades)
		g.index[tradeID] = i
		g.trades = append(g.trades, models.Trade{Date: g.date})
	}
	g.trades[i].Periods = append(g.trades[i].Periods, p)
}
