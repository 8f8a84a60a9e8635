package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/athabaska/Gazprom-power/internal/domain/models"
)

const selectTradePeriods = `
	SELECT trade_id, period, volume
	FROM trade_periods
	WHERE trade_date = $1
	ORDER BY trade_id, period`

// PostgresSource reads the day's trades from the trade_periods table, where
// the trading platform books one row per trade and period.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource creates a source over an open database handle.
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// FetchTrades implements TradeSource.
func (s *PostgresSource) FetchTrades(ctx context.Context, at time.Time) ([]models.Trade, error) {
	day := tradeDate(at)
	rows, err := s.db.QueryContext(ctx, selectTradePeriods, day)
	if err != nil {
		return nil, fmt.Errorf("query trade periods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	group := newGroupByTrade(day)
	for rows.Next() {
		var (
			id  string
			pv  models.PeriodVolume
			vol sql.NullFloat64
		)
		if err := rows.Scan(&id, &pv.Period, &vol); err != nil {
			return nil, fmt.Errorf("scan trade period: %w", err)
		}
		// NULL volume means the period was booked but not traded
		if vol.Valid {
			pv.Volume = vol.Float64
		}
		group.add(id, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade periods: %w", err)
	}

	return group.trades, nil
}
