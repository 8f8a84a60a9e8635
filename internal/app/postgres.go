package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/athabaska/Gazprom-power/config"
)

const (
	pingTimeout = 5 * time.Second
	// the source reads once per cycle and the archive writes once; a small pool is plenty.
	maxOpenConns    = 4
	connMaxIdleTime = 5 * time.Minute
)

var (
	// sqlOpener and postgresOpener are swapped in tests.
	sqlOpener      = sql.Open
	postgresOpener = InitPostgres
)

// InitPostgres opens the pool shared by the postgres trade source and the
// archive sink. An unreachable server fails here rather than on the first cycle.
func InitPostgres(ctx context.Context, pg config.PostgresConfig) (*sql.DB, error) {
	dsn := pg.URL
	if dsn == "" {
		dsn = pg.DSN()
	}

	db, err := sqlOpener("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres at %s:%d: %w", pg.Host, pg.Port, err)
	}
	return db, nil
}
