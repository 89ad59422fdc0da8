// Package storage keeps the audit trail of detected spam in a sql database,
// sqlite for the default single-binary setup and postgres for shared deployments.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"      // postgres driver loaded here
	_ "modernc.org/sqlite"     // sqlite driver loaded here
)

// Engine is a type of database engine
type Engine string

// enum of supported database engines
const (
	Sqlite   Engine = "sqlite"
	Postgres Engine = "postgres"
)

// DB is a wrapper for sqlx.DB with the engine type.
// The type allows distinguishing between different database engines.
type DB struct {
	*sqlx.DB
	engine Engine
}

// New connects to the database by DSN. A postgres:// prefix picks the postgres
// driver, anything else is treated as a sqlite file path.
func New(ctx context.Context, dsn string) (*DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return &DB{DB: db, engine: Postgres}, nil
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite %q: %w", dsn, err)
	}
	return &DB{DB: db, engine: Sqlite}, nil
}

// Type returns the database engine type
func (d *DB) Type() Engine {
	return d.engine
}
