// Package store implements the local relational store behind the dictionary:
// an embedded SQLite database by default, PostgreSQL optionally. Repositories
// live in subpackages and share the connection, transaction and error helpers
// defined here.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the "sqlite" database/sql driver

	"github.com/heartmarshall/lexicon/internal/config"
)

// Dialect identifies the SQL database behind a DB.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DB is a connection pool together with its dialect.
type DB struct {
	*sql.DB
	dialect Dialect
}

// NewDB opens the configured database, pings it for fail-fast validation and
// applies pending migrations.
func NewDB(ctx context.Context, cfg config.StorageConfig) (*DB, error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Open connects to the configured database without migrating it.
func Open(ctx context.Context, cfg config.StorageConfig) (*DB, error) {
	var (
		dialect    Dialect
		driverName string
		dsn        string
	)
	switch cfg.Driver {
	case "", "sqlite":
		dialect, driverName, dsn = DialectSQLite, "sqlite", sqliteDSN(cfg.DSN)
	case "postgres":
		dialect, driverName, dsn = DialectPostgres, "pgx", cfg.DSN
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// One connection serializes writers and keeps ":memory:" databases
		// alive for the lifetime of the pool.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{DB: sqlDB, dialect: dialect}, nil
}

// Dialect returns the database dialect.
func (db *DB) Dialect() Dialect { return db.dialect }

// Builder returns a squirrel statement builder using the dialect's
// placeholder format.
func (db *DB) Builder() squirrel.StatementBuilderType {
	if db.dialect == DialectPostgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "lexicon.db"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}
