// Package sqlstore implements the repositories on top of database/sql via
// sqlx. SQLite (modernc.org/sqlite) is the default store; PostgreSQL is
// reached through pgx's stdlib adapter.
package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Options selects and tunes the backing database.
type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// Open connects to the configured database and verifies it is reachable.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return openSQLite(ctx, opts.DSN)
	case DriverPostgres:
		return openPostgres(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}
}

// openSQLite opens (or creates) a sqlite database at the given path and ensures directories exist.
func openSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	file := path
	if i := strings.IndexByte(file, '?'); i >= 0 {
		file = file[:i]
	}
	if file != ":memory:" && !strings.HasPrefix(file, "file:") {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// sqlite serializes writers; a single connection also keeps the
	// foreign_keys pragma in effect for every statement
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

func openPostgres(ctx context.Context, opts Options) (*sqlx.DB, error) {
	cfg, err := pgx.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.ConnectTimeout = 5 * time.Second

	db := sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

func isPostgres(db *sqlx.DB) bool {
	return db.DriverName() == "pgx"
}

func execAll(ctx context.Context, db *sqlx.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
