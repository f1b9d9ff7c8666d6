// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // enable postgres dialect
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // enable sqlite3 dialect
	_ "github.com/lib/pq"                              // enable postgres driver
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // enable sqlite driver

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/cliparse"
)

const maxTxAttempts = 3

func init() {
	goqu.SetDefaultPrepared(true)
}

// DB is the application's handle on the relational store.
type DB struct {
	*goqu.Database
	conn *sql.DB
	kind string
}

// Open connects to the database named by cfg and verifies the connection.
func Open(ctx context.Context, cfg cliparse.Config) (*DB, error) {
	var (
		conn    *sql.DB
		dialect string
		err     error
	)

	switch cfg.DatabaseType {
	case cliparse.DatabasePostgres:
		conn, err = sql.Open("postgres", cfg.DatabaseURL)
		dialect = "postgres"
	case cliparse.DatabaseSQLite:
		conn, err = sql.Open("sqlite", SQLiteDSN(cfg.DatabaseURL))
		dialect = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// db tuning options
	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxIdleTime(5 * time.Minute)
	conn.SetConnMaxLifetime(2 * time.Hour)
	if cfg.DatabaseType == cliparse.DatabaseSQLite && strings.Contains(cfg.DatabaseURL, ":memory:") {
		// every connection would otherwise get its own empty database
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return &DB{
		Database: goqu.New(dialect, conn),
		conn:     conn,
		kind:     cfg.DatabaseType,
	}, nil
}

// SQLiteDSN appends the connection pragmas the application relies on:
// enforced foreign keys, a busy timeout, and write-locking transactions
// so concurrent check-then-insert sequences serialize.
func SQLiteDSN(path string) string {
	params := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate&_time_format=sqlite"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// WithTx runs fn inside a single transaction. On postgres the transaction
// is SERIALIZABLE and serialization failures are retried.
func (d *DB) WithTx(ctx context.Context, fn func(tx *goqu.TxDatabase) error) error {
	var opts *sql.TxOptions
	if d.kind == cliparse.DatabasePostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = d.runTx(ctx, opts, fn)
		if !isSerializationFailure(err) {
			return err
		}
		logrus.WithError(err).WithField("attempt", attempt).Debug("transaction serialization failure")
	}

	return &apperr.Error{
		Kind:    apperr.KindConflict,
		Reason:  "concurrent update, please retry",
		Message: "concurrent update, please retry",
		Err:     err,
	}
}

func (d *DB) runTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *goqu.TxDatabase) error) error {
	tx, err := d.BeginTx(ctx, opts)
	if err != nil {
		return apperr.Internal("database error", fmt.Errorf("begin transaction: %w", err))
	}

	return tx.Wrap(func() error {
		return fn(tx)
	})
}
