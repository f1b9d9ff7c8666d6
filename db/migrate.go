// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/danielhkuo/pollboard/cliparse"
)

//go:embed migrations
var dbMigrations embed.FS

// Migrate applies all pending migrations for the configured dialect.
// Safe to call on every start.
func (d *DB) Migrate() error {
	src, err := iofs.New(dbMigrations, "migrations/"+d.kind)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var dst database.Driver
	switch d.kind {
	case cliparse.DatabasePostgres:
		dst, err = migratepg.WithInstance(d.conn, &migratepg.Config{})
	case cliparse.DatabaseSQLite:
		dst, err = migratesqlite.WithInstance(d.conn, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("unsupported database type %q", d.kind)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", src, d.kind, dst)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		// db already up to date
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
