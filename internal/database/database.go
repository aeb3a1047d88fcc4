// Hula Sync - Project Reconciliation for Hula, Hubspot and Odoo
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hulasync/hulasync

// Package database opens the DuckDB file that holds the sync log and the
// call log, and creates their tables.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/hulasync/hulasync/internal/config"
	"github.com/hulasync/hulasync/internal/logging"
)

// MemoryPath opens a private in-memory database. Used by tests.
const MemoryPath = ":memory:"

// DB wraps the DuckDB connection pool.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (or creates) the database at cfg.URL and migrates the schema.
// A "duckdb://" prefix on the URL is accepted and stripped.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	path := strings.TrimPrefix(cfg.URL, "duckdb://")

	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	// Extensions are not needed; disabling autoload avoids network access.
	conn, err := sql.Open("duckdb", path+"?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	db.configureConnectionPool(cfg.MaxOpenConns)

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.migrate(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", path).Msg("Database ready")
	return db, nil
}

// configureConnectionPool keeps the pool small: the scheduler is sequential
// and an in-memory database is private to one connection.
func (db *DB) configureConnectionPool(maxOpen int) {
	if maxOpen <= 0 || db.path == MemoryPath {
		maxOpen = 1
	}
	db.conn.SetMaxOpenConns(maxOpen)
	db.conn.SetMaxIdleConns(maxOpen)
	db.conn.SetConnMaxLifetime(0)
	db.conn.SetConnMaxIdleTime(0)
	if db.path != MemoryPath {
		db.conn.SetConnMaxLifetime(time.Hour)
	}
}

// Conn returns the underlying pool for the stores.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the pool.
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}
