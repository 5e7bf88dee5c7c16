// Package db opens the toaster SQLite database and applies its migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file created in the data directory.
const FileName = "toaster.db"

const (
	maxRetries  = 5
	initialWait = 100 * time.Millisecond
)

// OpenOptions configures the connection pool.
type OpenOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  int // milliseconds
}

// DefaultOpenOptions returns the pool settings used when none are configured.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		BusyTimeout:  5000,
	}
}

// DB wraps a SQL database connection and its queries.
type DB struct {
	conn    *sql.DB
	queries *Queries
}

// Open creates the database in dataDir if needed, verifies the connection and
// migrates the schema to the latest version.
func Open(dataDir string, opts OpenOptions) (*DB, error) {
	defaults := DefaultOpenOptions()
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = defaults.MaxOpenConns
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = defaults.MaxIdleConns
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = defaults.BusyTimeout
	}

	dbPath := filepath.Join(dataDir, FileName)
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", dbPath, opts.BusyTimeout)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)
	conn.SetConnMaxLifetime(0)

	db := &DB{
		conn:    conn,
		queries: New(conn),
	}

	ctx := context.Background()
	if err := db.pingWithRetry(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrateUp(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Queries returns the query set bound to the connection.
func (db *DB) Queries() *Queries {
	return db.queries
}

// WithTx executes a function within a transaction.
// If the function returns an error, the transaction is rolled back.
func (db *DB) WithTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(db.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// pingWithRetry attempts to ping the database with exponential backoff.
func (db *DB) pingWithRetry(ctx context.Context) error {
	wait := initialWait
	var err error
	for i := range maxRetries {
		if err = db.conn.PingContext(ctx); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			time.Sleep(wait)
			wait *= 2
		}
	}

	return fmt.Errorf("failed to ping database after %d retries: %w", maxRetries, err)
}
