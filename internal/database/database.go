package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB wraps the SQLite store. All booking writes go through a Tx opened
// with Begin: the connection string uses _txlock=immediate, so every
// transaction takes the single SQLite write lock up front and the
// check-then-insert sequence inside CreateReservation is serialized
// against concurrent bookings.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
	path   string
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	memory := path == ":memory:"

	var dsn string
	if memory {
		dsn = "file::memory:?cache=shared&_txlock=immediate&_foreign_keys=on"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate&_foreign_keys=on", path)
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// A shared-cache memory database disappears when its last
		// connection closes; a single pooled connection keeps it alive.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if logger != nil {
		logger.Info().Str("path", path).Msg("database initialized")
	}
	return &DB{DB: sqlDB, logger: logger, path: path}, nil
}

func createSchema(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS courts (
            id INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            type TEXT NOT NULL,
            hourly_rate REAL NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS equipment (
            id INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            type TEXT NOT NULL,
            stock INTEGER NOT NULL,
            price REAL NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS coaches (
            id INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            hourly_rate REAL NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS pricing_rules (
            id INTEGER PRIMARY KEY,
            name TEXT NOT NULL,
            kind TEXT NOT NULL,
            adjustment_type TEXT NOT NULL,
            value REAL NOT NULL,
            start_time TEXT,
            end_time TEXT,
            days TEXT,
            court_type TEXT,
            active BOOLEAN NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS reservations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            reference TEXT NOT NULL UNIQUE,
            user_id TEXT NOT NULL,
            court_id INTEGER NOT NULL,
            date TEXT NOT NULL,
            start_min INTEGER NOT NULL,
            end_min INTEGER NOT NULL,
            coach_id INTEGER,
            total_price INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'CONFIRMED',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            version INTEGER NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS reservation_equipment (
            reservation_id INTEGER NOT NULL REFERENCES reservations(id),
            equipment_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL,
            PRIMARY KEY (reservation_id, equipment_id)
        )`,
		`CREATE TABLE IF NOT EXISTS waitlist (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id TEXT NOT NULL,
            court_id INTEGER NOT NULL,
            date TEXT NOT NULL,
            start_min INTEGER NOT NULL,
            end_min INTEGER NOT NULL,
            created_at DATETIME NOT NULL,
            UNIQUE (court_id, date, start_min, user_id)
        )`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id TEXT NOT NULL,
            message TEXT NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL
        )`,

		// Exact-slot backstop: at most one CONFIRMED reservation per
		// (court, date, start) regardless of transaction interleaving.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_slot
            ON reservations(court_id, date, start_min) WHERE status = 'CONFIRMED'`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_court_date ON reservations(court_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_coach_date ON reservations(coach_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_user ON reservations(user_id)`,
		// Ordered index backing FIFO promotion.
		`CREATE INDEX IF NOT EXISTS idx_waitlist_slot ON waitlist(court_id, date, start_min, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Tx is the unit of work for one booking or cancellation operation.
// Callers defer Rollback immediately after Begin; Rollback after a
// successful Commit is a no-op.
type Tx struct {
	tx *sql.Tx
}

func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() {
	_ = t.tx.Rollback()
}

// querier lets read helpers run against either the pool or a transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func (db *DB) Close() error {
	return db.DB.Close()
}
