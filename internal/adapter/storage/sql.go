package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/niksmo/sneakers/pkg/retry"
	_ "modernc.org/sqlite"
)

var _ Slot = (*SQLSlot)(nil)

type sqldb interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PingContext(ctx context.Context) error
	Close() error
}

type dialect struct {
	name   string
	create string
	read   string
	write  string
}

var sqliteDialect = dialect{
	name: DriverSQLite,
	create: `
		CREATE TABLE IF NOT EXISTS storage_slots (
			slot_key TEXT PRIMARY KEY,
			payload  BLOB NOT NULL
		);`,
	read: `SELECT payload FROM storage_slots WHERE slot_key = ?;`,
	write: `
		INSERT INTO storage_slots (slot_key, payload) VALUES (?, ?)
		ON CONFLICT (slot_key) DO UPDATE SET payload = excluded.payload;`,
}

// The postgres table is owned by cmd/migrator.
var postgresDialect = dialect{
	name: DriverPostgres,
	read: `SELECT payload FROM storage_slots WHERE slot_key = $1;`,
	write: `
		INSERT INTO storage_slots (slot_key, payload) VALUES ($1, $2)
		ON CONFLICT (slot_key) DO UPDATE SET payload = EXCLUDED.payload;`,
}

// SQLSlot stores keys as rows of the storage_slots table.
type SQLSlot struct {
	sqldb   sqldb
	dialect dialect
}

// NewSQLiteSlot opens the database file at path and creates the table.
func NewSQLiteSlot(ctx context.Context, path string) (*SQLSlot, error) {
	const op = "NewSQLiteSlot"

	if path == "" {
		return nil, fmt.Errorf("%s: empty database path", op)
	}
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0o750)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	s := &SQLSlot{sqldb: db, dialect: sqliteDialect}
	if _, err := db.ExecContext(ctx, sqliteDialect.create); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: failed to create table: %w", op, err)
	}
	return s, nil
}

// NewPostgresSlot connects through the pgx database/sql driver.
func NewPostgresSlot(
	ctx context.Context, dsn string, ping retry.Policy,
) (*SQLSlot, error) {
	const op = "NewPostgresSlot"

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &SQLSlot{sqldb: db, dialect: postgresDialect}
	if err := s.ping(ctx, ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (s *SQLSlot) ping(ctx context.Context, p retry.Policy) error {
	const op = "SQLSlot.ping"

	err := retry.Do(ctx, p, func() error {
		return s.sqldb.PingContext(ctx)
	})
	if err != nil {
		return fmt.Errorf("%s: database unavailable: %w", op, err)
	}
	slog.Info("database is available", "op", op, "driver", s.dialect.name)
	return nil
}

func (s *SQLSlot) Read(ctx context.Context, key string) ([]byte, error) {
	const op = "SQLSlot.Read"

	var payload []byte
	err := s.sqldb.QueryRowContext(ctx, s.dialect.read, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payload, nil
}

func (s *SQLSlot) Write(ctx context.Context, key string, data []byte) error {
	const op = "SQLSlot.Write"

	if _, err := s.sqldb.ExecContext(ctx, s.dialect.write, key, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SQLSlot) Close() error {
	const op = "SQLSlot.Close"
	log := slog.With("op", op, "driver", s.dialect.name)

	log.Info("closing sql database...")
	if err := s.sqldb.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("sql database is closed")
	return nil
}
