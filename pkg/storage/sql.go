package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql

	"github.com/one-dragon/onedragon-agent/pkg/config"
)

//go:embed migrations
var migrationsFS embed.FS

// OpenDB opens a pooled Postgres connection with the pgx driver and applies
// the embedded migrations. The same *sql.DB backs all three config kinds.
func OpenDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "onedragon", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	// Close only the source driver; m.Close would also close the shared DB.
	if err := source.Close(); err != nil {
		return fmt.Errorf("failed to close migration source: %w", err)
	}
	return nil
}

// SQLStore persists records of one config kind in a single table with an
// (app_name, id) primary key and a JSONB value column.
type SQLStore[T Record] struct {
	db    *sql.DB
	table string
}

// NewSQLStore creates a store over the given table. The table must be one
// created by the embedded migrations.
func NewSQLStore[T Record](db *sql.DB, table string) *SQLStore[T] {
	return &SQLStore[T]{db: db, table: table}
}

func (s *SQLStore[T]) Create(ctx context.Context, record T) error {
	key := record.StoreKey()
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (app_name, id, value) VALUES ($1, $2, $3) ON CONFLICT (app_name, id) DO NOTHING`,
		s.table)
	res, err := s.db.ExecContext(ctx, query, key.AppName, key.ID, value)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s/%s: %w", key.AppName, key.ID, config.ErrAlreadyExists)
	}
	return nil
}

func (s *SQLStore[T]) Get(ctx context.Context, key Key) (T, bool, error) {
	var zero T
	query := fmt.Sprintf(`SELECT value FROM %s WHERE app_name = $1 AND id = $2`, s.table)
	var value []byte
	err := s.db.QueryRowContext(ctx, query, key.AppName, key.ID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("failed to query record: %w", err)
	}
	var record T
	if err := json.Unmarshal(value, &record); err != nil {
		return zero, false, fmt.Errorf("failed to decode record: %w", err)
	}
	return record, true, nil
}

func (s *SQLStore[T]) Update(ctx context.Context, record T) error {
	key := record.StoreKey()
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	query := fmt.Sprintf(
		`UPDATE %s SET value = $3, updated_at = now() WHERE app_name = $1 AND id = $2`,
		s.table)
	res, err := s.db.ExecContext(ctx, query, key.AppName, key.ID, value)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s/%s: %w", key.AppName, key.ID, config.ErrNotFound)
	}
	return nil
}

func (s *SQLStore[T]) Delete(ctx context.Context, key Key) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE app_name = $1 AND id = $2`, s.table)
	if _, err := s.db.ExecContext(ctx, query, key.AppName, key.ID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (s *SQLStore[T]) List(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT value FROM %s ORDER BY app_name, id`, s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var record T
		if err := json.Unmarshal(value, &record); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
