package keyvalue

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements Store over a PostgreSQL database using the same
// single-table layout as the SQLite backend.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to the database at cfg.PostgresURL and ensures
// the objects table exists.
func NewPostgresStore(cfg Config) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if cfg.PostgresMaxConns > 0 {
		db.SetMaxOpenConns(cfg.PostgresMaxConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	timeout := cfg.PostgresTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS objects (
		tbl TEXT NOT NULL,
		key TEXT NOT NULL,
		value BYTEA NOT NULL,
		PRIMARY KEY (tbl, key)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create objects table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// newPostgresStoreWithDB wires an existing connection; used by tests.
func newPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Keys implements Store.Keys.
func (s *PostgresStore) Keys(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM objects WHERE tbl = $1", table)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys for table %s: %w", table, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Load implements Store.Load.
func (s *PostgresStore) Load(ctx context.Context, table, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM objects WHERE tbl = $1 AND key = $2", table, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil // Absent key
	} else if err != nil {
		return nil, fmt.Errorf("failed to load object: %w", err)
	}
	return value, nil
}

// Save implements Store.Save.
func (s *PostgresStore) Save(ctx context.Context, table, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO objects (tbl, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (tbl, key) DO UPDATE SET value = EXCLUDED.value`,
		table, key, value)
	if err != nil {
		return fmt.Errorf("failed to save object: %w", err)
	}
	return nil
}

// Delete implements Store.Delete.
func (s *PostgresStore) Delete(ctx context.Context, table, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM objects WHERE tbl = $1 AND key = $2", table, key)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
