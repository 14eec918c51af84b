package keyvalue

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store over a single SQLite database file.
//
// Table:
//
//	objects(tbl, key, value)  PRIMARY KEY (tbl, key)
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if necessary) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS objects (
		tbl TEXT NOT NULL,
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		PRIMARY KEY (tbl, key)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create objects table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Keys implements Store.Keys.
func (s *SQLiteStore) Keys(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM objects WHERE tbl = ?", table)
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
func (s *SQLiteStore) Load(ctx context.Context, table, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM objects WHERE tbl = ? AND key = ?", table, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil // Absent key
	} else if err != nil {
		return nil, fmt.Errorf("failed to load object: %w", err)
	}
	return value, nil
}

// Save implements Store.Save.
func (s *SQLiteStore) Save(ctx context.Context, table, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO objects (tbl, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (tbl, key) DO UPDATE SET value = excluded.value`,
		table, key, value)
	if err != nil {
		return fmt.Errorf("failed to save object: %w", err)
	}
	return nil
}

// Delete implements Store.Delete.
func (s *SQLiteStore) Delete(ctx context.Context, table, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM objects WHERE tbl = ? AND key = ?", table, key)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
