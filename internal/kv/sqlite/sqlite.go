// Package sqlite stores kv entries in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"thali/internal/kv"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

var _ kv.Medium = (*Store)(nil)

// Open creates the database directory if needed, opens the file and runs
// pending migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serialises writes anyway and this keeps
	// SQLITE_BUSY out of the insert-if-absent path.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("SQLite medium ready", "db_path", dbPath)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
		key, value)
	if err != nil {
		return false, fmt.Errorf("insert entry %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert entry %s: rows affected: %w", key, err)
	}
	return n == 1, nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("delete entry %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete entry %s: rows affected: %w", key, err)
	}
	return n > 0, nil
}

// Version reads the counter the entries triggers maintain, so writes from
// other processes sharing the file are seen too.
func (s *Store) Version(ctx context.Context) (uint64, error) {
	var v uint64
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM entries_version WHERE id = 1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return v, nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	// substr instead of LIKE: the default prefix contains '_', a LIKE wildcard.
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM entries WHERE substr(key, 1, length(?)) = ? ORDER BY key`,
		prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}
