// Package sqlite persists component data and schemas in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	compose "github.com/goliatone/go-compose"
	"github.com/goliatone/go-compose/pkg/store"
	_ "github.com/mattn/go-sqlite3"
	"github.com/segmentio/ksuid"
)

// Config selects the database file. ":memory:" keeps everything in memory.
type Config struct {
	Path   string
	Logger *slog.Logger
}

// DB is an open, migrated component database.
type DB struct {
	conn *sql.DB
}

// Open connects to the database at cfg.Path, enables WAL and applies the
// embedded migrations.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	isMemoryDB := cfg.Path == ":memory:" || strings.HasPrefix(cfg.Path, "file::memory:")
	if !isMemoryDB {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", cfg.Path, err)
	}
	// A single connection serializes writers and keeps :memory: databases alive.
	conn.SetMaxOpenConns(1)

	if !isMemoryDB {
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
		}
	}
	if err := runMigrations(ctx, conn, logger); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &DB{conn: conn}, nil
}

// Close releases the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Components returns a store keyed by component ref.
func (db *DB) Components() *Store[compose.Data] {
	return &Store[compose.Data]{db: db, table: "components", key: "ref"}
}

// Schemas returns a store keyed by component name.
func (db *DB) Schemas() *Store[compose.Schema] {
	return &Store[compose.Schema]{db: db, table: "schemas", key: "name"}
}

// Store implements store.Store over one table, encoding values as JSON.
type Store[T any] struct {
	db    *DB
	table string
	key   string
}

var _ store.Store[compose.Data] = (*Store[compose.Data])(nil)

func (s *Store[T]) Load(ctx context.Context, key string) (T, store.Meta, bool, error) {
	var zero T
	query := fmt.Sprintf("SELECT data, version, updated_at FROM %s WHERE %s = ?", s.table, s.key)

	var (
		raw  string
		meta store.Meta
	)
	err := s.db.conn.QueryRowContext(ctx, query, key).Scan(&raw, &meta.Version, &meta.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, store.Meta{}, false, nil
	}
	if err != nil {
		return zero, store.Meta{}, false, fmt.Errorf("sqlite: load %s %q: %w", s.table, key, err)
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return zero, store.Meta{}, false, fmt.Errorf("sqlite: decode %s %q: %w", s.table, key, err)
	}
	return value, meta, true, nil
}

// Save upserts value under key with a fresh ksuid version.
func (s *Store[T]) Save(ctx context.Context, key string, value T, _ store.Meta) (store.Meta, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return store.Meta{}, fmt.Errorf("sqlite: encode %s %q: %w", s.table, key, err)
	}
	meta := store.Meta{Version: ksuid.New().String(), UpdatedAt: time.Now().UTC()}

	query := fmt.Sprintf(`INSERT INTO %[1]s (%[2]s, data, version, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(%[2]s) DO UPDATE SET data = excluded.data, version = excluded.version, updated_at = excluded.updated_at`,
		s.table, s.key)
	if _, err := s.db.conn.ExecContext(ctx, query, key, string(raw), meta.Version, meta.UpdatedAt); err != nil {
		return store.Meta{}, fmt.Errorf("sqlite: save %s %q: %w", s.table, key, err)
	}
	return meta, nil
}

// Keys lists stored keys in ascending order.
func (s *Store[T]) Keys(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", s.key, s.table, s.key)
	rows, err := s.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list %s: %w", s.table, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("sqlite: list %s: %w", s.table, err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
