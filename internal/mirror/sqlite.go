package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the on-disk mirror backend. The blob column holds the
// serialized State as opaque JSON; schema changes go through migrations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) TryRead(ctx context.Context, key string) (State, bool) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM conversation_mirror WHERE key = ?`, key,
	).Scan(&blob)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.WarnContext(ctx, "Mirror read failed, treating as absent", "key", key, "error", err)
		}
		return State{}, false
	}

	var state State
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		// Corrupt blob reads as no cache.
		slog.WarnContext(ctx, "Mirror blob corrupt, treating as absent", "key", key, "error", err)
		return State{}, false
	}
	return state, true
}

func (s *SQLiteStore) Write(ctx context.Context, key string, state State) {
	blob, err := json.Marshal(state)
	if err != nil {
		slog.WarnContext(ctx, "Mirror state marshal failed, dropping write", "key", key, "error", err)
		return
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversation_mirror (key, blob, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		key, string(blob), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		slog.WarnContext(ctx, "Mirror write failed, dropping", "key", key, "error", err)
	}
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
