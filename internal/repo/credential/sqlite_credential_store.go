package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mkrupp/luxclient/internal/infra/logging"
)

// SQLiteStoreConfig holds configuration for the SQLite credential store.
type SQLiteStoreConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/luxclient.db"`
}

// SQLiteStore implements Store using SQLite as the storage backend. Several profiles
// can share one database file.
type SQLiteStore struct {
	db        *sql.DB
	profile   string
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (and if needed creates) the database at cfg.DatabasePath and
// returns a store bound to profile.
func NewSQLiteStore(ctx context.Context, cfg SQLiteStoreConfig, profile string) (*SQLiteStore, error) {
	log := logging.GetLogger("repo.credential.sqlite_credential_store").With(
		logging.Group("db", "path", cfg.DatabasePath, "profile", profile),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(ctx, db); err != nil {
		db.Close()

		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()

		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	log.DebugContext(ctx, "credential store opened")

	return &SQLiteStore{
		db:        db,
		profile:   profile,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS credentials (
			profile    TEXT    NOT NULL,
			key        TEXT    NOT NULL,
			value      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (profile, key)
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM credentials WHERE profile = ? AND key = ?",
		s.profile,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("query %s: %w", key, err)
	}

	return value, value != "", nil
}

// GetAccess implements Store.GetAccess using SQLite.
func (s *SQLiteStore) GetAccess(ctx context.Context) (string, bool, error) {
	return s.get(ctx, AccessTokenKey)
}

// GetRefresh implements Store.GetRefresh using SQLite.
func (s *SQLiteStore) GetRefresh(ctx context.Context) (string, bool, error) {
	return s.get(ctx, RefreshTokenKey)
}

// SetPair implements Store.SetPair. Both rows are written in one transaction.
func (s *SQLiteStore) SetPair(ctx context.Context, access, refresh string) (err error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	now := time.Now().Unix()

	for _, kv := range [][2]string{{AccessTokenKey, access}, {RefreshTokenKey, refresh}} {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO credentials (profile, key, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (profile, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, s.profile, kv[0], kv[1], now); err != nil {
			return fmt.Errorf("upsert %s: %w", kv[0], err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.log.DebugContext(ctx, "credential pair stored")

	return nil
}

// Clear implements Store.Clear using SQLite.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM credentials WHERE profile = ? AND key IN (?, ?)",
		s.profile,
		AccessTokenKey,
		RefreshTokenKey,
	); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}

	s.log.DebugContext(ctx, "credential pair cleared")

	return nil
}

// HasPair implements Store.HasPair with a single query so both keys are read from
// the same snapshot.
func (s *SQLiteStore) HasPair(ctx context.Context) (bool, error) {
	var count int

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM credentials WHERE profile = ? AND key IN (?, ?) AND value <> ''",
		s.profile,
		AccessTokenKey,
		RefreshTokenKey,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("count credentials: %w", err)
	}

	return count == 2, nil
}

// Close implements Store.Close by closing the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
