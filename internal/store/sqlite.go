// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/user/wfhbot/internal/types"
)

// Store is a sqlite-backed CounterStore over two tables:
//
//	info(name TEXT UNIQUE, value TEXT)      -- lastrun singleton only
//	users(user TEXT UNIQUE, times INTEGER)  -- one row per user identity
type Store struct {
	db *sql.DB
}

// Open connects to an existing database file. The file must already exist and
// be readable; there is no migration system, so an absent path is a setup
// problem, not something serve should paper over.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database path %q does not exist or is not readable: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Ensure creates the database file and schema if they do not exist. Used by
// the setup command; serve never calls this.
func Ensure(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS info (
    name TEXT UNIQUE,
    value TEXT
)`); err != nil {
		return fmt.Errorf("create info table: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    user TEXT UNIQUE,
    times INTEGER
)`); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunMetadata returns the lastrun timestamp string.
func (s *Store) RunMetadata(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM info WHERE name = 'lastrun' LIMIT 1`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lastrun: %w", types.ErrNotFound)
	}
	if err != nil {
		return "", wrap("query lastrun", err)
	}
	return value, nil
}

// InitRunMetadata inserts the lastrun singleton. The guarded insert keeps the
// operation safe even against schemas without a unique index on info.name.
func (s *Store) InitRunMetadata(ctx context.Context, ts string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO info(name, value)
		 SELECT 'lastrun', ?
		 WHERE NOT EXISTS (SELECT 1 FROM info WHERE name = 'lastrun')`, ts)
	if err != nil {
		return wrap("insert lastrun", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("insert lastrun", err)
	}
	if n == 0 {
		return fmt.Errorf("lastrun already initialized: %w", types.ErrDuplicateKey)
	}
	return nil
}

func (s *Store) TouchRunMetadata(ctx context.Context, ts string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE info SET value = ? WHERE name = 'lastrun'`, ts); err != nil {
		return wrap("update lastrun", err)
	}
	return nil
}

func (s *Store) UserCount(ctx context.Context, user string) (int, error) {
	var times int
	err := s.db.QueryRowContext(ctx,
		`SELECT times FROM users WHERE user = ? LIMIT 1`, user).Scan(&times)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("user %q: %w", user, types.ErrNotFound)
	}
	if err != nil {
		return 0, wrap("query user count", err)
	}
	return times, nil
}

func (s *Store) CreateUserCount(ctx context.Context, user string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users(user, times) VALUES(?, 1)`, user); err != nil {
		return wrap("insert user count", err)
	}
	return nil
}

func (s *Store) IncrementUserCount(ctx context.Context, user string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET times = times + 1 WHERE user = ?`, user)
	if err != nil {
		return wrap("increment user count", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("increment user count", err)
	}
	if n == 0 {
		return fmt.Errorf("user %q: %w", user, types.ErrNotFound)
	}
	return nil
}

// IncrementOrCreate pushes the insert-or-increment decision into the store as
// one statement, so concurrent events for the same user cannot observe a
// stale count.
func (s *Store) IncrementOrCreate(ctx context.Context, user string) (int, error) {
	var times int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users(user, times) VALUES(?, 1)
		 ON CONFLICT(user) DO UPDATE SET times = times + 1
		 RETURNING times`, user).Scan(&times)
	if err != nil {
		return 0, wrap("upsert user count", err)
	}
	return times, nil
}

// TopUsers orders by count descending; ties go to the earliest-created row.
// sqlite rowids are insertion-ordered, which makes the tie-break deterministic.
func (s *Store) TopUsers(ctx context.Context, limit int) ([]types.UserCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user, times FROM users ORDER BY times DESC, rowid ASC LIMIT ?`, limit)
	if err != nil {
		return nil, wrap("query top users", err)
	}
	defer rows.Close()

	var out []types.UserCount
	for rows.Next() {
		var uc types.UserCount
		if err := rows.Scan(&uc.User, &uc.Times); err != nil {
			return nil, wrap("scan top users", err)
		}
		out = append(out, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("scan top users", err)
	}
	return out, nil
}

// wrap classifies a driver error into the shared taxonomy. The sqlite driver
// reports constraint violations only through the error message, so the
// classification is substring-based.
func wrap(op string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "constraint failed") {
		return fmt.Errorf("%s: %w: %v", op, types.ErrDuplicateKey, err)
	}
	return fmt.Errorf("%s: %w: %v", op, types.ErrUnavailable, err)
}
