package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultSQLitePath = "kurisu_poker.db"

// SQLiteStore persists player records in a local sqlite file.
type SQLiteStore struct {
	db *sql.DB
}

func sqlitePathFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("POKER_SQLITE_PATH")); v != "" {
		return filepath.Clean(v)
	}
	return defaultSQLitePath
}

func NewSQLiteStoreFromEnv() (*SQLiteStore, error) {
	return NewSQLiteStore(sqlitePathFromEnv())
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, playerID uint64, name string) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO poker_players (user_id, name, balance)
VALUES (?, ?, ?)
ON CONFLICT (user_id) DO UPDATE
SET name = COALESCE(NULLIF(excluded.name, ''), poker_players.name)
`, playerID, name, DefaultBankroll); err != nil {
		return 0, err
	}

	var balance int64
	err := s.db.QueryRowContext(ctx, `
SELECT balance FROM poker_players WHERE user_id = ?
`, playerID).Scan(&balance)
	return balance, err
}

func (s *SQLiteStore) Save(ctx context.Context, playerID uint64, balance int64) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE poker_players SET balance = ? WHERE user_id = ?
`, balance, playerID)
	return err
}

func (s *SQLiteStore) AddWin(ctx context.Context, playerID uint64) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE poker_players SET win_count = win_count + 1 WHERE user_id = ?
`, playerID)
	return err
}

func (s *SQLiteStore) WinCount(ctx context.Context, playerID uint64) (int64, error) {
	var wins int64
	err := s.db.QueryRowContext(ctx, `
SELECT win_count FROM poker_players WHERE user_id = ?
`, playerID).Scan(&wins)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return wins, err
}

func (s *SQLiteStore) Claim(ctx context.Context, playerID uint64, name string) (int64, error) {
	if _, err := s.Load(ctx, playerID, name); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var nextClaimMs int64
	if err := tx.QueryRowContext(ctx, `
SELECT next_claim_time_ms FROM poker_players WHERE user_id = ?
`, playerID).Scan(&nextClaimMs); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	if now.UnixMilli() < nextClaimMs {
		return 0, ErrClaimNotReady
	}

	prize := rollPrize()
	if _, err := tx.ExecContext(ctx, `
UPDATE poker_players
SET balance = balance + ?,
    next_claim_time_ms = ?
WHERE user_id = ?
`, prize, now.Add(claimInterval).UnixMilli(), playerID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return prize, nil
}

func (s *SQLiteStore) Transfer(ctx context.Context, from, to uint64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrSelfTransfer
	}
	if _, err := s.Load(ctx, from, ""); err != nil {
		return err
	}
	if _, err := s.Load(ctx, to, ""); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var senderBalance int64
	if err := tx.QueryRowContext(ctx, `
SELECT balance FROM poker_players WHERE user_id = ?
`, from).Scan(&senderBalance); err != nil {
		return err
	}
	if senderBalance < amount {
		return ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE poker_players SET balance = balance - ? WHERE user_id = ?
`, amount, from); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE poker_players SET balance = balance + ? WHERE user_id = ?
`, amount, to); err != nil {
		return err
	}
	return tx.Commit()
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS poker_players (
    user_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    balance INTEGER NOT NULL,
    win_count INTEGER NOT NULL DEFAULT 0,
    next_claim_time_ms INTEGER NOT NULL DEFAULT 0
)`)
	return err
}
