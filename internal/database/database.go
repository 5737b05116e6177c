package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	db *sql.DB
}

func NewDB(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; a serialized pool avoids
	// SQLITE_BUSY under concurrent token redemption.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := seedRanks(db); err != nil {
		return nil, fmt.Errorf("failed to seed ranks: %w", err)
	}

	return &DB{db: db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bot_config (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            vip_channel_id TEXT NOT NULL DEFAULT '',
            free_channel_id TEXT NOT NULL DEFAULT '',
            wait_time_minutes INTEGER NOT NULL DEFAULT 60,
            vip_reactions TEXT NOT NULL DEFAULT '[]',
            free_reactions TEXT NOT NULL DEFAULT '[]',
            vip_protected BOOLEAN NOT NULL DEFAULT 0,
            free_protected BOOLEAN NOT NULL DEFAULT 0,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS subscription_tiers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT UNIQUE NOT NULL,
            duration_days INTEGER NOT NULL,
            price_usd REAL NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS invitation_tokens (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            token TEXT UNIQUE NOT NULL,
            generated_by INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            tier_id INTEGER REFERENCES subscription_tiers(id),
            duration_hours INTEGER NOT NULL DEFAULT 0,
            used BOOLEAN NOT NULL DEFAULT 0,
            used_by INTEGER,
            used_at DATETIME
        )`,

		`CREATE TABLE IF NOT EXISTS user_subscriptions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER UNIQUE NOT NULL,
            role TEXT NOT NULL DEFAULT 'free',
            join_date DATETIME NOT NULL,
            expiry_date DATETIME,
            status TEXT NOT NULL DEFAULT 'active',
            token_id INTEGER REFERENCES invitation_tokens(id),
            reminder_sent BOOLEAN NOT NULL DEFAULT 0
        )`,

		`CREATE TABLE IF NOT EXISTS free_channel_requests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            request_date DATETIME NOT NULL,
            processed BOOLEAN NOT NULL DEFAULT 0,
            processed_at DATETIME,
            approved BOOLEAN NOT NULL DEFAULT 0
        )`,

		`CREATE TABLE IF NOT EXISTS gamification_profiles (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER UNIQUE NOT NULL,
            points INTEGER NOT NULL DEFAULT 0,
            current_rank_id INTEGER REFERENCES gamification_ranks(id),
            referred_by INTEGER,
            referrals_count INTEGER NOT NULL DEFAULT 0,
            last_daily_claim DATETIME,
            last_interaction_at DATETIME NOT NULL
        )`,

		`CREATE TABLE IF NOT EXISTS gamification_ranks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            min_points INTEGER UNIQUE NOT NULL,
            reward_description TEXT NOT NULL DEFAULT '',
            reward_vip_days INTEGER NOT NULL DEFAULT 0,
            reward_content_pack_id INTEGER REFERENCES reward_content_packs(id)
        )`,

		`CREATE TABLE IF NOT EXISTS reward_content_packs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT UNIQUE NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS reward_content_files (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            pack_id INTEGER NOT NULL REFERENCES reward_content_packs(id) ON DELETE CASCADE,
            file_id TEXT NOT NULL,
            file_unique_id TEXT NOT NULL,
            media_type TEXT NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_tokens_token ON invitation_tokens(token)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_status_expiry ON user_subscriptions(status, expiry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_user_date ON free_channel_requests(user_id, request_date)`,

		// At most one unprocessed request per user, enforced at the
		// storage level so a race cannot create a second timer.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_pending_user
            ON free_channel_requests(user_id) WHERE processed = 0`,

		`CREATE INDEX IF NOT EXISTS idx_profiles_user ON gamification_profiles(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_files_pack ON reward_content_files(pack_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// seedRanks installs the default rank ladder on an empty table.
func seedRanks(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM gamification_ranks`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	ladder := []struct {
		name        string
		minPoints   int64
		description string
	}{
		{"Bronce", 0, "Nivel inicial de bienvenida"},
		{"Plata", 100, "Reconocimiento de participación activa"},
		{"Oro", 500, "Miembro destacado"},
		{"Platino", 1000, "Usuario experto"},
		{"Diamante", 5000, "Usuario elite"},
	}

	for _, r := range ladder {
		_, err := db.Exec(
			`INSERT INTO gamification_ranks (name, min_points, reward_description) VALUES (?, ?, ?)`,
			r.name, r.minPoints, r.description,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

func (db *DB) Close() error {
	return db.db.Close()
}
