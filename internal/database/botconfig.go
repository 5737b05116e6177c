package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vipgate/internal/models"
)

// GetBotConfig returns the configuration row, or nil when none exists.
// Callers go through the config service, which handles lazy creation
// and caching.
func (db *DB) GetBotConfig(ctx context.Context) (*models.BotConfig, error) {
	query := `SELECT id, vip_channel_id, free_channel_id, wait_time_minutes,
	                 vip_reactions, free_reactions, vip_protected, free_protected, updated_at
              FROM bot_config ORDER BY id LIMIT 1`

	var cfg models.BotConfig
	var vipReactions, freeReactions string
	err := db.QueryRowContext(ctx, query).Scan(
		&cfg.ID, &cfg.VIPChannelID, &cfg.FreeChannelID, &cfg.WaitTimeMinutes,
		&vipReactions, &freeReactions, &cfg.VIPProtected, &cfg.FreeProtected, &cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bot config: %w", err)
	}

	if err := json.Unmarshal([]byte(vipReactions), &cfg.VIPReactions); err != nil {
		cfg.VIPReactions = nil
	}
	if err := json.Unmarshal([]byte(freeReactions), &cfg.FreeReactions); err != nil {
		cfg.FreeReactions = nil
	}
	cfg.UpdatedAt = cfg.UpdatedAt.UTC()

	return &cfg, nil
}

// CreateBotConfig inserts a configuration row with defaults.
func (db *DB) CreateBotConfig(ctx context.Context) (*models.BotConfig, error) {
	query := `INSERT INTO bot_config (wait_time_minutes, updated_at) VALUES (?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, models.DefaultWaitTimeMinutes, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot config: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &models.BotConfig{
		ID:              id,
		WaitTimeMinutes: models.DefaultWaitTimeMinutes,
		UpdatedAt:       now,
	}, nil
}

// UpdateBotConfig persists all mutable fields of the configuration row.
func (db *DB) UpdateBotConfig(ctx context.Context, cfg *models.BotConfig) error {
	vipReactions, err := json.Marshal(cfg.VIPReactions)
	if err != nil {
		return fmt.Errorf("failed to encode vip reactions: %w", err)
	}
	freeReactions, err := json.Marshal(cfg.FreeReactions)
	if err != nil {
		return fmt.Errorf("failed to encode free reactions: %w", err)
	}

	query := `UPDATE bot_config
              SET vip_channel_id = ?, free_channel_id = ?, wait_time_minutes = ?,
                  vip_reactions = ?, free_reactions = ?, vip_protected = ?, free_protected = ?,
                  updated_at = ?
              WHERE id = ?`
	_, err = db.ExecContext(ctx, query,
		cfg.VIPChannelID, cfg.FreeChannelID, cfg.WaitTimeMinutes,
		string(vipReactions), string(freeReactions), cfg.VIPProtected, cfg.FreeProtected,
		time.Now().UTC(), cfg.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bot config: %w", err)
	}
	return nil
}
