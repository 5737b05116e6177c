package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vipgate/internal/models"
)

// CreatePack creates an empty named content pack.
func (db *DB) CreatePack(ctx context.Context, name string) (*models.RewardContentPack, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO reward_content_packs (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create pack: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return db.GetPackByID(ctx, id)
}

// GetPackByID resolves a pack or returns ErrPackNotFound.
func (db *DB) GetPackByID(ctx context.Context, id int64) (*models.RewardContentPack, error) {
	var p models.RewardContentPack
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM reward_content_packs WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pack: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// ListPacks returns all packs, newest first.
func (db *DB) ListPacks(ctx context.Context) ([]*models.RewardContentPack, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, created_at FROM reward_content_packs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list packs: %w", err)
	}
	defer rows.Close()

	var packs []*models.RewardContentPack
	for rows.Next() {
		var p models.RewardContentPack
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pack: %w", err)
		}
		p.CreatedAt = p.CreatedAt.UTC()
		packs = append(packs, &p)
	}
	return packs, rows.Err()
}

// DeletePack removes a pack and, via cascade, its files. Ranks that
// referenced the pack keep their VIP day reward only.
func (db *DB) DeletePack(ctx context.Context, id int64) error {
	if _, err := db.ExecContext(ctx,
		`UPDATE gamification_ranks SET reward_content_pack_id = NULL WHERE reward_content_pack_id = ?`, id,
	); err != nil {
		return fmt.Errorf("failed to detach pack from ranks: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM reward_content_packs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pack: %w", err)
	}
	return requireRow(result, ErrPackNotFound)
}

// AddFileToPack registers a media reference inside a pack.
func (db *DB) AddFileToPack(ctx context.Context, packID int64, fileID, fileUniqueID, mediaType string) (*models.RewardContentFile, error) {
	if _, err := db.GetPackByID(ctx, packID); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO reward_content_files (pack_id, file_id, file_unique_id, media_type)
         VALUES (?, ?, ?, ?)`,
		packID, fileID, fileUniqueID, mediaType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add file to pack: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &models.RewardContentFile{
		ID:           id,
		PackID:       packID,
		FileID:       fileID,
		FileUniqueID: fileUniqueID,
		MediaType:    mediaType,
	}, nil
}

// GetPackFiles lists a pack's media in insertion order.
func (db *DB) GetPackFiles(ctx context.Context, packID int64) ([]*models.RewardContentFile, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, pack_id, file_id, file_unique_id, media_type
         FROM reward_content_files WHERE pack_id = ? ORDER BY id ASC`, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pack files: %w", err)
	}
	defer rows.Close()

	var files []*models.RewardContentFile
	for rows.Next() {
		var f models.RewardContentFile
		if err := rows.Scan(&f.ID, &f.PackID, &f.FileID, &f.FileUniqueID, &f.MediaType); err != nil {
			return nil, fmt.Errorf("failed to scan pack file: %w", err)
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}
