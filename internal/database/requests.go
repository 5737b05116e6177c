package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vipgate/internal/models"
)

// GetPendingRequest returns the user's unprocessed request, or nil.
func (db *DB) GetPendingRequest(ctx context.Context, userID int64) (*models.FreeChannelRequest, error) {
	query := `SELECT id, user_id, request_date, processed, processed_at, approved
              FROM free_channel_requests WHERE user_id = ? AND processed = 0`

	req, err := scanRequest(db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending request: %w", err)
	}
	return req, nil
}

func scanRequest(row rowScanner) (*models.FreeChannelRequest, error) {
	var req models.FreeChannelRequest
	var processedAt sql.NullTime
	err := row.Scan(&req.ID, &req.UserID, &req.RequestDate, &req.Processed, &processedAt, &req.Approved)
	if err != nil {
		return nil, err
	}
	req.RequestDate = req.RequestDate.UTC()
	if processedAt.Valid {
		t := processedAt.Time.UTC()
		req.ProcessedAt = &t
	}
	return &req, nil
}

// CreateRequest inserts a pending request. The partial unique index on
// (user_id) WHERE processed = 0 turns a concurrent duplicate into
// ErrRequestPending.
func (db *DB) CreateRequest(ctx context.Context, userID int64) (*models.FreeChannelRequest, error) {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO free_channel_requests (user_id, request_date) VALUES (?, ?)`,
		userID, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRequestPending
		}
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &models.FreeChannelRequest{ID: id, UserID: userID, RequestDate: now}, nil
}

// GetDueRequests returns unprocessed requests whose wait time has
// elapsed.
func (db *DB) GetDueRequests(ctx context.Context, waitTime time.Duration) ([]*models.FreeChannelRequest, error) {
	cutoff := time.Now().UTC().Add(-waitTime)
	query := `SELECT id, user_id, request_date, processed, processed_at, approved
              FROM free_channel_requests
              WHERE processed = 0 AND request_date <= ?
              ORDER BY request_date ASC`

	rows, err := db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get due requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.FreeChannelRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// MarkRequestProcessed stamps a request as handled. approved records
// whether the invite actually went out.
func (db *DB) MarkRequestProcessed(ctx context.Context, id int64, approved bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE free_channel_requests SET processed = 1, processed_at = ?, approved = ? WHERE id = ?`,
		time.Now().UTC(), approved, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark request processed: %w", err)
	}
	return nil
}

// CleanupOldRequests deletes unprocessed requests older than the age
// threshold to bound table growth.
func (db *DB) CleanupOldRequests(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)
	result, err := db.ExecContext(ctx,
		`DELETE FROM free_channel_requests WHERE processed = 0 AND request_date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old requests: %w", err)
	}
	return result.RowsAffected()
}

// GetRequestStats returns total and pending request counts.
func (db *DB) GetRequestStats(ctx context.Context) (total, pending int64, err error) {
	if err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM free_channel_requests`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to count requests: %w", err)
	}
	if err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM free_channel_requests WHERE processed = 0`).Scan(&pending); err != nil {
		return 0, 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return total, pending, nil
}
