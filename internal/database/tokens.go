package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vipgate/internal/models"
)

func (db *DB) CreateToken(ctx context.Context, token *models.InvitationToken) error {
	query := `INSERT INTO invitation_tokens (token, generated_by, created_at, tier_id, duration_hours)
              VALUES (?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		token.Token, token.GeneratedBy, now, token.TierID, token.DurationHours,
	)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	token.ID = id
	token.CreatedAt = now
	return nil
}

// GetUnusedToken resolves a token string to an unused token row.
// Used tokens and unknown strings are indistinguishable to the caller.
func (db *DB) GetUnusedToken(ctx context.Context, tokenStr string) (*models.InvitationToken, error) {
	query := `SELECT id, token, generated_by, created_at, tier_id, duration_hours, used, used_by, used_at
              FROM invitation_tokens WHERE token = ? AND used = 0`
	return db.queryToken(ctx, query, tokenStr)
}

func (db *DB) GetTokenByID(ctx context.Context, id int64) (*models.InvitationToken, error) {
	query := `SELECT id, token, generated_by, created_at, tier_id, duration_hours, used, used_by, used_at
              FROM invitation_tokens WHERE id = ?`
	return db.queryToken(ctx, query, id)
}

func (db *DB) queryToken(ctx context.Context, query string, args ...interface{}) (*models.InvitationToken, error) {
	var token models.InvitationToken
	var tierID sql.NullInt64
	var usedBy sql.NullInt64
	var usedAt sql.NullTime
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&token.ID, &token.Token, &token.GeneratedBy, &token.CreatedAt,
		&tierID, &token.DurationHours, &token.Used, &usedBy, &usedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	token.CreatedAt = token.CreatedAt.UTC()
	if tierID.Valid {
		token.TierID = &tierID.Int64
	}
	if usedBy.Valid {
		token.UsedBy = &usedBy.Int64
	}
	if usedAt.Valid {
		t := usedAt.Time.UTC()
		token.UsedAt = &t
	}
	return &token, nil
}

// ConsumeToken marks a token used and extends (or creates) the user's
// subscription in a single transaction. The token transitions
// used=false->true exactly once: a concurrent redemption loses the
// guarded UPDATE and gets ErrTokenNotFound.
func (db *DB) ConsumeToken(ctx context.Context, tokenID, userID int64, duration time.Duration) (*models.UserSubscription, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE invitation_tokens SET used = 1, used_by = ?, used_at = ? WHERE id = ? AND used = 0`,
		userID, now, tokenID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark token used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrTokenNotFound
	}

	sub, err := extendSubscriptionTx(ctx, tx, userID, duration, &tokenID, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}
	return sub, nil
}

// extendSubscriptionTx upserts the user's subscription row, extending
// expiry from the later of now and the current expiry.
func extendSubscriptionTx(ctx context.Context, tx *sql.Tx, userID int64, duration time.Duration, tokenID *int64, now time.Time) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	var expiry sql.NullTime
	var curTokenID sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT id, user_id, role, join_date, expiry_date, status, token_id, reminder_sent
         FROM user_subscriptions WHERE user_id = ?`, userID,
	).Scan(&sub.ID, &sub.UserID, &sub.Role, &sub.JoinDate, &expiry, &sub.Status, &curTokenID, &sub.ReminderSent)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		newExpiry := now.Add(duration)
		result, insErr := tx.ExecContext(ctx,
			`INSERT INTO user_subscriptions (user_id, role, join_date, expiry_date, status, token_id, reminder_sent)
             VALUES (?, ?, ?, ?, ?, ?, 0)`,
			userID, models.RoleVIP, now, newExpiry, models.SubStatusActive, tokenID,
		)
		if insErr != nil {
			return nil, fmt.Errorf("failed to create subscription: %w", insErr)
		}
		id, idErr := result.LastInsertId()
		if idErr != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", idErr)
		}
		return &models.UserSubscription{
			ID:         id,
			UserID:     userID,
			Role:       models.RoleVIP,
			JoinDate:   now,
			ExpiryDate: &newExpiry,
			Status:     models.SubStatusActive,
			TokenID:    tokenID,
		}, nil

	case err != nil:
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	// Extend from the later of now and the stored expiry, so redeeming
	// before expiry stacks instead of resetting. Legacy rows may carry
	// naive timestamps; normalize to UTC before comparing.
	base := now
	if expiry.Valid {
		stored := expiry.Time.UTC()
		if stored.After(base) {
			base = stored
		}
	}
	newExpiry := base.Add(duration)

	newTokenID := curTokenID
	if tokenID != nil {
		newTokenID = sql.NullInt64{Int64: *tokenID, Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE user_subscriptions
         SET role = ?, expiry_date = ?, status = ?, token_id = ?, reminder_sent = 0
         WHERE user_id = ?`,
		models.RoleVIP, newExpiry, models.SubStatusActive, newTokenID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extend subscription: %w", err)
	}

	sub.Role = models.RoleVIP
	sub.Status = models.SubStatusActive
	sub.ExpiryDate = &newExpiry
	sub.JoinDate = sub.JoinDate.UTC()
	sub.ReminderSent = false
	if newTokenID.Valid {
		sub.TokenID = &newTokenID.Int64
	}
	return &sub, nil
}

// ExtendSubscription adds time to a user's subscription outside of a
// token redemption (rank rewards).
func (db *DB) ExtendSubscription(ctx context.Context, userID int64, duration time.Duration) (*models.UserSubscription, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sub, err := extendSubscriptionTx(ctx, tx, userID, duration, nil, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit extension: %w", err)
	}
	return sub, nil
}
