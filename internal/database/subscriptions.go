package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vipgate/internal/models"
)

// activeVIPPredicate is shared by the listing, the count and the stats
// queries so they always agree on what "active VIP" means.
const activeVIPPredicate = `role = 'vip' AND status = 'active' AND expiry_date > ?`

func (db *DB) GetSubscription(ctx context.Context, userID int64) (*models.UserSubscription, error) {
	query := `SELECT id, user_id, role, join_date, expiry_date, status, token_id, reminder_sent
              FROM user_subscriptions WHERE user_id = ?`

	sub, err := scanSubscription(db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row rowScanner) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	var expiry sql.NullTime
	var tokenID sql.NullInt64
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Role, &sub.JoinDate, &expiry, &sub.Status, &tokenID, &sub.ReminderSent,
	)
	if err != nil {
		return nil, err
	}
	sub.JoinDate = sub.JoinDate.UTC()
	if expiry.Valid {
		t := expiry.Time.UTC()
		sub.ExpiryDate = &t
	}
	if tokenID.Valid {
		sub.TokenID = &tokenID.Int64
	}
	return &sub, nil
}

// RevokeSubscription requires an active, unexpired VIP subscription and
// flips it to revoked/free. The guarded UPDATE keeps check and write in
// one statement.
func (db *DB) RevokeSubscription(ctx context.Context, userID int64) error {
	query := `UPDATE user_subscriptions SET status = 'revoked', role = 'free'
              WHERE user_id = ? AND ` + activeVIPPredicate
	result, err := db.ExecContext(ctx, query, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to revoke subscription: %w", err)
	}
	return requireRow(result, ErrNoActiveSubscription)
}

// ListActiveVIPs returns one page of active VIP subscriptions ordered
// by soonest-expiring first.
func (db *DB) ListActiveVIPs(ctx context.Context, offset, limit int) ([]*models.UserSubscription, error) {
	query := `SELECT id, user_id, role, join_date, expiry_date, status, token_id, reminder_sent
              FROM user_subscriptions WHERE ` + activeVIPPredicate + `
              ORDER BY expiry_date ASC LIMIT ? OFFSET ?`

	rows, err := db.QueryContext(ctx, query, time.Now().UTC(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list active vips: %w", err)
	}
	defer rows.Close()

	var subs []*models.UserSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (db *DB) CountActiveVIPs(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM user_subscriptions WHERE ` + activeVIPPredicate

	var count int64
	if err := db.QueryRowContext(ctx, query, time.Now().UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active vips: %w", err)
	}
	return count, nil
}

// GetExpiredActiveVIPs returns active VIP subscriptions whose expiry is
// in the past, for the reconciler to transition.
func (db *DB) GetExpiredActiveVIPs(ctx context.Context) ([]*models.UserSubscription, error) {
	query := `SELECT id, user_id, role, join_date, expiry_date, status, token_id, reminder_sent
              FROM user_subscriptions
              WHERE role = 'vip' AND status = 'active' AND expiry_date <= ?
              ORDER BY expiry_date ASC`

	rows, err := db.QueryContext(ctx, query, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get expired vips: %w", err)
	}
	defer rows.Close()

	var subs []*models.UserSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// MarkSubscriptionExpired transitions a subscription to expired/free.
func (db *DB) MarkSubscriptionExpired(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE user_subscriptions SET status = 'expired', role = 'free' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark subscription expired: %w", err)
	}
	return nil
}

// GetExpiringSoon returns active VIP subscriptions expiring within the
// window that have not been reminded yet.
func (db *DB) GetExpiringSoon(ctx context.Context, window time.Duration) ([]*models.UserSubscription, error) {
	now := time.Now().UTC()
	query := `SELECT id, user_id, role, join_date, expiry_date, status, token_id, reminder_sent
              FROM user_subscriptions
              WHERE role = 'vip' AND status = 'active' AND reminder_sent = 0
                AND expiry_date > ? AND expiry_date <= ?
              ORDER BY expiry_date ASC`

	rows, err := db.QueryContext(ctx, query, now, now.Add(window))
	if err != nil {
		return nil, fmt.Errorf("failed to get expiring subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.UserSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// MarkReminderSent flags a subscription so the 24h reminder is sent
// only once.
func (db *DB) MarkReminderSent(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE user_subscriptions SET reminder_sent = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}
