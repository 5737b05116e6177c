package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vipgate/internal/models"
)

func (db *DB) CreateTier(ctx context.Context, tier *models.SubscriptionTier) error {
	query := `INSERT INTO subscription_tiers (name, duration_days, price_usd, is_active, created_at)
              VALUES (?, ?, ?, 1, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, tier.Name, tier.DurationDays, tier.PriceUSD, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to create tier: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	tier.ID = id
	tier.IsActive = true
	tier.CreatedAt = now
	return nil
}

func (db *DB) GetTierByID(ctx context.Context, id int64) (*models.SubscriptionTier, error) {
	query := `SELECT id, name, duration_days, price_usd, is_active, created_at
              FROM subscription_tiers WHERE id = ?`
	return db.queryTier(ctx, query, id)
}

func (db *DB) queryTier(ctx context.Context, query string, args ...interface{}) (*models.SubscriptionTier, error) {
	var tier models.SubscriptionTier
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&tier.ID, &tier.Name, &tier.DurationDays, &tier.PriceUSD, &tier.IsActive, &tier.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTierNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tier: %w", err)
	}
	tier.CreatedAt = tier.CreatedAt.UTC()
	return &tier, nil
}

func (db *DB) GetActiveTiers(ctx context.Context) ([]*models.SubscriptionTier, error) {
	query := `SELECT id, name, duration_days, price_usd, is_active, created_at
              FROM subscription_tiers WHERE is_active = 1 ORDER BY duration_days, name`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*models.SubscriptionTier
	for rows.Next() {
		t := &models.SubscriptionTier{}
		err := rows.Scan(&t.ID, &t.Name, &t.DurationDays, &t.PriceUSD, &t.IsActive, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		t.CreatedAt = t.CreatedAt.UTC()
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (db *DB) UpdateTierName(ctx context.Context, id int64, name string) error {
	result, err := db.ExecContext(ctx, `UPDATE subscription_tiers SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to update tier name: %w", err)
	}
	return requireRow(result, ErrTierNotFound)
}

func (db *DB) UpdateTierDuration(ctx context.Context, id int64, durationDays int) error {
	result, err := db.ExecContext(ctx, `UPDATE subscription_tiers SET duration_days = ? WHERE id = ?`, durationDays, id)
	if err != nil {
		return fmt.Errorf("failed to update tier duration: %w", err)
	}
	return requireRow(result, ErrTierNotFound)
}

func (db *DB) UpdateTierPrice(ctx context.Context, id int64, priceUSD float64) error {
	result, err := db.ExecContext(ctx, `UPDATE subscription_tiers SET price_usd = ? WHERE id = ?`, priceUSD, id)
	if err != nil {
		return fmt.Errorf("failed to update tier price: %w", err)
	}
	return requireRow(result, ErrTierNotFound)
}

// DeactivateTier soft-deletes a tier. Tokens issued against it remain
// resolvable.
func (db *DB) DeactivateTier(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `UPDATE subscription_tiers SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate tier: %w", err)
	}
	return requireRow(result, ErrTierNotFound)
}

func requireRow(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
