package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vipgate/internal/models"
)

const profileColumns = `id, user_id, points, current_rank_id, referred_by,
    referrals_count, last_daily_claim, last_interaction_at`

// GetProfile returns the user's gamification profile, or nil when the
// user never interacted with the bot.
func (db *DB) GetProfile(ctx context.Context, userID int64) (*models.GamificationProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM gamification_profiles WHERE user_id = ?`

	profile, err := scanProfile(db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func scanProfile(row rowScanner) (*models.GamificationProfile, error) {
	var p models.GamificationProfile
	var rankID, referredBy sql.NullInt64
	var lastClaim sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &p.Points, &rankID, &referredBy,
		&p.ReferralsCount, &lastClaim, &p.LastInteractionAt)
	if err != nil {
		return nil, err
	}
	if rankID.Valid {
		p.CurrentRankID = &rankID.Int64
	}
	if referredBy.Valid {
		p.ReferredBy = &referredBy.Int64
	}
	if lastClaim.Valid {
		t := lastClaim.Time.UTC()
		p.LastDailyClaim = &t
	}
	p.LastInteractionAt = p.LastInteractionAt.UTC()
	return &p, nil
}

// CreateProfile inserts a fresh profile at the starting rank. referredBy
// may be nil. Returns ErrProfileExists when the user already has one.
func (db *DB) CreateProfile(ctx context.Context, userID int64, referredBy *int64) (*models.GamificationProfile, error) {
	var startRankID sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT id FROM gamification_ranks WHERE min_points = 0`).Scan(&startRankID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get starting rank: %w", err)
	}

	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO gamification_profiles (user_id, points, current_rank_id, referred_by, last_interaction_at)
         VALUES (?, 0, ?, ?, ?)`,
		userID, startRankID, referredBy, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	profile := &models.GamificationProfile{
		ID:                id,
		UserID:            userID,
		ReferredBy:        referredBy,
		LastInteractionAt: now,
	}
	if startRankID.Valid {
		profile.CurrentRankID = &startRankID.Int64
	}
	return profile, nil
}

// AddPoints increments the user's balance, creating the profile on
// first interaction, and returns the new balance.
func (db *DB) AddPoints(ctx context.Context, userID int64, points int64) (int64, error) {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`UPDATE gamification_profiles SET points = points + ?, last_interaction_at = ? WHERE user_id = ?`,
		points, now, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add points: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := db.CreateProfile(ctx, userID, nil); err != nil && !errors.Is(err, ErrProfileExists) {
			return 0, err
		}
		if _, err := db.ExecContext(ctx,
			`UPDATE gamification_profiles SET points = points + ?, last_interaction_at = ? WHERE user_id = ?`,
			points, now, userID,
		); err != nil {
			return 0, fmt.Errorf("failed to add points: %w", err)
		}
	}

	var balance int64
	err = db.QueryRowContext(ctx,
		`SELECT points FROM gamification_profiles WHERE user_id = ?`, userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

// SetLastDailyClaim records a successful daily claim.
func (db *DB) SetLastDailyClaim(ctx context.Context, userID int64, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE gamification_profiles SET last_daily_claim = ? WHERE user_id = ?`,
		at.UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set last daily claim: %w", err)
	}
	return nil
}

// IncrementReferrals bumps the referrer's counter.
func (db *DB) IncrementReferrals(ctx context.Context, userID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE gamification_profiles SET referrals_count = referrals_count + 1 WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment referrals: %w", err)
	}
	return nil
}

// UpdateProfileRank sets the user's current rank.
func (db *DB) UpdateProfileRank(ctx context.Context, userID int64, rankID int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE gamification_profiles SET current_rank_id = ? WHERE user_id = ?`,
		rankID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile rank: %w", err)
	}
	return nil
}

const rankColumns = `id, name, min_points, reward_description, reward_vip_days, reward_content_pack_id`

// GetBestRankForPoints returns the rank with the highest threshold not
// exceeding the balance.
func (db *DB) GetBestRankForPoints(ctx context.Context, points int64) (*models.Rank, error) {
	query := `SELECT ` + rankColumns + ` FROM gamification_ranks
              WHERE min_points <= ? ORDER BY min_points DESC LIMIT 1`

	rank, err := scanRank(db.QueryRowContext(ctx, query, points))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRankNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rank for points: %w", err)
	}
	return rank, nil
}

func scanRank(row rowScanner) (*models.Rank, error) {
	var r models.Rank
	var packID sql.NullInt64
	err := row.Scan(&r.ID, &r.Name, &r.MinPoints, &r.RewardDescription, &r.RewardVIPDays, &packID)
	if err != nil {
		return nil, err
	}
	if packID.Valid {
		r.RewardContentPackID = &packID.Int64
	}
	return &r, nil
}

// GetRankByID resolves a rank or returns ErrRankNotFound.
func (db *DB) GetRankByID(ctx context.Context, id int64) (*models.Rank, error) {
	query := `SELECT ` + rankColumns + ` FROM gamification_ranks WHERE id = ?`

	rank, err := scanRank(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRankNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rank: %w", err)
	}
	return rank, nil
}

// GetAllRanks lists the ladder from lowest to highest threshold.
func (db *DB) GetAllRanks(ctx context.Context) ([]*models.Rank, error) {
	query := `SELECT ` + rankColumns + ` FROM gamification_ranks ORDER BY min_points ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranks: %w", err)
	}
	defer rows.Close()

	var ranks []*models.Rank
	for rows.Next() {
		r, err := scanRank(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rank: %w", err)
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

// UpdateRankRewards attaches VIP days and an optional content pack to
// a rank.
func (db *DB) UpdateRankRewards(ctx context.Context, rankID int64, vipDays int, packID *int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE gamification_ranks SET reward_vip_days = ?, reward_content_pack_id = ? WHERE id = ?`,
		vipDays, packID, rankID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rank rewards: %w", err)
	}
	return requireRow(result, ErrRankNotFound)
}
