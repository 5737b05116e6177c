package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vipgate/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestTier(t *testing.T, db *DB, name string, days int) *models.SubscriptionTier {
	t.Helper()
	tier := &models.SubscriptionTier{Name: name, DurationDays: days, PriceUSD: 9.99}
	require.NoError(t, db.CreateTier(context.Background(), tier))
	return tier
}

func TestCreateAndGetToken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tier := createTestTier(t, db, "Mensual", 30)

	token := &models.InvitationToken{Token: "abc-123", GeneratedBy: 777, TierID: &tier.ID}
	require.NoError(t, db.CreateToken(ctx, token))
	assert.NotZero(t, token.ID)
	assert.False(t, token.Used)

	got, err := db.GetUnusedToken(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)
	require.NotNil(t, got.TierID)
	assert.Equal(t, tier.ID, *got.TierID)

	_, err = db.GetUnusedToken(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestConsumeToken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tier := createTestTier(t, db, "Mensual", 30)
	token := &models.InvitationToken{Token: "tok-1", GeneratedBy: 777, TierID: &tier.ID}
	require.NoError(t, db.CreateToken(ctx, token))

	duration := time.Duration(tier.DurationDays) * 24 * time.Hour

	sub, err := db.ConsumeToken(ctx, token.ID, 100, duration)
	require.NoError(t, err)
	assert.Equal(t, models.RoleVIP, sub.Role)
	assert.Equal(t, models.SubStatusActive, sub.Status)
	require.NotNil(t, sub.ExpiryDate)
	assert.WithinDuration(t, time.Now().Add(duration), *sub.ExpiryDate, 5*time.Second)

	// The token string no longer resolves.
	_, err = db.GetUnusedToken(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// Second consumption of the same token must fail.
	_, err = db.ConsumeToken(ctx, token.ID, 101, duration)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// The losing user must not have a subscription.
	other, err := db.GetSubscription(ctx, 101)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestConsumeTokenConcurrent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tier := createTestTier(t, db, "Mensual", 30)
	token := &models.InvitationToken{Token: "tok-race", GeneratedBy: 777, TierID: &tier.ID}
	require.NoError(t, db.CreateToken(ctx, token))

	duration := 30 * 24 * time.Hour
	const workers = 8

	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, results[n] = db.ConsumeToken(ctx, token.ID, int64(1000+n), duration)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrTokenNotFound)
		}
	}
	assert.Equal(t, 1, winners, "exactly one worker should consume the token")
}

func TestExtendSubscriptionStacksFromExpiry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	duration := 30 * 24 * time.Hour

	sub, err := db.ExtendSubscription(ctx, 50, duration)
	require.NoError(t, err)
	firstExpiry := *sub.ExpiryDate

	// A second extension before expiry stacks on top of the stored
	// expiry, not on top of now.
	sub, err = db.ExtendSubscription(ctx, 50, duration)
	require.NoError(t, err)
	assert.WithinDuration(t, firstExpiry.Add(duration), *sub.ExpiryDate, 5*time.Second)
}

func TestExtendSubscriptionLapsedStartsFromNow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// A lapsed subscription whose expiry is in the past.
	past := time.Now().UTC().Add(-72 * time.Hour)
	_, err := db.ExecContext(ctx,
		`INSERT INTO user_subscriptions (user_id, role, join_date, expiry_date, status)
         VALUES (?, 'vip', ?, ?, 'expired')`, int64(60), past.Add(-time.Hour), past)
	require.NoError(t, err)

	duration := 24 * time.Hour
	sub, err := db.ExtendSubscription(ctx, 60, duration)
	require.NoError(t, err)
	require.NotNil(t, sub.ExpiryDate)
	assert.WithinDuration(t, time.Now().Add(duration), *sub.ExpiryDate, 5*time.Second)
	assert.Equal(t, models.SubStatusActive, sub.Status)
	assert.Equal(t, models.RoleVIP, sub.Role)
}
