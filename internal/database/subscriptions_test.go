package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vipgate/internal/models"
)

func TestRevokeSubscription(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// No subscription at all.
	err := db.RevokeSubscription(ctx, 1)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)

	_, err = db.ExtendSubscription(ctx, 1, 24*time.Hour)
	require.NoError(t, err)

	require.NoError(t, db.RevokeSubscription(ctx, 1))

	sub, err := db.GetSubscription(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, models.SubStatusRevoked, sub.Status)
	assert.Equal(t, models.RoleFree, sub.Role)

	// Revoking twice fails: the subscription is no longer active.
	err = db.RevokeSubscription(ctx, 1)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestListAndCountActiveVIPs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		_, err := db.ExtendSubscription(ctx, i, time.Duration(i)*24*time.Hour)
		require.NoError(t, err)
	}
	// One revoked, should not be listed.
	require.NoError(t, db.RevokeSubscription(ctx, 3))

	count, err := db.CountActiveVIPs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	subs, err := db.ListActiveVIPs(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, subs, 4)

	// Ordered by expiry ascending.
	for i := 1; i < len(subs); i++ {
		assert.False(t, subs[i].ExpiryDate.Before(*subs[i-1].ExpiryDate))
	}

	// Pagination.
	page, err := db.ListActiveVIPs(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestExpiryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	_, err := db.ExecContext(ctx,
		`INSERT INTO user_subscriptions (user_id, role, join_date, expiry_date, status)
         VALUES (?, 'vip', ?, ?, 'active')`, int64(10), past.Add(-24*time.Hour), past)
	require.NoError(t, err)

	_, err = db.ExtendSubscription(ctx, 11, 24*time.Hour)
	require.NoError(t, err)

	expired, err := db.GetExpiredActiveVIPs(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, int64(10), expired[0].UserID)

	require.NoError(t, db.MarkSubscriptionExpired(ctx, expired[0].ID))

	sub, err := db.GetSubscription(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, models.SubStatusExpired, sub.Status)
	assert.Equal(t, models.RoleFree, sub.Role)

	expired, err = db.GetExpiredActiveVIPs(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestGetExpiringSoon(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Expires in 12 hours: inside the 24h window.
	_, err := db.ExtendSubscription(ctx, 20, 12*time.Hour)
	require.NoError(t, err)
	// Expires in 3 days: outside.
	_, err = db.ExtendSubscription(ctx, 21, 72*time.Hour)
	require.NoError(t, err)

	soon, err := db.GetExpiringSoon(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, soon, 1)
	assert.Equal(t, int64(20), soon[0].UserID)

	require.NoError(t, db.MarkReminderSent(ctx, soon[0].ID))

	soon, err = db.GetExpiringSoon(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, soon)

	// Extending resets the reminder flag.
	_, err = db.ExtendSubscription(ctx, 20, time.Hour)
	require.NoError(t, err)
	soon, err = db.GetExpiringSoon(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Len(t, soon, 1)
}
