package models

import "time"

// BotConfig is the single process-wide configuration row. It is created
// lazily with defaults on first access and cached by the config service.
type BotConfig struct {
	ID               int64     `json:"id"`
	VIPChannelID     string    `json:"vip_channel_id"`
	FreeChannelID    string    `json:"free_channel_id"`
	WaitTimeMinutes  int       `json:"wait_time_minutes"`
	VIPReactions     []string  `json:"vip_reactions"`
	FreeReactions    []string  `json:"free_reactions"`
	VIPProtected     bool      `json:"vip_protected"`
	FreeProtected    bool      `json:"free_protected"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ChannelID returns the configured channel id for a channel kind.
func (c *BotConfig) ChannelID(kind string) string {
	if kind == ChannelVIP {
		return c.VIPChannelID
	}
	return c.FreeChannelID
}

// SubscriptionTier is a named plan with a fixed duration and price.
// Tiers are soft-deleted: tokens reference them and historical tokens
// must remain resolvable.
type SubscriptionTier struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DurationDays int       `json:"duration_days"`
	PriceUSD     float64   `json:"price_usd"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// InvitationToken is a single-use credential for VIP access. Either
// TierID is set (tier-based token) or DurationHours is nonzero (legacy
// fixed-duration token that expires at CreatedAt + DurationHours).
type InvitationToken struct {
	ID            int64      `json:"id"`
	Token         string     `json:"token"`
	GeneratedBy   int64      `json:"generated_by"`
	CreatedAt     time.Time  `json:"created_at"`
	TierID        *int64     `json:"tier_id"`
	DurationHours int        `json:"duration_hours"`
	Used          bool       `json:"used"`
	UsedBy        *int64     `json:"used_by"`
	UsedAt        *time.Time `json:"used_at"`
}

// UserSubscription is the per-user ledger record of role, status and
// expiry. ExpiryDate is nil for non-expiring roles.
type UserSubscription struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Role         string     `json:"role"` // free, vip, admin
	JoinDate     time.Time  `json:"join_date"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	Status       string     `json:"status"` // active, expired, revoked
	TokenID      *int64     `json:"token_id"`
	ReminderSent bool       `json:"reminder_sent"`
}

// FreeChannelRequest is a pending request for free channel access,
// gated behind the configured wait time.
type FreeChannelRequest struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	RequestDate time.Time  `json:"request_date"`
	Processed   bool       `json:"processed"`
	ProcessedAt *time.Time `json:"processed_at"`
	Approved    bool       `json:"approved"`
}

// GamificationProfile holds a user's points balance and rank.
type GamificationProfile struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	Points            int64      `json:"points"`
	CurrentRankID     *int64     `json:"current_rank_id"`
	ReferredBy        *int64     `json:"referred_by"`
	ReferralsCount    int        `json:"referrals_count"`
	LastDailyClaim    *time.Time `json:"last_daily_claim"`
	LastInteractionAt time.Time  `json:"last_interaction_at"`
}

// Rank is a gamification level reached by accumulating points.
type Rank struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	MinPoints           int64  `json:"min_points"`
	RewardDescription   string `json:"reward_description"`
	RewardVIPDays       int    `json:"reward_vip_days"`
	RewardContentPackID *int64 `json:"reward_content_pack_id"`
}

// RewardContentPack is a named bundle of media delivered on rank-up.
type RewardContentPack struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RewardContentFile is a single media reference inside a pack.
type RewardContentFile struct {
	ID           int64  `json:"id"`
	PackID       int64  `json:"pack_id"`
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	MediaType    string `json:"media_type"` // photo, video, document
}

// ChannelStats is a snapshot of per-channel counters for the admin UI
// and the HTTP API.
type ChannelStats struct {
	ActiveSubscribers int64 `json:"active_subscribers"`
	TotalRequests     int64 `json:"total_requests"`
	PendingRequests   int64 `json:"pending_requests"`
}
