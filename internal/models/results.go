package models

import "time"

// RedemptionResult is the outcome of a successful token redemption.
type RedemptionResult struct {
	Subscription *UserSubscription `json:"subscription"`
	TierName     string            `json:"tier_name,omitempty"`
	GrantedDays  int               `json:"granted_days"`
	InviteLink   string            `json:"invite_link,omitempty"`
}

// AccessRequestResult describes what happened to a free access request.
type AccessRequestResult struct {
	// Queued is true when a new request was accepted.
	Queued bool `json:"queued"`
	// AlreadyPending is true when an earlier request is still waiting.
	AlreadyPending bool `json:"already_pending"`
	// RemainingWait is how long until the request becomes due.
	RemainingWait time.Duration `json:"remaining_wait"`
}

// DailyClaimResult reports a daily points claim attempt.
type DailyClaimResult struct {
	Claimed bool          `json:"claimed"`
	Points  int64         `json:"points"`
	Balance int64         `json:"balance"`
	RetryIn time.Duration `json:"retry_in"`
	NewRank *Rank         `json:"new_rank,omitempty"`
}

// ProfileSummary is the user-facing view of a gamification profile.
type ProfileSummary struct {
	Points         int64  `json:"points"`
	RankName       string `json:"rank_name"`
	NextRankName   string `json:"next_rank_name,omitempty"`
	PointsToNext   int64  `json:"points_to_next"`
	ReferralsCount int    `json:"referrals_count"`
}
