package database

import "errors"

var (
	// ErrTokenNotFound is returned when a token string does not resolve
	// to an unused token. Deliberately indistinguishable from "already
	// used" at the caller level.
	ErrTokenNotFound = errors.New("token not found or already used")

	// ErrTokenExpired is returned for legacy duration tokens past
	// created_at + duration_hours.
	ErrTokenExpired = errors.New("token expired")

	// ErrTierNotFound is returned when a tier id does not resolve.
	ErrTierNotFound = errors.New("subscription tier not found")

	// ErrTierInactive is returned when issuing a token against a
	// soft-deleted tier.
	ErrTierInactive = errors.New("subscription tier is not active")

	// ErrNoActiveSubscription is returned by revoke when the user has
	// no active VIP subscription.
	ErrNoActiveSubscription = errors.New("user does not have an active VIP subscription")

	// ErrRequestPending is returned when a free-access request already
	// exists for the user. Enforced by a partial unique index.
	ErrRequestPending = errors.New("free channel request already pending")

	// ErrRankNotFound is returned when a rank id does not resolve.
	ErrRankNotFound = errors.New("rank not found")

	// ErrPackNotFound is returned when a content pack id does not resolve.
	ErrPackNotFound = errors.New("content pack not found")

	// ErrDuplicateName is returned on unique-name collisions (tiers,
	// content packs).
	ErrDuplicateName = errors.New("name already exists")

	// ErrProfileExists is returned when a referral targets a user that
	// already has a gamification profile.
	ErrProfileExists = errors.New("gamification profile already exists")
)
