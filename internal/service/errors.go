package service

import "errors"

var (
	// ErrSelfReferral is returned when a user opens their own referral
	// link.
	ErrSelfReferral = errors.New("self-referral is not allowed")

	// ErrReferrerNotFound is returned when a referral link points to a
	// user that never interacted with the bot.
	ErrReferrerNotFound = errors.New("referrer profile not found")
)
