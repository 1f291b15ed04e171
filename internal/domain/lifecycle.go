package domain

import (
	"errors"
	"time"
)

// ErrInvalidTransition is returned when a status change is not allowed by the
// lifecycle table. It is surfaced to the caller, never coerced to a nearby
// valid state.
var ErrInvalidTransition = errors.New("invalid listing status transition")

const (
	// DefaultListingPeriodDays is how long a new listing runs before expiring.
	DefaultListingPeriodDays = 30
	// DefaultNotifyWindowDays is how far ahead expiration warnings look.
	DefaultNotifyWindowDays = 3
)

// statusTransitions is the full lifecycle table. sold is terminal; expired
// listings can only be republished back to active.
var statusTransitions = map[ListingStatus][]ListingStatus{
	StatusActive:  {StatusPaused, StatusSold, StatusExpired},
	StatusPaused:  {StatusActive, StatusSold},
	StatusExpired: {StatusActive},
	StatusSold:    {},
}

// ValidateStatusTransition reports whether from → to is allowed. Any pair not
// in the lifecycle table is rejected.
func ValidateStatusTransition(from, to ListingStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CalculateExpirationDate adds periodDays calendar days to createdAt.
// Calendar-day arithmetic avoids daylight-savings drift.
func CalculateExpirationDate(createdAt time.Time, periodDays int) time.Time {
	return createdAt.AddDate(0, 0, periodDays)
}

// IsListingExpired is strict: a listing expiring exactly now is not yet expired.
func IsListingExpired(expiresAt, now time.Time) bool {
	return expiresAt.Before(now)
}

// ShouldNotifyExpiration reports whether expiresAt falls in the half-open
// window (now, now + windowDays].
func ShouldNotifyExpiration(expiresAt, now time.Time, windowDays int) bool {
	if windowDays <= 0 {
		windowDays = DefaultNotifyWindowDays
	}
	deadline := now.AddDate(0, 0, windowDays)
	return expiresAt.After(now) && !expiresAt.After(deadline)
}
