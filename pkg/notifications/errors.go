package notifications

import "errors"

var (
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrDuplicateRule is returned when two rules share a (category, type) pair.
	ErrDuplicateRule = errors.New("duplicate notification rule")

	// ErrInvalidRule is returned for rules with out-of-range weights or unknown channels.
	ErrInvalidRule = errors.New("invalid notification rule")

	// ErrLoadRules is returned when a rule table cannot be read or decoded.
	ErrLoadRules = errors.New("failed to load notification rules")

	// ErrStoreFailed wraps record store failures surfaced to callers.
	ErrStoreFailed = errors.New("notification store failure")

	// ErrThrottleLock is returned when the throttle lock cannot be acquired.
	ErrThrottleLock = errors.New("failed to acquire throttle lock")

	// ErrUserIDRequired is returned by read paths called without a user.
	ErrUserIDRequired = errors.New("user id is required")
)
