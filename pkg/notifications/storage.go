package notifications

import (
	"context"
	"time"
)

// Storage handles notification persistence and retrieval.
//
// Implementations must make Create atomic for a single record and return
// consistent reads; the engine holds no locks of its own.
type Storage interface {
	// Create stores a new notification.
	Create(ctx context.Context, notif Notification) error

	// Get retrieves a single notification.
	Get(ctx context.Context, userID, notifID string) (*Notification, error)

	// List returns notifications matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]Notification, error)

	// Count returns the number of notifications matching the filter.
	// Limit and Offset are ignored.
	Count(ctx context.Context, filter Filter) (int, error)

	// MarkRead marks unread notification(s) as read at the given time.
	MarkRead(ctx context.Context, userID string, readAt time.Time, notifIDs ...string) error
}

// Filter selects a user's notifications.
type Filter struct {
	UserID   string     // Required
	Category Category   // Empty matches every category
	Since    *time.Time // Inclusive lower bound on CreatedAt
	Until    *time.Time // Exclusive upper bound on CreatedAt
	Read     *bool      // Nil matches both states
	Limit    int        // 0 = no limit
	Offset   int
}

// Matches reports whether n satisfies the filter, ignoring pagination.
func (f Filter) Matches(n Notification) bool {
	if n.UserID != f.UserID {
		return false
	}
	if f.Category != "" && n.Category != f.Category {
		return false
	}
	if f.Since != nil && n.CreatedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && !n.CreatedAt.Before(*f.Until) {
		return false
	}
	if f.Read != nil && n.Read != *f.Read {
		return false
	}
	return true
}

// Bool returns a pointer to b, for Filter.Read.
func Bool(b bool) *bool { return &b }

// Time returns a pointer to t, for Filter.Since and Filter.Until.
func Time(t time.Time) *time.Time { return &t }
