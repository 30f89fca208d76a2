package notifications

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	notifications map[string][]Notification // userID -> notifications
	mu            sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		return errors.New("notification ID is required")
	}
	if notif.UserID == "" {
		return ErrUserIDRequired
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications[notif.UserID] {
		if n.ID == notif.ID {
			return errors.New("notification ID already exists")
		}
	}
	s.notifications[notif.UserID] = append(s.notifications[notif.UserID], notif)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[userID] {
		if n.ID == notifID {
			notif := n
			return &notif, nil
		}
	}
	return nil, ErrNotificationNotFound
}

func (s *MemoryStorage) List(ctx context.Context, filter Filter) ([]Notification, error) {
	s.mu.RLock()
	filtered := s.match(filter)
	s.mu.RUnlock()

	slices.SortStableFunc(filtered, func(a, b Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	start := min(filter.Offset, len(filtered))
	end := len(filtered)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, end)
	}
	return filtered[start:end], nil
}

func (s *MemoryStorage) Count(ctx context.Context, filter Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.match(filter)), nil
}

// match copies matching records; callers hold the read lock.
func (s *MemoryStorage) match(filter Filter) []Notification {
	out := make([]Notification, 0)
	for _, n := range s.notifications[filter.UserID] {
		if filter.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID string, readAt time.Time, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notifications := s.notifications[userID]
	for i := range notifications {
		if slices.Contains(notifIDs, notifications[i].ID) {
			notifications[i].MarkAsRead(readAt)
		}
	}
	return nil
}
