package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifyengine/pkg/logger"
)

// Locker provides a mutual-exclusion lock keyed by string. The returned
// unlock function releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}

// ThrottleGuard enforces per-user, per-category caps over trailing windows.
//
// Counts are recomputed from stored records on every call; no counters are
// kept. Two concurrent requests can both pass before either is stored and
// exceed a cap by one. Configure a Locker on the Manager to serialize the
// check and the insert when that matters.
type ThrottleGuard struct {
	rules   *Registry
	storage Storage
	s       settings
}

// NewThrottleGuard creates a guard over storage.
func NewThrottleGuard(rules *Registry, storage Storage, opts ...Option) *ThrottleGuard {
	return &ThrottleGuard{rules: rules, storage: storage, s: newSettings(opts)}
}

// ShouldThrottle reports whether a new (category, type) notification for the
// user would exceed the rule's hourly or daily cap.
func (g *ThrottleGuard) ShouldThrottle(ctx context.Context, userID string, category Category, typ string) (bool, error) {
	rule, found := g.rules.Lookup(category, typ)
	if !found || !rule.Throttle.Enabled() {
		return false, nil
	}

	now := g.s.now()
	windows := []struct {
		name  string
		limit int
		span  time.Duration
	}{
		{name: "hour", limit: rule.Throttle.MaxPerHour, span: time.Hour},
		{name: "day", limit: rule.Throttle.MaxPerDay, span: 24 * time.Hour},
	}

	for _, w := range windows {
		if w.limit <= 0 {
			continue
		}
		count, err := g.storage.Count(ctx, Filter{
			UserID:   userID,
			Category: category,
			Since:    Time(now.Add(-w.span)),
		})
		if err != nil {
			return false, fmt.Errorf("%w: count %s window: %w", ErrStoreFailed, w.name, err)
		}
		if count >= w.limit {
			g.s.logger.LogAttrs(ctx, slog.LevelDebug, "Throttle cap reached",
				logger.UserID(userID),
				logger.Category(category),
				slog.String("window", w.name),
				slog.Int("count", count),
				slog.Int("limit", w.limit),
			)
			return true, nil
		}
	}

	return false, nil
}

func throttleLockKey(userID string, category Category) string {
	return "notifications:throttle:" + userID + ":" + string(category)
}
