package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifyengine/pkg/logger"
)

// Manager is the entry point of the engine: it validates, throttles, scores,
// stores and routes new notifications, and serves the read paths.
type Manager struct {
	storage    Storage
	rules      *Registry
	engagement *EngagementAnalyzer
	priority   *PriorityCalculator
	throttle   *ThrottleGuard
	router     *DeliveryRouter
	feed       *FeedBuilder
	analytics  *AnalyticsAggregator
	s          settings
}

// NewManager wires every component over the same storage and options.
// A nil rules registry falls back to DefaultRegistry.
func NewManager(storage Storage, rules *Registry, opts ...Option) *Manager {
	if rules == nil {
		rules = DefaultRegistry()
	}
	engagement := NewEngagementAnalyzer(storage, opts...)
	return &Manager{
		storage:    storage,
		rules:      rules,
		engagement: engagement,
		priority:   NewPriorityCalculator(rules, engagement, opts...),
		throttle:   NewThrottleGuard(rules, storage, opts...),
		router:     NewDeliveryRouter(opts...),
		feed:       NewFeedBuilder(storage, opts...),
		analytics:  NewAnalyticsAggregator(storage, opts...),
		s:          newSettings(opts),
	}
}

// Create turns a request into a stored notification and dispatches it.
// It returns (nil, nil) when the request is throttled. Delivery failures on
// email or SMS are logged and never fail the call.
func (m *Manager) Create(ctx context.Context, req Request) (*Notification, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rule, found := m.rules.Lookup(req.Category, req.Type)
	if found && rule.Throttle.Enabled() && m.s.locker != nil {
		unlock, err := m.s.locker.Lock(ctx, throttleLockKey(req.UserID, req.Category))
		if err != nil {
			return nil, errors.Join(ErrThrottleLock, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.s.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to release throttle lock",
					logger.UserID(req.UserID),
					logger.Category(req.Category),
					logger.Error(err),
				)
			}
		}()
	}

	throttled, err := m.throttle.ShouldThrottle(ctx, req.UserID, req.Category, req.Type)
	if err != nil {
		return nil, err
	}
	if throttled {
		m.s.logger.LogAttrs(ctx, slog.LevelInfo, "Notification throttled",
			logger.UserID(req.UserID),
			logger.Category(req.Category),
			slog.String("type", req.Type),
		)
		return nil, nil
	}

	p, err := m.priority.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	notif := Notification{
		ID:                uuid.New().String(),
		UserID:            req.UserID,
		Type:              req.Type,
		Title:             req.Title,
		Message:           req.Message,
		Category:          req.Category,
		Priority:          p.Level,
		ActionURL:         req.ActionURL,
		RelatedEntityID:   req.RelatedEntityID,
		RelatedEntityType: req.RelatedEntityType,
		Metadata:          p.Metadata(),
		CreatedAt:         m.stamp(),
	}

	if err := m.storage.Create(ctx, notif); err != nil {
		return nil, errors.Join(ErrStoreFailed, fmt.Errorf("failed to store notification: %w", err))
	}

	route := m.router.Route(notif, rule, found)
	report := m.router.Deliver(ctx, notif, route)

	m.s.logger.LogAttrs(ctx, slog.LevelInfo, "Notification created",
		logger.NotificationID(notif.ID),
		logger.UserID(notif.UserID),
		logger.Category(notif.Category),
		logger.Score(notif.Metadata.PriorityScore),
		slog.String("level", string(notif.Priority)),
		slog.Int("delivered", len(report.Delivered)),
		slog.Int("failed", len(report.Failed)),
	)

	return &notif, nil
}

// CreateForUsers fans one request out to several users. Throttled users are
// skipped; the first hard error stops the fan-out and is returned together
// with the notifications created so far.
func (m *Manager) CreateForUsers(ctx context.Context, userIDs []string, req Request) ([]Notification, error) {
	created := make([]Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		r := req
		r.UserID = userID
		n, err := m.Create(ctx, r)
		if err != nil {
			return created, fmt.Errorf("failed to create notification for user %s: %w", userID, err)
		}
		if n != nil {
			created = append(created, *n)
		}
	}
	return created, nil
}

func (m *Manager) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	return m.storage.Get(ctx, userID, notifID)
}

func (m *Manager) List(ctx context.Context, filter Filter) ([]Notification, error) {
	if filter.UserID == "" {
		return nil, ErrUserIDRequired
	}
	return m.storage.List(ctx, filter)
}

func (m *Manager) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	if userID == "" {
		return ErrUserIDRequired
	}
	return m.storage.MarkRead(ctx, userID, m.stamp(), notifIDs...)
}

// MarkAllRead marks every unread notification of the user as read.
func (m *Manager) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUserIDRequired
	}
	unread, err := m.storage.List(ctx, Filter{UserID: userID, Read: Bool(false)})
	if err != nil {
		return err
	}
	if len(unread) == 0 {
		return nil
	}

	ids := make([]string, len(unread))
	for i, n := range unread {
		ids[i] = n.ID
	}
	return m.storage.MarkRead(ctx, userID, m.stamp(), ids...)
}

func (m *Manager) CountUnread(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrUserIDRequired
	}
	return m.storage.Count(ctx, Filter{UserID: userID, Read: Bool(false)})
}

// Feed returns the user's prioritized feed.
func (m *Manager) Feed(ctx context.Context, userID string, limit int) ([]FeedItem, error) {
	return m.feed.Build(ctx, userID, limit)
}

// Analytics returns the user's rolling analytics.
func (m *Manager) Analytics(ctx context.Context, userID string) (Analytics, error) {
	return m.analytics.Compute(ctx, userID)
}

// Engagement returns the user's engagement stats.
func (m *Manager) Engagement(ctx context.Context, userID string) (EngagementStats, error) {
	if userID == "" {
		return EngagementStats{}, ErrUserIDRequired
	}
	return m.engagement.Analyze(ctx, userID)
}

// Registry returns the rule table in use.
func (m *Manager) Registry() *Registry {
	return m.rules
}

// stamp is the clock reading used for stored timestamps. Millisecond precision
// is what every storage backend can round-trip.
func (m *Manager) stamp() time.Time {
	return m.s.now().Truncate(time.Millisecond)
}

// Storage returns the underlying notification storage.
func (m *Manager) Storage() Storage {
	return m.storage
}
