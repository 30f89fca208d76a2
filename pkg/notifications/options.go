package notifications

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Config holds the env-driven tunables of the engine.
type Config struct {
	EmailThreshold   int           `env:"NOTIFY_EMAIL_THRESHOLD" envDefault:"70"`
	SMSThreshold     int           `env:"NOTIFY_SMS_THRESHOLD" envDefault:"95"`
	FeedLimit        int           `env:"NOTIFY_FEED_LIMIT" envDefault:"10"`
	EngagementWindow time.Duration `env:"NOTIFY_ENGAGEMENT_WINDOW" envDefault:"720h"`
	AnalyticsWindow  time.Duration `env:"NOTIFY_ANALYTICS_WINDOW" envDefault:"720h"`
	TrendingWindow   time.Duration `env:"NOTIFY_TRENDING_WINDOW" envDefault:"168h"`
	Timezone         string        `env:"NOTIFY_TIMEZONE" envDefault:"Local"`
	RulesFile        string        `env:"NOTIFY_RULES_FILE"`
}

// Options converts the config into engine options.
func (c Config) Options() ([]Option, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.EmailThreshold > 100 || c.SMSThreshold > 100 {
		return nil, errors.New("channel thresholds must be within 0..100")
	}
	opts := []Option{WithLocation(loc)}
	if c.EmailThreshold > 0 || c.SMSThreshold > 0 {
		opts = append(opts, WithChannelThresholds(c.EmailThreshold, c.SMSThreshold))
	}
	if c.FeedLimit > 0 {
		opts = append(opts, WithFeedLimit(c.FeedLimit))
	}
	if c.EngagementWindow > 0 {
		opts = append(opts, WithEngagementWindow(c.EngagementWindow))
	}
	if c.AnalyticsWindow > 0 || c.TrendingWindow > 0 {
		opts = append(opts, WithAnalyticsWindows(c.AnalyticsWindow, c.TrendingWindow))
	}
	return opts, nil
}

// Registry returns the rule table named by RulesFile, or the built-in one.
func (c Config) Registry() (*Registry, error) {
	if c.RulesFile == "" {
		return DefaultRegistry(), nil
	}
	return LoadRulesFile(c.RulesFile)
}

// Option configures the engine components. The same options can be passed to
// NewManager or to any component constructor.
type Option func(*settings)

type settings struct {
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger

	businessStart int
	businessEnd   int

	emailThreshold int
	smsThreshold   int

	engagementWindow time.Duration
	analyticsWindow  time.Duration
	trendingWindow   time.Duration
	trendingSize     int
	feedLimit        int

	email  EmailTransport
	sms    SMSTransport
	locker Locker
}

func newSettings(opts []Option) settings {
	s := settings{
		now:              time.Now,
		location:         time.Local,
		logger:           slog.Default(),
		businessStart:    9,
		businessEnd:      18,
		emailThreshold:   70,
		smsThreshold:     95,
		engagementWindow: 30 * 24 * time.Hour,
		analyticsWindow:  30 * 24 * time.Hour,
		trendingWindow:   7 * 24 * time.Hour,
		trendingSize:     3,
		feedLimit:        10,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithClock overrides the wall clock. Nil is ignored.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone business hours are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBusinessHours sets the [start, end) local hours counted as business
// hours on weekdays.
func WithBusinessHours(start, end int) Option {
	return func(s *settings) {
		if start >= 0 && end <= 24 && start < end {
			s.businessStart, s.businessEnd = start, end
		}
	}
}

// WithChannelThresholds sets the minimum scores for email and SMS.
// Non-positive values keep the defaults.
func WithChannelThresholds(email, sms int) Option {
	return func(s *settings) {
		if email > 0 {
			s.emailThreshold = email
		}
		if sms > 0 {
			s.smsThreshold = sms
		}
	}
}

// WithEngagementWindow sets how far back "recent" activity reaches.
func WithEngagementWindow(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.engagementWindow = d
		}
	}
}

// WithAnalyticsWindows sets the reporting and trending windows.
func WithAnalyticsWindows(report, trending time.Duration) Option {
	return func(s *settings) {
		if report > 0 {
			s.analyticsWindow = report
		}
		if trending > 0 {
			s.trendingWindow = trending
		}
	}
}

// WithFeedLimit sets the default feed size used when callers pass limit <= 0.
func WithFeedLimit(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.feedLimit = n
		}
	}
}

// WithEmailTransport sets the email channel transport.
func WithEmailTransport(t EmailTransport) Option {
	return func(s *settings) { s.email = t }
}

// WithSMSTransport sets the SMS channel transport.
func WithSMSTransport(t SMSTransport) Option {
	return func(s *settings) { s.sms = t }
}

// WithLocker serializes the throttle check and the insert per (user, category).
func WithLocker(l Locker) Option {
	return func(s *settings) { s.locker = l }
}
