package notifications

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"
)

// Fixed estimates reported until read and response times are tracked.
// Callers must not treat them as measurements.
const (
	estimatedAverageReadTime = 2.5 // minutes
	estimatedResponseRate    = 0.8
)

// EngagementMetrics summarises how the user handles notifications.
type EngagementMetrics struct {
	ReadRate        float64 `json:"read_rate"`
	AverageReadTime float64 `json:"average_read_time"`
	ResponseRate    float64 `json:"response_rate"`
}

// CategoryCount is one entry of the trending list.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// Analytics covers a user's notifications over the reporting window.
type Analytics struct {
	From               time.Time         `json:"from"`
	To                 time.Time         `json:"to"`
	TotalNotifications int               `json:"total_notifications"`
	UnreadCount        int               `json:"unread_count"`
	PriorityBreakdown  map[Level]int     `json:"priority_breakdown"`
	CategoryBreakdown  map[Category]int  `json:"category_breakdown"`
	EngagementMetrics  EngagementMetrics `json:"engagement_metrics"`
	TrendingCategories []CategoryCount   `json:"trending_categories"`
}

// AnalyticsAggregator computes rolling counts and trending categories.
type AnalyticsAggregator struct {
	storage Storage
	s       settings
}

// NewAnalyticsAggregator creates an aggregator over storage.
func NewAnalyticsAggregator(storage Storage, opts ...Option) *AnalyticsAggregator {
	return &AnalyticsAggregator{storage: storage, s: newSettings(opts)}
}

// Compute aggregates the trailing reporting window (30 days by default).
// Trending categories come from the trailing trending window (7 days by
// default), ordered by count, ties broken alphabetically.
func (a *AnalyticsAggregator) Compute(ctx context.Context, userID string) (Analytics, error) {
	if userID == "" {
		return Analytics{}, ErrUserIDRequired
	}

	now := a.s.now()
	from := now.Add(-a.s.analyticsWindow)
	records, err := a.storage.List(ctx, Filter{UserID: userID, Since: Time(from)})
	if err != nil {
		return Analytics{}, fmt.Errorf("%w: list analytics window: %w", ErrStoreFailed, err)
	}

	out := Analytics{
		From:               from,
		To:                 now,
		TotalNotifications: len(records),
		PriorityBreakdown:  make(map[Level]int),
		CategoryBreakdown:  make(map[Category]int),
		EngagementMetrics: EngagementMetrics{
			AverageReadTime: estimatedAverageReadTime,
			ResponseRate:    estimatedResponseRate,
		},
	}

	trendingSince := now.Add(-a.s.trendingWindow)
	recent := make(map[Category]int)
	read := 0
	for _, n := range records {
		if n.Read {
			read++
		} else {
			out.UnreadCount++
		}
		out.PriorityBreakdown[n.Priority]++
		out.CategoryBreakdown[n.Category]++
		if !n.CreatedAt.Before(trendingSince) {
			recent[n.Category]++
		}
	}
	if len(records) > 0 {
		out.EngagementMetrics.ReadRate = float64(read) / float64(len(records))
	}

	out.TrendingCategories = topCategories(recent, a.s.trendingSize)
	return out, nil
}

func topCategories(counts map[Category]int, n int) []CategoryCount {
	list := make([]CategoryCount, 0, len(counts))
	for c, count := range counts {
		list = append(list, CategoryCount{Category: c, Count: count})
	}
	slices.SortFunc(list, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
