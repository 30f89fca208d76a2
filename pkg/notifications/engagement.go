package notifications

import (
	"context"
	"fmt"
	"math"
)

// EngagementStats is derived on demand and never stored.
type EngagementStats struct {
	IsActiveUser    bool    `json:"is_active_user"`
	EngagementScore int     `json:"engagement_score"`
	Total           int     `json:"total"`
	ReadCount       int     `json:"read_count"`
	RecentCount     int     `json:"recent_count"`
	ReadRate        float64 `json:"read_rate"`
}

// EngagementProvider estimates how responsive a user is.
type EngagementProvider interface {
	Analyze(ctx context.Context, userID string) (EngagementStats, error)
}

// EngagementAnalyzer reads a user's notification history to classify activity.
type EngagementAnalyzer struct {
	storage Storage
	s       settings
}

// NewEngagementAnalyzer creates an analyzer over storage.
func NewEngagementAnalyzer(storage Storage, opts ...Option) *EngagementAnalyzer {
	return &EngagementAnalyzer{storage: storage, s: newSettings(opts)}
}

// Analyze returns the user's engagement. A user with no history is inactive
// with score 0.
func (a *EngagementAnalyzer) Analyze(ctx context.Context, userID string) (EngagementStats, error) {
	history, err := a.storage.List(ctx, Filter{UserID: userID})
	if err != nil {
		return EngagementStats{}, fmt.Errorf("%w: list history: %w", ErrStoreFailed, err)
	}

	since := a.s.now().Add(-a.s.engagementWindow)
	stats := EngagementStats{Total: len(history)}
	for _, n := range history {
		if n.Read {
			stats.ReadCount++
		}
		if !n.CreatedAt.Before(since) {
			stats.RecentCount++
		}
	}

	return scoreEngagement(stats), nil
}

func scoreEngagement(stats EngagementStats) EngagementStats {
	if stats.Total > 0 {
		stats.ReadRate = float64(stats.ReadCount) / float64(stats.Total)
	}
	stats.IsActiveUser = stats.RecentCount > 5 && stats.ReadRate > 0.3

	raw := stats.ReadRate*50 + float64(min(stats.RecentCount, 20))*2.5
	stats.EngagementScore = int(math.Round(math.Max(0, math.Min(100, raw))))
	return stats
}
