package notifications

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const wordsPerMinute = 200

// Insights explains a feed item to the user.
type Insights struct {
	PriorityExplanation string `json:"priority_explanation"`
	RecommendedAction   string `json:"recommended_action"`
	EstimatedReadTime   string `json:"estimated_read_time"`
}

// FeedItem is a stored notification with its insights.
type FeedItem struct {
	Notification
	Insights Insights `json:"insights"`
}

// FeedBuilder re-sorts a user's notifications: unread by tier first, then
// everything read, newest first within each group.
type FeedBuilder struct {
	storage Storage
	s       settings
	title   cases.Caser
}

// NewFeedBuilder creates a feed builder over storage.
func NewFeedBuilder(storage Storage, opts ...Option) *FeedBuilder {
	return &FeedBuilder{
		storage: storage,
		s:       newSettings(opts),
		title:   cases.Title(language.English),
	}
}

// Build returns at most limit items; limit <= 0 uses the configured default.
// Every call re-reads storage.
func (b *FeedBuilder) Build(ctx context.Context, userID string, limit int) ([]FeedItem, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if limit <= 0 {
		limit = b.s.feedLimit
	}

	all, err := b.storage.List(ctx, Filter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("%w: list feed: %w", ErrStoreFailed, err)
	}

	slices.SortStableFunc(all, compareFeed)
	if len(all) > limit {
		all = all[:limit]
	}

	items := make([]FeedItem, 0, len(all))
	for _, n := range all {
		items = append(items, FeedItem{Notification: n, Insights: b.insights(n)})
	}
	return items, nil
}

// feedRank: unread critical=1 .. unread low=4, read (any tier)=5.
func feedRank(n Notification) int {
	if n.Read {
		return 5
	}
	return n.Priority.Rank() + 1
}

func compareFeed(a, b Notification) int {
	if c := cmp.Compare(feedRank(a), feedRank(b)); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func (b *FeedBuilder) insights(n Notification) Insights {
	return Insights{
		PriorityExplanation: b.explain(n),
		RecommendedAction:   recommendedAction(n),
		EstimatedReadTime:   estimateReadTime(n.Message),
	}
}

func (b *FeedBuilder) explain(n Notification) string {
	area := b.title.String(strings.ReplaceAll(string(n.Category), "_", " "))
	score := n.Metadata.PriorityScore
	switch {
	case score >= 90:
		return fmt.Sprintf("Critical (score %d): this %s item needs your immediate attention to avoid penalties or service disruption.", score, area)
	case score >= 70:
		return fmt.Sprintf("High priority (score %d): an important %s update you should handle soon.", score, area)
	case score >= 40:
		return fmt.Sprintf("Normal priority (score %d): a routine %s update.", score, area)
	default:
		return fmt.Sprintf("Low priority (score %d): informational %s update, no action needed.", score, area)
	}
}

var categoryActions = map[Category]string{
	CategoryCompliance: "Review & submit the required filing",
	CategoryPayment:    "Resolve the payment issue",
	CategoryDocument:   "Review the document",
	CategoryFormation:  "Continue your business formation",
}

func recommendedAction(n Notification) string {
	if n.ActionURL != "" {
		return "Open the linked page to take action"
	}
	if action, ok := categoryActions[n.Category]; ok {
		return action
	}
	return "Mark as read"
}

func estimateReadTime(message string) string {
	minutes := float64(len(strings.Fields(message))) / wordsPerMinute
	if minutes < 1 {
		return "< 1 min"
	}
	n := int(math.Round(minutes))
	if n == 1 {
		return "1 min"
	}
	return fmt.Sprintf("%d mins", n)
}
