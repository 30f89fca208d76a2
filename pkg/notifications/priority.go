package notifications

import (
	"context"
	"math"
	"time"
)

// Priority is the outcome of scoring a request.
type Priority struct {
	Level          Level          `json:"level"`
	Score          int            `json:"score"`
	Urgency        Urgency        `json:"urgency"`
	BusinessImpact BusinessImpact `json:"business_impact"`
}

// Metadata returns the persisted form of the priority.
func (p Priority) Metadata() Metadata {
	return Metadata{PriorityScore: p.Score, Urgency: p.Urgency, BusinessImpact: p.BusinessImpact}
}

// Additive boosts.
const (
	boostTimeSensitive  = 15
	boostRequiresAction = 10
	boostActiveUser     = 5
	boostAfterHours     = 10

	// Only items already this hot get the after-hours boost.
	afterHoursBoostFloor = 80
)

// PriorityCalculator combines a rule lookup with request context into a
// bounded score. Given the same inputs and clock it is deterministic.
type PriorityCalculator struct {
	rules      *Registry
	engagement EngagementProvider
	s          settings
}

// NewPriorityCalculator creates a calculator. engagement may be nil, in which
// case no user is treated as active.
func NewPriorityCalculator(rules *Registry, engagement EngagementProvider, opts ...Option) *PriorityCalculator {
	return &PriorityCalculator{rules: rules, engagement: engagement, s: newSettings(opts)}
}

// Calculate scores req. The only error source is the engagement lookup.
func (c *PriorityCalculator) Calculate(ctx context.Context, req Request) (Priority, error) {
	rule, found := c.rules.Lookup(req.Category, req.Type)

	score := float64(DefaultBasePriority)
	if found {
		score = float64(rule.BasePriority)
	}

	now := c.s.now()
	if cd := req.Context; cd != nil {
		if cd.IsTimeSensitive {
			score += boostTimeSensitive
		}
		if cd.ComplianceDeadline != nil {
			score += float64(deadlineBoost(daysUntil(now, *cd.ComplianceDeadline)))
		}
		score += float64(amountBoost(cd.Amount))
		if cd.RequiresAction {
			score += boostRequiresAction
		}
	}

	if c.engagement != nil {
		stats, err := c.engagement.Analyze(ctx, req.UserID)
		if err != nil {
			return Priority{}, err
		}
		if stats.IsActiveUser {
			score += boostActiveUser
		}
	}

	if score >= afterHoursBoostFloor && !c.s.isBusinessHours(now) {
		score += boostAfterHours
	}

	if found {
		score *= rule.UrgencyMultiplier
		score *= rule.BusinessImpactWeight
	}

	return PriorityForScore(clampScore(score)), nil
}

// PriorityForScore derives the three independent tiers from a final score.
func PriorityForScore(score int) Priority {
	return Priority{
		Level:          LevelForScore(score),
		Score:          score,
		Urgency:        UrgencyForScore(score),
		BusinessImpact: ImpactForScore(score),
	}
}

func LevelForScore(score int) Level {
	switch {
	case score >= 90:
		return LevelCritical
	case score >= 70:
		return LevelHigh
	case score >= 40:
		return LevelNormal
	default:
		return LevelLow
	}
}

func UrgencyForScore(score int) Urgency {
	switch {
	case score >= 95:
		return UrgencyImmediate
	case score >= 80:
		return UrgencyWithinHour
	case score >= 60:
		return UrgencyWithinDay
	default:
		return UrgencyWithinWeek
	}
}

func ImpactForScore(score int) BusinessImpact {
	switch {
	case score >= 80:
		return ImpactHigh
	case score >= 50:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// daysUntil rounds up, so anything due within the next 24h (or overdue) is <= 1.
func daysUntil(now, deadline time.Time) int {
	return int(math.Ceil(float64(deadline.Sub(now)) / float64(24*time.Hour)))
}

func deadlineBoost(days int) int {
	switch {
	case days <= 1:
		return 25
	case days <= 3:
		return 15
	case days <= 7:
		return 10
	default:
		return 0
	}
}

func amountBoost(amount float64) int {
	switch {
	case amount >= 10000:
		return 20
	case amount >= 1000:
		return 10
	case amount >= 100:
		return 5
	default:
		return 0
	}
}

func clampScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

// isBusinessHours reports Mon-Fri within [businessStart, businessEnd) local time.
func (s settings) isBusinessHours(t time.Time) bool {
	local := t.In(s.location)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := local.Hour()
	return h >= s.businessStart && h < s.businessEnd
}
