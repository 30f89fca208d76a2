package notifications

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, inside business hours.
var testNow = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

type stubEngagement struct {
	stats EngagementStats
	err   error
}

func (s stubEngagement) Analyze(context.Context, string) (EngagementStats, error) {
	return s.stats, s.err
}

func TestPriorityCalculator_CriticalComplianceDeadline(t *testing.T) {
	t.Parallel()

	calc := NewPriorityCalculator(DefaultRegistry(), nil, fixedClock(testNow), WithLocation(time.UTC))
	deadline := testNow.Add(12 * time.Hour)

	p, err := calc.Calculate(context.Background(), Request{
		UserID:   "u1",
		Category: CategoryCompliance,
		Type:     "deadline_critical",
		Context:  &ContextData{ComplianceDeadline: &deadline, RequiresAction: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, p.Score)
	assert.Equal(t, LevelCritical, p.Level)
	assert.Equal(t, UrgencyImmediate, p.Urgency)
	assert.Equal(t, ImpactHigh, p.BusinessImpact)
}

func TestPriorityCalculator_MarketingAnnouncement(t *testing.T) {
	t.Parallel()

	calc := NewPriorityCalculator(DefaultRegistry(), nil, fixedClock(testNow))
	p, err := calc.Calculate(context.Background(), Request{
		UserID:   "u1",
		Category: CategoryMarketing,
		Type:     "feature_announcement",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Score)
	assert.Equal(t, LevelLow, p.Level)
	assert.Equal(t, UrgencyWithinWeek, p.Urgency)
	assert.Equal(t, ImpactLow, p.BusinessImpact)
}

func TestPriorityCalculator_UnknownRuleUsesDefaultBase(t *testing.T) {
	t.Parallel()

	calc := NewPriorityCalculator(MustNewRegistry(), nil, fixedClock(testNow))
	p, err := calc.Calculate(context.Background(), Request{
		UserID:   "u1",
		Category: CategorySystem,
		Type:     "anything",
		Context:  &ContextData{Amount: 1500},
	})
	require.NoError(t, err)
	assert.Equal(t, 60, p.Score)
	assert.Equal(t, LevelNormal, p.Level)
}

func TestPriorityCalculator_AfterHoursBoost(t *testing.T) {
	t.Parallel()

	reg := MustNewRegistry(
		Rule{Category: CategorySystem, Type: "hot", BasePriority: 70, Channels: []Channel{ChannelInApp}},
		Rule{Category: CategorySystem, Type: "warm", BasePriority: 60, Channels: []Channel{ChannelInApp}},
	)
	saturday := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	sensitive := &ContextData{IsTimeSensitive: true}

	tests := []struct {
		name string
		now  time.Time
		typ  string
		want int
	}{
		{name: "hot during business hours", now: testNow, typ: "hot", want: 85},
		{name: "hot on weekend", now: saturday, typ: "hot", want: 95},
		{name: "hot late evening", now: time.Date(2025, 3, 5, 21, 0, 0, 0, time.UTC), typ: "hot", want: 95},
		{name: "warm on weekend stays below floor", now: saturday, typ: "warm", want: 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calc := NewPriorityCalculator(reg, nil, fixedClock(tt.now), WithLocation(time.UTC))
			p, err := calc.Calculate(context.Background(), Request{
				UserID: "u1", Category: CategorySystem, Type: tt.typ, Context: sensitive,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Score)
		})
	}
}

func TestPriorityCalculator_AfterHoursWithoutContext(t *testing.T) {
	t.Parallel()

	reg := MustNewRegistry(Rule{Category: CategorySystem, Type: "outage", BasePriority: 85})
	sunday := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	calc := NewPriorityCalculator(reg, nil, fixedClock(sunday), WithLocation(time.UTC))

	p, err := calc.Calculate(context.Background(), Request{UserID: "u1", Category: CategorySystem, Type: "outage"})
	require.NoError(t, err)
	assert.Equal(t, 95, p.Score)
}

func TestPriorityCalculator_ActiveUserBoost(t *testing.T) {
	t.Parallel()

	reg := MustNewRegistry(Rule{Category: CategoryDocument, Type: "x", BasePriority: 50})
	req := Request{UserID: "u1", Category: CategoryDocument, Type: "x"}

	active := NewPriorityCalculator(reg, stubEngagement{stats: EngagementStats{IsActiveUser: true}}, fixedClock(testNow))
	p, err := active.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 55, p.Score)

	inactive := NewPriorityCalculator(reg, stubEngagement{}, fixedClock(testNow))
	p, err = inactive.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Score)
}

func TestPriorityCalculator_EngagementErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	calc := NewPriorityCalculator(DefaultRegistry(), stubEngagement{err: boom}, fixedClock(testNow))
	_, err := calc.Calculate(context.Background(), Request{UserID: "u1", Category: CategoryPayment, Type: "payment_due"})
	assert.ErrorIs(t, err, boom)
}

func TestDeadlineBoost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want int
	}{
		{in: -48 * time.Hour, want: 25},
		{in: 12 * time.Hour, want: 25},
		{in: 24 * time.Hour, want: 25},
		{in: 25 * time.Hour, want: 15},
		{in: 72 * time.Hour, want: 15},
		{in: 5 * 24 * time.Hour, want: 10},
		{in: 7 * 24 * time.Hour, want: 10},
		{in: 8 * 24 * time.Hour, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deadlineBoost(daysUntil(testNow, testNow.Add(tt.in))), tt.in.String())
	}
}

func TestAmountBoost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, amountBoost(0))
	assert.Equal(t, 0, amountBoost(99.99))
	assert.Equal(t, 5, amountBoost(100))
	assert.Equal(t, 10, amountBoost(1000))
	assert.Equal(t, 10, amountBoost(9999))
	assert.Equal(t, 20, amountBoost(10000))
}

func TestTiersForScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score   int
		level   Level
		urgency Urgency
		impact  BusinessImpact
	}{
		{score: 100, level: LevelCritical, urgency: UrgencyImmediate, impact: ImpactHigh},
		{score: 95, level: LevelCritical, urgency: UrgencyImmediate, impact: ImpactHigh},
		{score: 90, level: LevelCritical, urgency: UrgencyWithinHour, impact: ImpactHigh},
		{score: 80, level: LevelHigh, urgency: UrgencyWithinHour, impact: ImpactHigh},
		{score: 79, level: LevelHigh, urgency: UrgencyWithinDay, impact: ImpactMedium},
		{score: 70, level: LevelHigh, urgency: UrgencyWithinDay, impact: ImpactMedium},
		{score: 60, level: LevelNormal, urgency: UrgencyWithinDay, impact: ImpactMedium},
		{score: 50, level: LevelNormal, urgency: UrgencyWithinWeek, impact: ImpactMedium},
		{score: 40, level: LevelNormal, urgency: UrgencyWithinWeek, impact: ImpactLow},
		{score: 39, level: LevelLow, urgency: UrgencyWithinWeek, impact: ImpactLow},
		{score: 0, level: LevelLow, urgency: UrgencyWithinWeek, impact: ImpactLow},
	}
	for _, tt := range tests {
		p := PriorityForScore(tt.score)
		assert.Equal(t, tt.level, p.Level, "level for %d", tt.score)
		assert.Equal(t, tt.urgency, p.Urgency, "urgency for %d", tt.score)
		assert.Equal(t, tt.impact, p.BusinessImpact, "impact for %d", tt.score)
	}
}

func TestTiersAreMonotonic(t *testing.T) {
	t.Parallel()

	for s := 1; s <= 100; s++ {
		assert.LessOrEqual(t, LevelForScore(s).Rank(), LevelForScore(s-1).Rank(), "score %d", s)
	}
}

func TestPriorityCalculator_ScoreAlwaysBounded(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	rules := reg.Rules()
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		rule := rules[rng.IntN(len(rules))]
		now := testNow.Add(time.Duration(rng.IntN(7*24)) * time.Hour)
		deadline := now.Add(time.Duration(rng.IntN(20*24)-48) * time.Hour)

		var cd *ContextData
		if rng.IntN(4) > 0 {
			cd = &ContextData{
				IsTimeSensitive: rng.IntN(2) == 0,
				RequiresAction:  rng.IntN(2) == 0,
				Amount:          rng.Float64() * 50000,
			}
			if rng.IntN(2) == 0 {
				cd.ComplianceDeadline = &deadline
			}
		}

		calc := NewPriorityCalculator(reg,
			stubEngagement{stats: EngagementStats{IsActiveUser: rng.IntN(2) == 0}},
			fixedClock(now), WithLocation(time.UTC))
		p, err := calc.Calculate(context.Background(), Request{
			UserID: "u1", Category: rule.Category, Type: rule.Type, Context: cd,
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, p.Score, 0)
		require.LessOrEqual(t, p.Score, 100)
		require.Equal(t, LevelForScore(p.Score), p.Level)
	}
}

func TestBusinessHours(t *testing.T) {
	t.Parallel()

	s := newSettings([]Option{WithLocation(time.UTC)})
	assert.False(t, s.isBusinessHours(time.Date(2025, 3, 5, 8, 59, 0, 0, time.UTC)))
	assert.True(t, s.isBusinessHours(time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)))
	assert.True(t, s.isBusinessHours(time.Date(2025, 3, 5, 17, 59, 0, 0, time.UTC)))
	assert.False(t, s.isBusinessHours(time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)))
	assert.False(t, s.isBusinessHours(time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)))

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	nyHours := newSettings([]Option{WithLocation(ny)})
	// 14:00 UTC is 09:00 in New York during EST.
	assert.True(t, nyHours.isBusinessHours(time.Date(2025, 1, 8, 14, 0, 0, 0, time.UTC)))
	assert.False(t, nyHours.isBusinessHours(time.Date(2025, 1, 8, 13, 0, 0, 0, time.UTC)))
}
