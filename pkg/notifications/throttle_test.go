package notifications

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestThrottleGuard_ShouldThrottle(t *testing.T) {
	t.Parallel()

	reg := MustNewRegistry(
		Rule{Category: CategoryPayment, Type: "hourly", BasePriority: 50, Throttle: &Throttle{MaxPerHour: 2}},
		Rule{Category: CategoryDocument, Type: "daily", BasePriority: 50, Throttle: &Throttle{MaxPerDay: 3}},
		Rule{Category: CategorySystem, Type: "free", BasePriority: 50},
	)

	tests := []struct {
		name     string
		category Category
		typ      string
		existing []time.Duration // ages of stored notifications in the category
		want     bool
	}{
		{name: "below hourly cap", category: CategoryPayment, typ: "hourly", existing: []time.Duration{5 * time.Minute}, want: false},
		{name: "at hourly cap", category: CategoryPayment, typ: "hourly", existing: []time.Duration{5 * time.Minute, 10 * time.Minute}, want: true},
		{name: "old ones fall out of the hour", category: CategoryPayment, typ: "hourly", existing: []time.Duration{5 * time.Minute, 61 * time.Minute}, want: false},
		{name: "at daily cap", category: CategoryDocument, typ: "daily", existing: []time.Duration{time.Hour, 5 * time.Hour, 20 * time.Hour}, want: true},
		{name: "daily window slides", category: CategoryDocument, typ: "daily", existing: []time.Duration{time.Hour, 5 * time.Hour, 25 * time.Hour}, want: false},
		{name: "no throttle configured", category: CategorySystem, typ: "free", existing: []time.Duration{0, 0, 0, 0}, want: false},
		{name: "no rule", category: CategoryMarketing, typ: "x", existing: []time.Duration{0, 0, 0}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			s := NewMemoryStorage()
			for i, age := range tt.existing {
				require.NoError(t, s.Create(ctx, seedNotification(fmt.Sprintf("n%d", i), "u1", tt.category, testNow.Add(-age))))
			}
			// Another category and another user never count.
			require.NoError(t, s.Create(ctx, seedNotification("x1", "u1", CategoryAccount, testNow)))
			require.NoError(t, s.Create(ctx, seedNotification("x2", "u2", tt.category, testNow)))

			g := NewThrottleGuard(reg, s, fixedClock(testNow))
			got, err := g.ShouldThrottle(ctx, "u1", tt.category, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThrottleGuard_StoreError(t *testing.T) {
	t.Parallel()

	store := &MockStorage{}
	store.On("Count", mock.Anything, mock.Anything).Return(0, errors.New("timeout"))

	g := NewThrottleGuard(DefaultRegistry(), store, fixedClock(testNow))
	_, err := g.ShouldThrottle(context.Background(), "u1", CategoryPayment, "payment_failed")
	assert.ErrorIs(t, err, ErrStoreFailed)
}

func TestThrottleLockKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:throttle:u1:payment", throttleLockKey("u1", CategoryPayment))
}
