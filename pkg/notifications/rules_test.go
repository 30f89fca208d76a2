package notifications

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	rule, ok := reg.Lookup(CategoryCompliance, "deadline_critical")
	require.True(t, ok)
	assert.Equal(t, 95, rule.BasePriority)
	assert.ElementsMatch(t, []Channel{ChannelInApp, ChannelEmail, ChannelSMS}, rule.Channels)
	assert.False(t, rule.Throttle.Enabled())

	rule, ok = reg.Lookup(CategoryPayment, "payment_failed")
	require.True(t, ok)
	require.NotNil(t, rule.Throttle)
	assert.Equal(t, 2, rule.Throttle.MaxPerHour)
	assert.Equal(t, 5, rule.Throttle.MaxPerDay)
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	reg := MustNewRegistry(
		Rule{Category: CategoryDocument, Type: "first", BasePriority: 10},
		Rule{Category: CategoryDocument, Type: "second", BasePriority: 20},
		Rule{Category: CategoryCompliance, Type: "specific", BasePriority: 30},
		Rule{Category: CategoryCompliance, BasePriority: 40},
	)

	tests := []struct {
		name     string
		category Category
		typ      string
		want     int
		found    bool
	}{
		{name: "exact match", category: CategoryDocument, typ: "second", want: 20, found: true},
		{name: "first rule of category as fallback", category: CategoryDocument, typ: "missing", want: 10, found: true},
		{name: "wildcard wins over earlier rule", category: CategoryCompliance, typ: "missing", want: 40, found: true},
		{name: "exact beats wildcard", category: CategoryCompliance, typ: "specific", want: 30, found: true},
		{name: "unknown category", category: CategoryMarketing, typ: "x", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rule, ok := reg.Lookup(tt.category, tt.typ)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, rule.BasePriority)
			}
		})
	}
}

func TestRegistry_DefaultsMultipliers(t *testing.T) {
	t.Parallel()

	reg := MustNewRegistry(Rule{Category: CategorySystem, Type: "x", BasePriority: 40})
	rule, ok := reg.Lookup(CategorySystem, "x")
	require.True(t, ok)
	assert.Equal(t, 1.0, rule.UrgencyMultiplier)
	assert.Equal(t, 1.0, rule.BusinessImpactWeight)
}

func TestRegistry_LookupReturnsCopy(t *testing.T) {
	t.Parallel()

	reg := MustNewRegistry(Rule{
		Category: CategoryPayment, Type: "x", BasePriority: 40,
		Channels: []Channel{ChannelInApp}, Throttle: &Throttle{MaxPerHour: 1},
	})
	rule, _ := reg.Lookup(CategoryPayment, "x")
	rule.Channels[0] = ChannelSMS
	rule.Throttle.MaxPerHour = 99

	again, _ := reg.Lookup(CategoryPayment, "x")
	assert.Equal(t, ChannelInApp, again.Channels[0])
	assert.Equal(t, 1, again.Throttle.MaxPerHour)
}

func TestNewRegistry_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules []Rule
		err   error
	}{
		{
			name:  "duplicate pair",
			rules: []Rule{{Category: CategoryPayment, Type: "a", BasePriority: 1}, {Category: CategoryPayment, Type: "a", BasePriority: 2}},
			err:   ErrDuplicateRule,
		},
		{name: "missing category", rules: []Rule{{Type: "a"}}, err: ErrInvalidRule},
		{name: "base above 100", rules: []Rule{{Category: CategoryPayment, BasePriority: 101}}, err: ErrInvalidRule},
		{name: "negative multiplier", rules: []Rule{{Category: CategoryPayment, UrgencyMultiplier: -1}}, err: ErrInvalidRule},
		{name: "unknown channel", rules: []Rule{{Category: CategoryPayment, Channels: []Channel{"pigeon"}}}, err: ErrInvalidRule},
		{name: "negative cap", rules: []Rule{{Category: CategoryPayment, Throttle: &Throttle{MaxPerDay: -1}}}, err: ErrInvalidRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reg, err := NewRegistry(tt.rules...)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, reg)
		})
	}
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		reg, err := LoadRules(strings.NewReader(`
rules:
  - category: payment
    type: payment_failed
    base_priority: 80
    channels: [in_app, email]
    throttle: { max_per_hour: 1 }
`))
		require.NoError(t, err)
		rule, ok := reg.Lookup(CategoryPayment, "payment_failed")
		require.True(t, ok)
		assert.Equal(t, 80, rule.BasePriority)
		assert.True(t, rule.HasChannel(ChannelEmail))
		assert.False(t, rule.HasChannel(ChannelSMS))
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := LoadRules(strings.NewReader("rules:\n  - category: payment\n    weight: 3\n"))
		assert.ErrorIs(t, err, ErrLoadRules)
	})

	t.Run("duplicate rule", func(t *testing.T) {
		t.Parallel()
		_, err := LoadRules(strings.NewReader("rules:\n  - category: payment\n  - category: payment\n"))
		assert.ErrorIs(t, err, ErrLoadRules)
		assert.ErrorIs(t, err, ErrDuplicateRule)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		reg, err := LoadRules(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, reg.Rules())
	})
}

func TestLoadRulesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - category: system\n    base_priority: 10\n"), 0o600))

	reg, err := LoadRulesFile(path)
	require.NoError(t, err)
	_, ok := reg.Lookup(CategorySystem, "anything")
	assert.True(t, ok)

	_, err = LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadRules)
}
