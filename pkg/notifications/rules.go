package notifications

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultBasePriority is the starting score when no rule matches.
const DefaultBasePriority = 50

//go:embed rules.yaml
var defaultRulesYAML []byte

// Throttle caps how many notifications of a category a user may receive.
// Zero means "no cap" for that window.
type Throttle struct {
	MaxPerHour int `yaml:"max_per_hour,omitempty" json:"max_per_hour,omitempty"`
	MaxPerDay  int `yaml:"max_per_day,omitempty" json:"max_per_day,omitempty"`
}

// Enabled reports whether at least one cap is configured.
func (t *Throttle) Enabled() bool {
	return t != nil && (t.MaxPerHour > 0 || t.MaxPerDay > 0)
}

// Rule maps a (category, type) pair to scoring weights, channels and caps.
// An empty Type makes the rule the category-wide fallback.
type Rule struct {
	Category             Category  `yaml:"category" json:"category"`
	Type                 string    `yaml:"type,omitempty" json:"type,omitempty"`
	BasePriority         int       `yaml:"base_priority" json:"base_priority"`
	UrgencyMultiplier    float64   `yaml:"urgency_multiplier" json:"urgency_multiplier"`
	BusinessImpactWeight float64   `yaml:"business_impact_weight" json:"business_impact_weight"`
	Channels             []Channel `yaml:"channels" json:"channels"`
	Throttle             *Throttle `yaml:"throttle,omitempty" json:"throttle,omitempty"`
}

// HasChannel reports whether the rule lists c.
func (r Rule) HasChannel(c Channel) bool {
	return slices.Contains(r.Channels, c)
}

func (r Rule) validate() error {
	if r.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidRule)
	}
	if r.BasePriority < 0 || r.BasePriority > 100 {
		return fmt.Errorf("%w: %s/%s base priority %d outside 0..100", ErrInvalidRule, r.Category, r.Type, r.BasePriority)
	}
	if r.UrgencyMultiplier <= 0 || r.BusinessImpactWeight <= 0 {
		return fmt.Errorf("%w: %s/%s multipliers must be positive", ErrInvalidRule, r.Category, r.Type)
	}
	for _, c := range r.Channels {
		if !c.Valid() {
			return fmt.Errorf("%w: %s/%s unknown channel %q", ErrInvalidRule, r.Category, r.Type, c)
		}
	}
	if r.Throttle != nil && (r.Throttle.MaxPerHour < 0 || r.Throttle.MaxPerDay < 0) {
		return fmt.Errorf("%w: %s/%s negative throttle cap", ErrInvalidRule, r.Category, r.Type)
	}
	return nil
}

type ruleKey struct {
	category Category
	typ      string
}

// Registry is an immutable rule table. Build it once at startup and share it.
type Registry struct {
	rules    []Rule
	exact    map[ruleKey]int
	fallback map[Category]int
}

// NewRegistry validates rules and builds the lookup indexes. Multipliers left
// at zero default to 1.
func NewRegistry(rules ...Rule) (*Registry, error) {
	reg := &Registry{
		rules:    make([]Rule, 0, len(rules)),
		exact:    make(map[ruleKey]int, len(rules)),
		fallback: make(map[Category]int),
	}

	for _, r := range rules {
		if r.UrgencyMultiplier == 0 {
			r.UrgencyMultiplier = 1
		}
		if r.BusinessImpactWeight == 0 {
			r.BusinessImpactWeight = 1
		}
		r.Channels = slices.Clone(r.Channels)
		if r.Throttle != nil {
			t := *r.Throttle
			r.Throttle = &t
		}
		if err := r.validate(); err != nil {
			return nil, err
		}

		key := ruleKey{category: r.Category, typ: r.Type}
		if _, exists := reg.exact[key]; exists {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateRule, r.Category, r.Type)
		}
		idx := len(reg.rules)
		reg.rules = append(reg.rules, r)
		reg.exact[key] = idx

		// A wildcard rule always wins the fallback slot; otherwise the first
		// rule declared for the category holds it.
		if cur, ok := reg.fallback[r.Category]; !ok || (r.Type == "" && reg.rules[cur].Type != "") {
			reg.fallback[r.Category] = idx
		}
	}

	return reg, nil
}

// MustNewRegistry is NewRegistry that panics on invalid input.
func MustNewRegistry(rules ...Rule) *Registry {
	reg, err := NewRegistry(rules...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Lookup finds the rule for (category, type), falling back to the category's
// fallback rule. The returned Rule is a copy.
func (r *Registry) Lookup(category Category, typ string) (Rule, bool) {
	if r == nil {
		return Rule{}, false
	}
	if idx, ok := r.exact[ruleKey{category: category, typ: typ}]; ok {
		return r.copyRule(idx), true
	}
	if idx, ok := r.fallback[category]; ok {
		return r.copyRule(idx), true
	}
	return Rule{}, false
}

// Rules returns a copy of the table in declaration order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	for i := range r.rules {
		out[i] = r.copyRule(i)
	}
	return out
}

func (r *Registry) copyRule(idx int) Rule {
	rule := r.rules[idx]
	rule.Channels = slices.Clone(rule.Channels)
	if rule.Throttle != nil {
		t := *rule.Throttle
		rule.Throttle = &t
	}
	return rule
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules decodes a YAML rule table.
func LoadRules(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file rulesFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrLoadRules, err)
	}
	reg, err := NewRegistry(file.Rules...)
	if err != nil {
		return nil, errors.Join(ErrLoadRules, err)
	}
	return reg, nil
}

// LoadRulesFile reads a YAML rule table from disk.
func LoadRulesFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrLoadRules, err)
	}
	defer f.Close()
	return LoadRules(f)
}

// DefaultRegistry returns the built-in business-formation rule table.
func DefaultRegistry() *Registry {
	reg, err := LoadRules(bytes.NewReader(defaultRulesYAML))
	if err != nil {
		panic(err)
	}
	return reg
}
