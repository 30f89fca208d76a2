// Package environment names the deployment stages the engine runs in.
package environment

import "strings"

// Environment represents application environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Parse maps a free-form value (including the short aliases "dev", "stage"
// and "prod") to a known Environment. Unknown values resolve to Development.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

// IsProduction reports whether e is the production stage.
func (e Environment) IsProduction() bool { return e == Production }

func (e Environment) String() string { return string(e) }
