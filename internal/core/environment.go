// Package core holds the small cross-cutting types shared by main and pkg,
// starting with the deployment environment the logger keys off.
package core

// Environment names where the service is running; it mainly gates log
// verbosity and output format.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

func (e Environment) String() string {
	return string(e)
}

// IsProduction reports whether the service runs with production settings.
func (e Environment) IsProduction() bool {
	return e == Production
}

// ParseEnvironment maps a raw ENVIRONMENT value to a known Environment.
// Anything unrecognised, including the empty string, counts as Development
// so a bare local start still works.
func ParseEnvironment(v string) Environment {
	switch Environment(v) {
	case Production, Staging, Testing:
		return Environment(v)
	default:
		return Development
	}
}
