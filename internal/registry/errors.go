package registry

import (
	"errors"
	"strings"
)

// ConfigurationError aggregates every wiring problem found while building
// or validating a registry. Startup fails on the first ConfigurationError;
// collecting all problems first means one restart per fix, not one per
// problem.
type ConfigurationError struct {
	Problems []string
}

func NewConfigurationError(problems []string) *ConfigurationError {
	return &ConfigurationError{Problems: problems}
}

func (e *ConfigurationError) Error() string {
	switch len(e.Problems) {
	case 0:
		return "invalid registry configuration"
	case 1:
		return "invalid registry configuration: " + e.Problems[0]
	default:
		return "invalid registry configuration:\n  - " + strings.Join(e.Problems, "\n  - ")
	}
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
