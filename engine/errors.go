package engine

import "errors"

// ErrNoTarget is returned by NewState without a render target.
var ErrNoTarget = errors.New("engine: nil render target")

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "engine: invalid config." + e.Field + ": " + e.Reason
}
