package tracking

import "fmt"

// ConfigError represents a configuration validation error.
type ConfigError struct {
	// Field names the offending Config field.
	Field string

	// Message describes the violated constraint.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("tracking: invalid %s: %s", e.Field, e.Message)
}
