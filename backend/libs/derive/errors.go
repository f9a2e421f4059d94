package derive

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedUnits is matched by every ConfigError raised for a unit system.
	ErrUnsupportedUnits = errors.New("unsupported unit system")
	// ErrInsufficientData is matched by every InsufficientDataError.
	ErrInsufficientData = errors.New("insufficient data")
)

// ConfigError reports an invalid caller-supplied setting.
type ConfigError struct {
	Field string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("derive: invalid %s %q", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrUnsupportedUnits
}

// InsufficientDataError reports a required channel that is absent or has no samples.
type InsufficientDataError struct {
	Channel string
	Reason  string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("derive: no data for %s: %s", e.Channel, e.Reason)
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}
