package basket

import (
	"errors"
	"fmt"
)

// MinTransactions is the number of valid transactions an analysis needs.
const MinTransactions = 2

// InsufficientDataError indicates too few valid transactions survived parsing.
type InsufficientDataError struct {
	Valid    int
	Required int
	// MinItems echoes the length filter so callers can suggest relaxing it.
	MinItems int
}

func (e *InsufficientDataError) Error() string {
	if e.Valid == 0 && e.MinItems > 1 {
		return fmt.Sprintf("not enough transactions for analysis: 0 of the rows have at least %d items (each transaction has only one item?)", e.MinItems)
	}
	return fmt.Sprintf("not enough transactions for analysis: found %d valid, need at least %d", e.Valid, e.Required)
}

// ConfigError indicates an invalid analysis parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v %s", e.Field, e.Value, e.Reason)
}

// IsInsufficientData reports whether err wraps an *InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ide *InsufficientDataError
	return errors.As(err, &ide)
}

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
