package integrator

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration mistake detected at registration
// or Setup time. Configuration errors are always raised synchronously -
// never deferred into a timestep - so a bad setup fails before the first
// step executes.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Property names the offending integration property, if any.
	Property string

	// Component names the offending component ID, if any.
	Component string

	// Message is a human-readable description.
	Message string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeDuplicateProperty indicates a property name registered twice.
	ErrCodeDuplicateProperty ConfigErrorCode = "DUPLICATE_PROPERTY"

	// ErrCodeUnknownProperty indicates a reference to an unregistered property.
	ErrCodeUnknownProperty ConfigErrorCode = "UNKNOWN_PROPERTY"

	// ErrCodeArityMismatch indicates integrand/integral lists of unequal length.
	ErrCodeArityMismatch ConfigErrorCode = "ARITY_MISMATCH"

	// ErrCodeDuplicateComponent indicates a component ID registered twice.
	ErrCodeDuplicateComponent ConfigErrorCode = "DUPLICATE_COMPONENT"

	// ErrCodeUnknownComponent indicates a step list referencing an
	// unregistered component ID.
	ErrCodeUnknownComponent ConfigErrorCode = "UNKNOWN_COMPONENT"

	// ErrCodeUnknownScheme indicates a stepper map naming a scheme with no
	// registered constructor.
	ErrCodeUnknownScheme ConfigErrorCode = "UNKNOWN_SCHEME"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch {
	case e.Property != "" && e.Component != "":
		return fmt.Sprintf("%s: %s (property=%s, component=%s)", e.Code, e.Message, e.Property, e.Component)
	case e.Property != "":
		return fmt.Sprintf("%s: %s (property=%s)", e.Code, e.Message, e.Property)
	case e.Component != "":
		return fmt.Sprintf("%s: %s (component=%s)", e.Code, e.Message, e.Component)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsDuplicateProperty reports whether err is a duplicate-property error.
func IsDuplicateProperty(err error) bool { return hasCode(err, ErrCodeDuplicateProperty) }

// IsUnknownProperty reports whether err is an unknown-property error.
func IsUnknownProperty(err error) bool { return hasCode(err, ErrCodeUnknownProperty) }

// IsArityMismatch reports whether err is an arity-mismatch error.
func IsArityMismatch(err error) bool { return hasCode(err, ErrCodeArityMismatch) }

// IsUnknownComponent reports whether err is an unknown-component error.
func IsUnknownComponent(err error) bool { return hasCode(err, ErrCodeUnknownComponent) }

// IsUnknownScheme reports whether err is an unknown-scheme error.
func IsUnknownScheme(err error) bool { return hasCode(err, ErrCodeUnknownScheme) }

func hasCode(err error, code ConfigErrorCode) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// MissingArrayError indicates a stepper's source array is absent from an
// entity's particle array. Raised at Setup time, when staged buffers are
// eagerly allocated, so the failure surfaces before any timestep runs.
type MissingArrayError struct {
	Entity string
	Array  string
}

// Error implements the error interface.
func (e *MissingArrayError) Error() string {
	return fmt.Sprintf("entity %q has no array %q", e.Entity, e.Array)
}

// ErrNotCompiled is returned by StepOnce when Setup has not produced an
// execution list yet.
var ErrNotCompiled = errors.New("integrator: execution list not compiled, call Setup first")
