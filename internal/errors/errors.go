// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeConfig indicates a malformed or inconsistent configuration
	TypeConfig Type = "CONFIG_ERROR"

	// TypeConfigNotFound indicates a building type/subtype absent from the catalog
	TypeConfigNotFound Type = "CONFIG_NOT_FOUND"

	// TypeProfileNotFound indicates a referenced scope or tile profile is missing
	TypeProfileNotFound Type = "PROFILE_NOT_FOUND"

	// TypeUnsupportedRule indicates a scope profile uses an unknown quantity rule
	TypeUnsupportedRule Type = "UNSUPPORTED_QUANTITY_RULE"

	// TypeScenarioBuild indicates a declared tile profile could not be built
	TypeScenarioBuild Type = "SCENARIO_BUILD_ERROR"

	// TypeParsing indicates a parsing error
	TypeParsing Type = "PARSING_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// HasType reports whether the error itself is of type t.
// Use IsType to look through wrapping.
func (e *Error) HasType(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error (or anything it wraps) is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// TypeOf returns the type of a domain error, or TypeInternal for foreign errors
func TypeOf(err error) Type {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return TypeInternal
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// ConfigNotFound reports a building type/subtype pair missing from the catalog
func ConfigNotFound(buildingType, subtype string) *Error {
	return Newf(TypeConfigNotFound, "no building configuration for %s/%s", buildingType, subtype).
		WithContext("building_type", buildingType).
		WithContext("subtype", subtype)
}

// ProfileNotFound reports a missing scope or tile profile
func ProfileNotFound(kind, id string) *Error {
	return Newf(TypeProfileNotFound, "%s profile not found: %s", kind, id).
		WithContext("profile_kind", kind).
		WithContext("profile_id", id)
}

// UnsupportedQuantityRule reports a quantity rule the scope builder does not know
func UnsupportedQuantityRule(rule, itemKey, profileID string) *Error {
	return Newf(TypeUnsupportedRule, "unsupported quantity rule %q for item %q in profile %q", rule, itemKey, profileID).
		WithContext("rule", rule).
		WithContext("item_key", itemKey).
		WithContext("profile_id", profileID)
}

// ScenarioBuild reports a tile profile that could not be turned into scenarios
func ScenarioBuild(profileID string, cause error) *Error {
	return Wrapf(TypeScenarioBuild, cause, "failed to build scenarios for tile profile %q", profileID).
		WithContext("profile_id", profileID)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
