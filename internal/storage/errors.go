package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes data-access errors.
type ErrorCode string

const (
	// CodeNotFound indicates a missing row, table, or query result.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeValidation indicates a field outside a table's declared column
	// set, or a malformed definition.
	CodeValidation ErrorCode = "VALIDATION"

	// CodeDuplicateKey indicates a client-supplied id that is already
	// present on insert.
	CodeDuplicateKey ErrorCode = "DUPLICATE_KEY"

	// CodeConfiguration indicates an invalid construction-time binding:
	// a declared table without an adapter, or a duplicate migration
	// version. Fatal at construction time.
	CodeConfiguration ErrorCode = "CONFIGURATION"
)

// Error is the structured error type shared by all data-access components.
//
// It carries the table/field/id context needed for diagnostics. Use the
// IsNotFound/IsValidation/IsDuplicateKey/IsConfiguration helpers rather
// than matching on the struct directly; they handle wrapped errors.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Table identifies the affected table, if any.
	Table string

	// Field identifies the offending field (validation errors).
	Field string

	// ID identifies the affected row (not-found and duplicate-key errors).
	ID any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s: %s", e.Code, e.Message))
	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.ID != nil {
		parts = append(parts, fmt.Sprintf("id=%v", e.ID))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + " (" + strings.Join(parts[1:], ", ") + ")"
}

// NewRowNotFound creates a not-found error for a missing row id.
func NewRowNotFound(table string, id any) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: "row not found",
		Table:   table,
		ID:      id,
	}
}

// NewTableNotFound creates a not-found error for an unknown table name.
// The error message lists every known table so callers can spot typos.
func NewTableNotFound(name string, known []string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("unknown table %q (known tables: %s)", name, strings.Join(known, ", ")),
		Table:   name,
	}
}

// NewNoResults creates the not-found error raised by firstOrFail on an
// empty query result.
func NewNoResults(table string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: "No results found",
		Table:   table,
	}
}

// NewUnknownField creates a validation error for a field outside the
// table's declared column set.
func NewUnknownField(table, field string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "field is not a declared column",
		Table:   table,
		Field:   field,
	}
}

// NewValidation creates a validation error with a free-form message.
func NewValidation(table, message string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: message,
		Table:   table,
	}
}

// NewDuplicateKey creates a duplicate-key error for a client-supplied id
// that is already present.
func NewDuplicateKey(table string, id any) *Error {
	return &Error{
		Code:    CodeDuplicateKey,
		Message: "id already exists",
		Table:   table,
		ID:      id,
	}
}

// NewConfiguration creates a construction-time configuration error.
func NewConfiguration(format string, args ...any) *Error {
	return &Error{
		Code:    CodeConfiguration,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsNotFound returns true if the error is a not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsValidation returns true if the error is a validation error.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsDuplicateKey returns true if the error is a duplicate-key error.
func IsDuplicateKey(err error) bool {
	return hasCode(err, CodeDuplicateKey)
}

// IsConfiguration returns true if the error is a configuration error.
func IsConfiguration(err error) bool {
	return hasCode(err, CodeConfiguration)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
