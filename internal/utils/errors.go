package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the two error families: configuration errors are
// detected statically from the schema definition, execution errors come
// from the database layer.
var (
	// ErrConfig is returned when the schema definition itself is invalid
	ErrConfig = errors.New("config error")

	// ErrConnection is returned when the database cannot be reached
	ErrConnection = errors.New("connection error")

	// ErrQuery is returned when a statement fails to execute
	ErrQuery = errors.New("query error")

	// ErrConstraint is returned when a statement violates a database constraint
	ErrConstraint = errors.New("constraint violation")

	// ErrTimeout is returned when a database operation exceeds its deadline
	ErrTimeout = errors.New("timeout")

	// ErrDecode is returned when a result row cannot be decoded into the destination
	ErrDecode = errors.New("decode error")
)

// ConfigError represents a mistake in the schema definition, such as duplicate
// column names or an illegal rename. It halts the generation pipeline; callers
// surface it to a human rather than retry.
type ConfigError struct {
	Table  string
	Column string
	Reason string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Table != "" && e.Column != "":
		return fmt.Sprintf("config error on '%s.%s': %s", e.Table, e.Column, e.Reason)
	case e.Table != "":
		return fmt.Sprintf("config error on table '%s': %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// ConnectionError represents a failure to reach or keep a database connection
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection error: %v", e.Cause)
	}
	return "connection error"
}

func (e *ConnectionError) Unwrap() error {
	return ErrConnection
}

// QueryError represents a statement that the database rejected or failed to run
type QueryError struct {
	Query string
	Cause error
}

func (e *QueryError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("query error in %q: %v", Shorten(e.Query, 80), e.Cause)
	}
	return fmt.Sprintf("query error: %v", e.Cause)
}

func (e *QueryError) Unwrap() error {
	return ErrQuery
}

// ConstraintError represents a statement that violated a database constraint
type ConstraintError struct {
	Constraint string
	Cause      error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("constraint violation on '%s': %v", e.Constraint, e.Cause)
	}
	return fmt.Sprintf("constraint violation: %v", e.Cause)
}

func (e *ConstraintError) Unwrap() error {
	return ErrConstraint
}

// TimeoutError represents a database operation that exceeded its deadline
type TimeoutError struct {
	Operation string
	Cause     error
}

func (e *TimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("timeout during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("timeout during %s", e.Operation)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// DecodeError represents a result set that could not be decoded
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// Error wrapping functions

// WrapConfigError wraps a schema-definition mistake as a config error
func WrapConfigError(table, column, reason string) error {
	return &ConfigError{
		Table:  table,
		Column: column,
		Reason: reason,
	}
}

// WrapConnectionError wraps an error as a connection error
func WrapConnectionError(cause error) error {
	return &ConnectionError{
		Cause: cause,
	}
}

// WrapQueryError wraps an error as a query error
func WrapQueryError(query string, cause error) error {
	return &QueryError{
		Query: query,
		Cause: cause,
	}
}

// WrapConstraintError wraps an error as a constraint violation
func WrapConstraintError(constraint string, cause error) error {
	return &ConstraintError{
		Constraint: constraint,
		Cause:      cause,
	}
}

// WrapTimeoutError wraps an error as a timeout error
func WrapTimeoutError(operation string, cause error) error {
	return &TimeoutError{
		Operation: operation,
		Cause:     cause,
	}
}

// WrapDecodeError wraps an error as a decode error
func WrapDecodeError(cause error) error {
	return &DecodeError{
		Cause: cause,
	}
}

// Error checking functions

// IsConfigError checks if an error is a config error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsQueryError checks if an error is a query error
func IsQueryError(err error) bool {
	return errors.Is(err, ErrQuery)
}

// IsConstraintError checks if an error is a constraint violation
func IsConstraintError(err error) bool {
	return errors.Is(err, ErrConstraint)
}

// IsTimeoutError checks if an error is a timeout error
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsDecodeError checks if an error is a decode error
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}

// Helper function to create a config error for duplicate column names
func DuplicateColumnsError(table string, columns []string) error {
	return WrapConfigError(table, "", fmt.Sprintf("duplicate column names: %s", strings.Join(columns, ", ")))
}

// Helper function to create a config error for an illegal rename directive
func RenameError(table, column, reason string) error {
	return WrapConfigError(table, column, reason)
}

// Shorten truncates s to at most n runes for log and error output
func Shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
