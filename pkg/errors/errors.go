// Package errors provides custom error types for the ballast pipeline.
// These errors enable programmatic error checking and carry enough context
// (source tag, file path, row line, record key) for useful run reports.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is so callers don't need both imports.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
// It's an alias for the standard library errors.As so callers don't need both imports.
var As = errors.As

// Common sentinel errors for the ballast pipeline
var (
	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable indicates that a source file could not be read
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrFormatMismatch indicates that a source file does not match its declared format
	ErrFormatMismatch = errors.New("source format mismatch")

	// ErrRowSkipped indicates that a row was dropped for lacking a required key field
	ErrRowSkipped = errors.New("row skipped")

	// ErrLoadFailed indicates that the database load transaction failed
	ErrLoadFailed = errors.New("load failed")

	// ErrLocked indicates that another pipeline run holds the run lock
	ErrLocked = errors.New("run lock held")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// IOError represents an error reading a source file or other I/O failure
type IOError struct {
	Operation string // "open", "read", "close", "write"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *IOError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// FormatError represents a source file whose structure does not match
// the declared format, usually required header columns that are absent
type FormatError struct {
	Source  string // source tag
	Path    string
	Missing []string // header columns that could not be resolved
	Message string
	Err     error
}

// Error implements the error interface
func (e *FormatError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("format error in source %s (%s): missing columns %s", e.Source, e.Path, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("format error in source %s (%s): %s", e.Source, e.Path, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FormatError) Is(target error) bool {
	return target == ErrFormatMismatch
}

// NewFormatError creates a new FormatError for missing header columns
func NewFormatError(source, path string, missing []string) *FormatError {
	return &FormatError{Source: source, Path: path, Missing: missing}
}

// SkipError represents a row dropped during normalization because a
// required key field (entity, vessel, period) was absent or unusable.
// Skips are recoverable: the driver counts them and moves on.
type SkipError struct {
	Source string
	Line   int    // 1-based spreadsheet row
	Field  string // the key field that was missing
}

// Error implements the error interface
func (e *SkipError) Error() string {
	return fmt.Sprintf("source %s row %d: missing %s, row skipped", e.Source, e.Line, e.Field)
}

// Is implements errors.Is support
func (e *SkipError) Is(target error) bool {
	return target == ErrRowSkipped
}

// NewSkipError creates a new SkipError
func NewSkipError(source string, line int, field string) *SkipError {
	return &SkipError{Source: source, Line: line, Field: field}
}

// ReconcileError represents a failure while merging records across sources.
// Reconcile failures are fatal for the run.
type ReconcileError struct {
	Source  string // offending source tag, if known
	Key     string // rendered record key, if known
	Message string
	Err     error
}

// Error implements the error interface
func (e *ReconcileError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("reconcile error for %s: %s", e.Key, e.Message)
	case e.Source != "":
		return fmt.Sprintf("reconcile error in source %s: %s", e.Source, e.Message)
	default:
		return fmt.Sprintf("reconcile error: %s", e.Message)
	}
}

// Unwrap implements errors.Unwrap
func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// NewReconcileError creates a new ReconcileError
func NewReconcileError(source, key, message string) *ReconcileError {
	return &ReconcileError{Source: source, Key: key, Message: message}
}

// LoadError represents a failure inside the load transaction. The whole
// transaction is rolled back, so the error carries the key of the record
// whose statement failed.
type LoadError struct {
	Operation string // "insert", "update", "delete", "stage", "commit"
	Key       string // rendered record key, empty for transaction-level failures
	Err       error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("load error during %s of %s: %v", e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("load error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}

// NewLoadError creates a new LoadError
func NewLoadError(operation, key string, err error) *LoadError {
	return &LoadError{Operation: operation, Key: key, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "yaml", "xlsx", "csv"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// LockError represents a failure to acquire the single-instance run lock
type LockError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *LockError) Error() string {
	return fmt.Sprintf("could not acquire run lock %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *LockError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *LockError) Is(target error) bool {
	return target == ErrLocked
}

// NewLockError creates a new LockError
func NewLockError(path string, err error) *LockError {
	return &LockError{Path: path, Err: err}
}

// Helper functions for error checking

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRowSkip checks if an error is a recoverable row skip
func IsRowSkip(err error) bool {
	return errors.Is(err, ErrRowSkipped)
}

// IsSourceFailure checks if an error is fatal for one source but
// recoverable for the run (unreadable file or format mismatch)
func IsSourceFailure(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrFormatMismatch)
}

// IsLoadFailure checks if an error aborted the load transaction
func IsLoadFailure(err error) bool {
	return errors.Is(err, ErrLoadFailed)
}

// IsLocked checks if an error means another run holds the lock
func IsLocked(err error) bool {
	return errors.Is(err, ErrLocked)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapLoad wraps an error as a LoadError
func WrapLoad(operation, key string, err error) error {
	if err == nil {
		return nil
	}
	return NewLoadError(operation, key, err)
}

// WrapCanceled tags a context error with the cancellation sentinel so
// callers can match it with IsCanceled
func WrapCanceled(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCanceled, err)
}
