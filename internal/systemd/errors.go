package systemd

import (
	"errors"
	"fmt"
)

// Error represents an error from systemd operations.
type Error struct {
	Operation string // The operation that failed (Restart, ResetFailed, etc.)
	UnitName  string // The name of the unit
	Cause     error  // The underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("systemd %s failed for %s: %v", e.Operation, e.UnitName, e.Cause)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given details.
func NewError(operation, unitName string, cause error) *Error {
	return &Error{
		Operation: operation,
		UnitName:  unitName,
		Cause:     cause,
	}
}

// ConnectionError represents an error connecting to systemd.
type ConnectionError struct {
	UserMode bool  // Whether this was a user or system connection attempt
	Cause    error // The underlying error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	mode := "system"
	if e.UserMode {
		mode = "user"
	}
	return fmt.Sprintf("failed to connect to systemd %s bus: %v", mode, e.Cause)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(userMode bool, cause error) *ConnectionError {
	return &ConnectionError{
		UserMode: userMode,
		Cause:    cause,
	}
}

// JobFailedError represents a unit job that systemd accepted but did not
// complete with the "done" result.
type JobFailedError struct {
	Operation string // The queued operation (Restart, Start)
	UnitName  string // The name of the unit
	Result    string // The job result reported by systemd (failed, timeout, ...)
}

// Error implements the error interface.
func (e *JobFailedError) Error() string {
	return fmt.Sprintf("systemd %s job for %s finished with result %q", e.Operation, e.UnitName, e.Result)
}

// NewJobFailedError creates a new JobFailedError.
func NewJobFailedError(operation, unitName, result string) *JobFailedError {
	return &JobFailedError{
		Operation: operation,
		UnitName:  unitName,
		Result:    result,
	}
}

// UnitNotFoundError represents an error when a unit cannot be found.
type UnitNotFoundError struct {
	UnitName string
}

// Error implements the error interface.
func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("unit not found: %s", e.UnitName)
}

// NewUnitNotFoundError creates a new UnitNotFoundError.
func NewUnitNotFoundError(unitName string) *UnitNotFoundError {
	return &UnitNotFoundError{UnitName: unitName}
}

// IsConnectionError checks if an error is a ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsError checks if an error is a systemd Error.
func IsError(err error) bool {
	var sdErr *Error
	return errors.As(err, &sdErr)
}

// IsJobFailedError checks if an error is a JobFailedError.
func IsJobFailedError(err error) bool {
	var jobErr *JobFailedError
	return errors.As(err, &jobErr)
}

// IsUnitNotFoundError checks if an error is a UnitNotFoundError.
func IsUnitNotFoundError(err error) bool {
	var nfErr *UnitNotFoundError
	return errors.As(err, &nfErr)
}
