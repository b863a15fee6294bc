package docker

import (
	"errors"
	"fmt"
)

// Error represents an error from a Docker Engine API operation.
type Error struct {
	Operation string // The operation that failed (ServerVersion, ContainerStart, etc.)
	Target    string // The container the operation addressed, empty for engine-wide calls
	Cause     error  // The underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("docker %s failed: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("docker %s failed for %s: %v", e.Operation, e.Target, e.Cause)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given details.
func NewError(operation, target string, cause error) *Error {
	return &Error{
		Operation: operation,
		Target:    target,
		Cause:     cause,
	}
}

// ContainerNotFoundError represents a container the engine does not know.
type ContainerNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *ContainerNotFoundError) Error() string {
	return fmt.Sprintf("container not found: %s", e.Name)
}

// NewContainerNotFoundError creates a new ContainerNotFoundError.
func NewContainerNotFoundError(name string) *ContainerNotFoundError {
	return &ContainerNotFoundError{Name: name}
}

// IsError checks if an error is a docker Error.
func IsError(err error) bool {
	var dockerErr *Error
	return errors.As(err, &dockerErr)
}

// IsContainerNotFoundError checks if an error is a ContainerNotFoundError.
func IsContainerNotFoundError(err error) bool {
	var nfErr *ContainerNotFoundError
	return errors.As(err, &nfErr)
}
