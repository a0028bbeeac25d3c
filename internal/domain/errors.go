package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a folder, request, project or share was not found
	NotFoundError struct {
		Resource string
		ID       string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return fmt.Sprintf("%s %s: not found", e.Resource, e.ID) }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is allows errors.Is() to match typed errors against their sentinels
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidMove     = errors.New("invalid move")
	ErrInvalidDocument = errors.New("invalid document")
	ErrTransport       = errors.New("transport failure")
	ErrBusy            = errors.New("operation queue full")
)

// ConflictError represents a resource conflict with details about the existing resource.
// Request edits never produce it: concurrent writers of the same request overwrite each other.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (share, project)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// SelfMoveError is returned when a folder is moved into itself.
type SelfMoveError struct {
	FolderID string
}

func (e *SelfMoveError) Error() string {
	return fmt.Sprintf("cannot move folder %s into itself", e.FolderID)
}

func (e *SelfMoveError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *SelfMoveError) Is(target error) bool { return target == ErrInvalidMove }

// CycleError is returned when a folder is moved into one of its own descendants.
type CycleError struct {
	FolderID string
	TargetID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cannot move folder %s into its descendant %s", e.FolderID, e.TargetID)
}

func (e *CycleError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *CycleError) Is(target error) bool { return target == ErrInvalidMove }

// RootFolderError is returned for any attempt to move, delete or rename a project root.
type RootFolderError struct {
	Op       string
	FolderID string
}

func (e *RootFolderError) Error() string {
	return fmt.Sprintf("%s: folder %s is the project root", e.Op, e.FolderID)
}

func (e *RootFolderError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *RootFolderError) Is(target error) bool { return target == ErrInvalidMove }

// ParseError reports a malformed import document.
type ParseError struct {
	Format string
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s document: %s", e.Format, e.Detail)
}

func (e *ParseError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *ParseError) Is(target error) bool { return target == ErrInvalidDocument }

// DanglingReferenceError reports a resource whose parent reference never resolves.
type DanglingReferenceError struct {
	ResourceID string
	ParentID   string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("resource %s references unknown parent %q", e.ResourceID, e.ParentID)
}

func (e *DanglingReferenceError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *DanglingReferenceError) Is(target error) bool { return target == ErrInvalidDocument }

// ImportError is the single failure an import surfaces. Nothing has been persisted
// when it is returned.
type ImportError struct {
	Format string
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %s", e.Format, e.Reason)
}

func (e *ImportError) Unwrap() error { return e.Err }

func (e *ImportError) StatusCode() int { return http.StatusUnprocessableEntity }

// TransportError wraps a timeout or network failure talking to the store or the executor.
// Callers may retry the operation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) StatusCode() int { return http.StatusServiceUnavailable }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Retryable reports whether the failed operation may be retried as-is.
func (e *TransportError) Retryable() bool { return true }

// BusyError is returned when a project's mutation queue is full.
type BusyError struct {
	ProjectID string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("project %s: too many pending operations", e.ProjectID)
}

func (e *BusyError) StatusCode() int { return http.StatusTooManyRequests }

func (e *BusyError) Is(target error) bool { return target == ErrBusy }

// NewNotFound builds a NotFoundError for the given resource kind.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}
