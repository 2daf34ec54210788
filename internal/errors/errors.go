package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a Slate error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrExportBlocked      ErrorCode = "EXPORT_BLOCKED"      // 422
	ErrSaveFailed         ErrorCode = "SAVE_FAILED"         // 503
	ErrStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE" // 503
	ErrCancelled          ErrorCode = "CANCELLED"           // 499
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// SlateError represents a structured error with code, status, and details.
type SlateError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SlateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SlateError {
	return &SlateError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a draft cannot be found.
func NewNotFound(identifier string) *SlateError {
	return &SlateError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("draft not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *SlateError {
	return &SlateError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewExportBlocked creates a 422 error when compliance errors block an export.
// fixes lists the suggested corrections, one per blocking issue.
func NewExportBlocked(errorCount int, fixes []string) *SlateError {
	msg := fmt.Sprintf("export blocked by %d compliance error(s)", errorCount)
	if len(fixes) > 0 {
		msg += ": " + strings.Join(fixes, "; ")
	}
	return &SlateError{
		Code:    ErrExportBlocked,
		Status:  422,
		Message: msg,
		Details: map[string]any{"errors": errorCount, "fixes": fixes},
	}
}

// NewSaveFailed creates a 503 error for a draft write that did not complete.
// The in-memory document stays authoritative; callers may retry.
func NewSaveFailed(key string, err error) *SlateError {
	details := map[string]any{"key": key}
	if err != nil {
		details["cause"] = err.Error()
	}
	return &SlateError{
		Code:    ErrSaveFailed,
		Status:  503,
		Message: fmt.Sprintf("save failed for draft %q; retry", key),
		Details: details,
	}
}

// NewStorageUnavailable creates a 503 error when the draft store cannot be opened.
func NewStorageUnavailable(backend string, err error) *SlateError {
	msg := fmt.Sprintf("%s draft store unavailable", backend)
	if err != nil {
		msg += ": " + err.Error()
	}
	return &SlateError{
		Code:    ErrStorageUnavailable,
		Status:  503,
		Message: msg,
		Details: map[string]any{"backend": backend},
	}
}

// NewCancelled creates a 499 error when an operation is interrupted by its context.
func NewCancelled(operation string) *SlateError {
	return &SlateError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The original error is kept in Details for logging, not in Message.
func NewInternal(err error) *SlateError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &SlateError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or any error it wraps) is a SlateError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SlateError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
