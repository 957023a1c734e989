package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is or wraps an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeDatasetNotFound   = "DATASET_NOT_FOUND"
	CodeDatasetMalformed  = "DATASET_MALFORMED"
	CodeSessionNotActive  = "SESSION_NOT_ACTIVE"
	CodeUnsupportedAction = "UNSUPPORTED_ACTION"
	CodeExportFailed      = "EXPORT_FAILED"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func DatasetNotFound(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatasetNotFound,
		Message: fmt.Sprintf("dataset file not found: %s", path),
		Cause:   cause,
	}
}

func DatasetMalformed(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatasetMalformed,
		Message: fmt.Sprintf("dataset file %s is malformed", path),
		Cause:   cause,
	}
}

func SessionNotActive(cause error) *AppError {
	return &AppError{
		Code:    CodeSessionNotActive,
		Message: "annotation is not available yet",
		Cause:   cause,
	}
}

func UnsupportedAction(action string, cause error) *AppError {
	return &AppError{
		Code:    CodeUnsupportedAction,
		Message: fmt.Sprintf("action %q is not supported", action),
		Cause:   cause,
	}
}

func ExportFailed(cause error) *AppError {
	return &AppError{
		Code:    CodeExportFailed,
		Message: "failed to export annotations",
		Cause:   cause,
	}
}

// HTTPStatus maps an error code to the status a handler should answer with
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidInput, CodeValidationError, CodeUnsupportedAction:
		return 400
	case CodeNotFound, CodeDatasetNotFound:
		return 404
	case CodeSessionNotActive:
		return 409
	default:
		return 500
	}
}
