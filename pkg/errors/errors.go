package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrPermission    ErrorCode = "PERMISSION"

	// Profile errors
	ErrProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	ErrProfileExists   ErrorCode = "PROFILE_EXISTS"
	ErrProfileActive   ErrorCode = "PROFILE_ACTIVE"
	ErrProfileCorrupt  ErrorCode = "PROFILE_CORRUPT"

	// Manifest errors
	ErrManifestParse ErrorCode = "MANIFEST_PARSE"
	ErrManifestWrite ErrorCode = "MANIFEST_WRITE"

	// State errors
	ErrStateParse  ErrorCode = "STATE_PARSE"
	ErrStateWrite  ErrorCode = "STATE_WRITE"
	ErrLockAcquire ErrorCode = "LOCK_ACQUIRE"

	// Backup errors
	ErrBackupNotFound ErrorCode = "BACKUP_NOT_FOUND"
	ErrBackupCreate   ErrorCode = "BACKUP_CREATE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileNotFound  ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileCopy      ErrorCode = "FILE_COPY"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// CcprofError represents a structured error with code and details
type CcprofError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CcprofError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CcprofError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CcprofError) Is(target error) bool {
	var targetErr *CcprofError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CcprofError with the given code and message
func New(code ErrorCode, message string) *CcprofError {
	return &CcprofError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CcprofError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CcprofError {
	return &CcprofError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CcprofError
func Wrap(err error, code ErrorCode, message string) *CcprofError {
	if err == nil {
		return nil
	}
	return &CcprofError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CcprofError {
	if err == nil {
		return nil
	}
	return &CcprofError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CcprofError) WithDetail(key string, value interface{}) *CcprofError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var ccprofErr *CcprofError
	if errors.As(err, &ccprofErr) {
		return ccprofErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CcprofError
func GetErrorCode(err error) ErrorCode {
	var ccprofErr *CcprofError
	if errors.As(err, &ccprofErr) {
		return ccprofErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a CcprofError
func GetErrorDetails(err error) map[string]interface{} {
	var ccprofErr *CcprofError
	if errors.As(err, &ccprofErr) {
		return ccprofErr.Details
	}
	return nil
}
