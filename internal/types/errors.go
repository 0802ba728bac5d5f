package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for Flowdeck decision-core errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Node configuration error codes
const (
	NODE_CONFIG_INVALID     ErrorCode = "NODE_CONFIG_INVALID"
	NODE_TYPE_UNKNOWN       ErrorCode = "NODE_TYPE_UNKNOWN"
	CONNECTION_UNCONFIGURED ErrorCode = "CONNECTION_UNCONFIGURED"
	SANDBOX_LIMIT_INVALID   ErrorCode = "SANDBOX_LIMIT_INVALID"
)

// Merge synchronization error codes
const (
	MERGE_TIMEOUT          ErrorCode = "MERGE_TIMEOUT"
	MERGE_INSTANCE_EXISTS  ErrorCode = "MERGE_INSTANCE_EXISTS"
	MERGE_INSTANCE_UNKNOWN ErrorCode = "MERGE_INSTANCE_UNKNOWN"
	MERGE_AWAIT_CANCELLED  ErrorCode = "MERGE_AWAIT_CANCELLED"
	MERGE_LIMIT_EXCEEDED   ErrorCode = "MERGE_LIMIT_EXCEEDED"
)

// FlowError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type FlowError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *FlowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *FlowError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a FlowError with the same Code.
func (e *FlowError) Is(target error) bool {
	var flowErr *FlowError
	if errors.As(target, &flowErr) {
		return e.Code == flowErr.Code
	}
	return false
}

// NewError creates a new non-retryable FlowError with the given code and message.
func NewError(code ErrorCode, message string) *FlowError {
	return &FlowError{
		Code:    code,
		Message: message,
	}
}

// WrapError creates a new FlowError wrapping a cause error.
func WrapError(code ErrorCode, message string, cause error) *FlowError {
	return &FlowError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
