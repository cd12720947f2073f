// errors.go: structured error handling for Xanthos primitives
//
// This file provides structured error types using the go-errors library,
// enabling rich error context, categorization, and standardized error codes.
// Configuration errors are returned by constructors; failures of the wrapped
// functions are never wrapped and reach the caller verbatim.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package xanthos

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for Xanthos operations
const (
	// Configuration errors
	ErrCodeInvalidConfig      errors.ErrorCode = "XANTHOS_INVALID_CONFIG"
	ErrCodeInvalidCapacity    errors.ErrorCode = "XANTHOS_INVALID_CAPACITY"
	ErrCodeInvalidConcurrency errors.ErrorCode = "XANTHOS_INVALID_CONCURRENCY"
	ErrCodeInvalidWindow      errors.ErrorCode = "XANTHOS_INVALID_WINDOW"
	ErrCodeInvalidRetries     errors.ErrorCode = "XANTHOS_INVALID_RETRIES"
	ErrCodeInvalidDelay       errors.ErrorCode = "XANTHOS_INVALID_DELAY"
	ErrCodeInvalidMultiplier  errors.ErrorCode = "XANTHOS_INVALID_MULTIPLIER"
	ErrCodeNilFunction        errors.ErrorCode = "XANTHOS_NIL_FUNCTION"

	// Execution errors
	ErrCodePanicRecovered errors.ErrorCode = "XANTHOS_PANIC_RECOVERED"
	ErrCodeInternalError  errors.ErrorCode = "XANTHOS_INTERNAL_ERROR"
)

// Common error messages
const (
	msgInvalidConfig      = "invalid configuration"
	msgInvalidCapacity    = "invalid capacity: must be at least 1"
	msgInvalidConcurrency = "invalid concurrency limit: must be at least 1"
	msgInvalidWindow      = "invalid throttle window: must be non-negative"
	msgInvalidRetries     = "invalid retry count: must be non-negative"
	msgInvalidDelay       = "invalid delay: must be non-negative"
	msgInvalidMultiplier  = "invalid backoff multiplier: must be 0 or at least 1"
	msgNilFunction        = "wrapped function cannot be nil"
	msgPanicRecovered     = "panic recovered in wrapped function"
	msgInternalError      = "internal error"
)

// =============================================================================
// CONFIGURATION ERRORS
// =============================================================================

// NewErrInvalidConfig creates an error for an invalid configuration field
func NewErrInvalidConfig(field string, reason string) error {
	return errors.NewWithContext(ErrCodeInvalidConfig, msgInvalidConfig, map[string]interface{}{
		"field":  field,
		"reason": reason,
	})
}

// NewErrInvalidCapacity creates an error for an LRU capacity below 1
func NewErrInvalidCapacity(capacity int) error {
	return errors.NewWithContext(ErrCodeInvalidCapacity, msgInvalidCapacity, map[string]interface{}{
		"provided_capacity": capacity,
		"minimum_required":  1,
	})
}

// NewErrInvalidConcurrency creates an error for a worker pool limit below 1
func NewErrInvalidConcurrency(limit int) error {
	return errors.NewWithContext(ErrCodeInvalidConcurrency, msgInvalidConcurrency, map[string]interface{}{
		"provided_limit":   limit,
		"minimum_required": 1,
	})
}

// NewErrInvalidWindow creates an error for a negative throttle window
func NewErrInvalidWindow(window interface{}) error {
	return errors.NewWithField(ErrCodeInvalidWindow, msgInvalidWindow, "provided_window", window)
}

// NewErrInvalidRetries creates an error for a negative retry count
func NewErrInvalidRetries(retries int) error {
	return errors.NewWithField(ErrCodeInvalidRetries, msgInvalidRetries, "provided_retries", retries)
}

// NewErrInvalidDelay creates an error for a negative delay
func NewErrInvalidDelay(name string, delay interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidDelay, msgInvalidDelay, map[string]interface{}{
		"field":          name,
		"provided_delay": delay,
	})
}

// NewErrInvalidMultiplier creates an error for a backoff multiplier in (0, 1) or below 0
func NewErrInvalidMultiplier(multiplier float64) error {
	return errors.NewWithContext(ErrCodeInvalidMultiplier, msgInvalidMultiplier, map[string]interface{}{
		"provided_multiplier": multiplier,
		"valid_range":         "0 or >= 1.0",
	})
}

// NewErrNilFunction creates an error when a constructor receives a nil function
func NewErrNilFunction(operation string) error {
	return errors.NewWithField(ErrCodeNilFunction, msgNilFunction, "operation", operation)
}

// =============================================================================
// EXECUTION ERRORS
// =============================================================================

// NewErrPanicRecovered creates an error when a panic is recovered
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// NewErrInternal creates a generic internal error. Internal errors are
// transient (e.g. a watcher that could not be set up) and retryable.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning").
			AsRetryable()
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning").
		AsRetryable()
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsConfigError checks if error is a configuration error
func IsConfigError(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeInvalidConfig, ErrCodeInvalidCapacity, ErrCodeInvalidConcurrency,
		ErrCodeInvalidWindow, ErrCodeInvalidRetries, ErrCodeInvalidDelay,
		ErrCodeInvalidMultiplier, ErrCodeNilFunction:
		return true
	}
	return false
}

// IsPanicRecovered checks if error was produced by recovering a panic
func IsPanicRecovered(err error) bool {
	return errors.HasCode(err, ErrCodePanicRecovered)
}

// IsRetryable checks if the error can be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts context from an error
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var xErr *errors.Error
	if goerrors.As(err, &xErr) {
		return xErr.Context
	}
	return nil
}
