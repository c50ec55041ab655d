// Package errors provides structured error types for the termrender engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes fall into two kinds:
//   - INVALID_*: argument-contract violations (bad mesh ranges, zero-sized
//     buffers, malformed scene files)
//   - LOGIC_* and the pipeline/matrix codes: programming errors that should
//     surface immediately during development (running an unbuilt pipeline,
//     inverting a singular transform)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidMesh, "mesh range [%d,%d) exceeds arena size %d", first, first+count, size)
//	if errors.IsInvalidArgument(err) {
//	    // Handle argument error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidScene, origErr, "failed to load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Argument-contract violations
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeInvalidMesh     Code = "INVALID_MESH"
	ErrCodeInvalidBuffer   Code = "INVALID_BUFFER"
	ErrCodeInvalidScene    Code = "INVALID_SCENE"

	// Logic errors (programming-contract violations)
	ErrCodeLogic            Code = "LOGIC_ERROR"
	ErrCodePipelineNotBuilt Code = "PIPELINE_NOT_BUILT"
	ErrCodeTypeMismatch     Code = "TYPE_MISMATCH"
	ErrCodeUnresolvedSlot   Code = "UNRESOLVED_SLOT"
	ErrCodeSingularMatrix   Code = "SINGULAR_MATRIX"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// invalidArgumentCodes is the set of codes reported by IsInvalidArgument.
var invalidArgumentCodes = map[Code]bool{
	ErrCodeInvalidArgument: true,
	ErrCodeInvalidMesh:     true,
	ErrCodeInvalidBuffer:   true,
	ErrCodeInvalidScene:    true,
}

// logicCodes is the set of codes reported by IsLogic.
var logicCodes = map[Code]bool{
	ErrCodeLogic:            true,
	ErrCodePipelineNotBuilt: true,
	ErrCodeTypeMismatch:     true,
	ErrCodeUnresolvedSlot:   true,
	ErrCodeSingularMatrix:   true,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalidArgument reports whether err is an argument-contract violation.
func IsInvalidArgument(err error) bool {
	return invalidArgumentCodes[GetCode(err)]
}

// IsLogic reports whether err is a programming-contract (logic) violation.
func IsLogic(err error) bool {
	return logicCodes[GetCode(err)]
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
