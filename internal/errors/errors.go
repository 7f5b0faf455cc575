// Package errors provides coded errors for the heroswap engine.
//
// Every failure that reaches a user carries a Code so the CLI, the HTTP API and
// the browser UI can map it to a message or status without string matching.
//
//	err := errors.New(errors.ErrCodeNoFace, "No face detected in that photo.")
//	if errors.Is(err, errors.ErrCodeNoFace) {
//	    // show the message, keep the scene retryable
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// Scene bootstrap
	ErrCodeAssetLoad           Code = "ASSET_LOAD_FAILURE"
	ErrCodeDetectorUnavailable Code = "DETECTOR_UNAVAILABLE"

	// Face processing
	ErrCodeNoFace            Code = "NO_FACE_DETECTED"
	ErrCodeMissingLandmarks  Code = "MISSING_LANDMARKS"
	ErrCodeInvalidLandmarks  Code = "INVALID_LANDMARKS"
	ErrCodeInvalidCropBounds Code = "INVALID_CROP_BOUNDS"

	// Session state
	ErrCodeNotReady Code = "NOT_READY"
	ErrCodeBusy     Code = "BUSY"

	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix. Errors without a
// code fall back to their string form.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Warning is a non-fatal condition surfaced to the user alongside a result.
type Warning struct {
	Message string
}

func (w Warning) String() string { return w.Message }
