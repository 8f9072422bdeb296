package matrix

import (
	"errors"
	"fmt"
)

// Error is a request validation failure. Synthesis rejects a request before
// any column or cell is allocated; once validation passes, nothing else in
// the pipeline can fail.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Field names the offending request field.
	Field string

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes validation errors.
type ErrorCode string

const (
	// ErrCodeInvalidWidth indicates a zero, negative or unrepresentable width.
	ErrCodeInvalidWidth ErrorCode = "INVALID_WIDTH"

	// ErrCodeInvalidConstant indicates a constant that does not fit its
	// allowance or is supplied to a mode that does not use it.
	ErrCodeInvalidConstant ErrorCode = "INVALID_CONSTANT"

	// ErrCodeInvalidMode indicates a Mode value outside the known set.
	ErrCodeInvalidMode ErrorCode = "INVALID_MODE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidWidth returns true if the error is a width validation error.
// Uses errors.As to handle wrapped errors.
func IsInvalidWidth(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == ErrCodeInvalidWidth
	}
	return false
}

// IsInvalidConstant returns true if the error is a constant validation error.
// Uses errors.As to handle wrapped errors.
func IsInvalidConstant(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == ErrCodeInvalidConstant
	}
	return false
}

// IsInvalidMode returns true if the error is a mode validation error.
func IsInvalidMode(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == ErrCodeInvalidMode
	}
	return false
}

func widthError(field, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidWidth, Field: field, Message: fmt.Sprintf(format, args...)}
}

func constantError(field, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidConstant, Field: field, Message: fmt.Sprintf(format, args...)}
}
