// Package errors defines the structured error type shared by the section
// store, scanner, renderer and HTTP surface.
//
// Most failures in this system degrade to "render nothing" rather than
// surfacing to the reader of a page. The Type of an Error tells the caller
// which of those degradations applies: a NotFound lookup renders an empty
// occurrence, an UnreadableAsset is dropped from aggregation, and only Store
// errors propagate up to the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeUnreadableAsset ErrorType = "unreadable_asset"
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeAuthorization   ErrorType = "authorization"
	ErrorTypeStore           ErrorType = "store"
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypeInternal        ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeSectionNotFound    = "ERR_SECTION_NOT_FOUND"
	ErrCodePageNotFound       = "ERR_PAGE_NOT_FOUND"
	ErrCodeAttachmentNotFound = "ERR_ATTACHMENT_NOT_FOUND"
	ErrCodeAssetUnreadable    = "ERR_ASSET_UNREADABLE"
	ErrCodeInvalidNonce       = "ERR_INVALID_NONCE"
	ErrCodeStoreQuery         = "ERR_STORE_QUERY"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeFrontMatter        = "ERR_FRONT_MATTER"
	ErrCodeInternalError      = "ERR_INTERNAL"
)

// Error is a structured error type with context.
type Error struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison on type and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// Error creation functions

// NewNotFoundError creates a lookup miss.
func NewNotFoundError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewUnreadableAssetError creates an error for an attachment whose file
// cannot be read.
func NewUnreadableAssetError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeUnreadableAsset,
		Code:    ErrCodeAssetUnreadable,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewAuthorizationError creates an authorization error.
func NewAuthorizationError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeAuthorization,
		Code:    code,
		Message: message,
	}
}

// NewStoreError wraps a content store failure.
func NewStoreError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeStore,
		Code:    ErrCodeStoreQuery,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// TypeOf returns the ErrorType carried by err, or "" when there is none.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}

	return ""
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// IsUnreadableAsset reports whether err is an unreadable attachment.
func IsUnreadableAsset(err error) bool {
	return TypeOf(err) == ErrorTypeUnreadableAsset
}

// IsAuthorization reports whether err is an authorization failure.
func IsAuthorization(err error) bool {
	return TypeOf(err) == ErrorTypeAuthorization
}

// IsStore reports whether err is a content store failure.
func IsStore(err error) bool {
	return TypeOf(err) == ErrorTypeStore
}
