package errorutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes shared by the fixture backend and the client.
const (
	CodeValidation            = "VALIDATION_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeConflict              = "CONFLICT"
	CodeInternal              = "INTERNAL_ERROR"
	CodeLoginRejected         = "LOGIN_REJECTED"
	CodeAuthorizationRejected = "AUTHORIZATION_REJECTED"
	CodeUpstream              = "UPSTREAM_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewLoginRejected reports that the backend declined the submitted
// credentials. The backend message is kept verbatim.
func NewLoginRejected(status int, message string) error {
	if strings.TrimSpace(message) == "" {
		message = "authentication failed"
	}
	return NewDomainError(CodeLoginRejected, message, status, nil)
}

// NewAuthorizationRejected reports a 401/403 on an authenticated call.
func NewAuthorizationRejected(status int, message string) error {
	if strings.TrimSpace(message) == "" {
		message = http.StatusText(status)
	}
	return NewDomainError(CodeAuthorizationRejected, message, status, nil)
}

// IsLoginRejected reports whether err carries CodeLoginRejected.
func IsLoginRejected(err error) bool {
	return hasCode(err, CodeLoginRejected)
}

// IsAuthorizationRejected reports whether err carries CodeAuthorizationRejected.
func IsAuthorizationRejected(err error) bool {
	return hasCode(err, CodeAuthorizationRejected)
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// FromResponse decodes a non-2xx backend body into a DomainError. The
// backend may answer with {"message": "..."}, {"error": "..."} or
// {"error": {"code": "...", "message": "..."}}.
func FromResponse(status int, body []byte) *DomainError {
	domainErr := &DomainError{
		Code:       codeForStatus(status),
		Message:    http.StatusText(status),
		HTTPStatus: status,
	}

	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
			domainErr.Message = text
		}
		return domainErr
	}

	if payload.Message != "" {
		domainErr.Message = payload.Message
	}
	if len(payload.Error) == 0 {
		return domainErr
	}

	var text string
	if err := json.Unmarshal(payload.Error, &text); err == nil {
		if payload.Message == "" && text != "" {
			domainErr.Message = text
		}
		return domainErr
	}

	var nested struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(payload.Error, &nested); err == nil {
		if nested.Code != "" {
			domainErr.Code = nested.Code
		}
		if payload.Message == "" && nested.Message != "" {
			domainErr.Message = nested.Message
		}
		domainErr.Details = nested.Details
	}
	return domainErr
}

// FromStatus builds a DomainError for a bare HTTP status, such as the
// errors fiber raises for unknown routes or oversized bodies.
func FromStatus(status int, message string) *DomainError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &DomainError{Code: codeForStatus(status), Message: message, HTTPStatus: status}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return CodeValidation
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status >= 500:
		return CodeUpstream
	default:
		return CodeInternal
	}
}
