package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the flow controllers and the portal.
const (
	CodeAuthenticationFailed  = "AUTHENTICATION_FAILED"
	CodeAuthorizationDenied   = "AUTHORIZATION_DENIED"
	CodeSessionInvalid        = "SESSION_INVALID"
	CodeValidationRejected    = "VALIDATION_REJECTED"
	CodeRemoteOperationFailed = "REMOTE_OPERATION_FAILED"
	CodeInFlight              = "IN_FLIGHT"
	CodeConfirmationRequired  = "CONFIRMATION_REQUIRED"
	CodeNotFound              = "NOT_FOUND"
	CodeInternal              = "INTERNAL_ERROR"
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

// Is matches on Code so sentinel DomainErrors work with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewAuthenticationFailure wraps a rejected login or registration.
func NewAuthenticationFailure(message string, err error) error {
	return &DomainError{Code: CodeAuthenticationFailed, Message: message, HTTPStatus: http.StatusUnauthorized, Err: err}
}

func NewAuthorizationDenied(message string) error {
	return NewDomainError(CodeAuthorizationDenied, message, http.StatusForbidden, nil)
}

func NewSessionInvalid(message string, err error) error {
	return &DomainError{Code: CodeSessionInvalid, Message: message, HTTPStatus: http.StatusUnauthorized, Err: err}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationRejected, message, http.StatusBadRequest, details)
}

// NewRemoteFailure reports a non-success remote call. 4xx statuses are passed
// through so the portal reflects the backend's decision; everything else is 502.
func NewRemoteFailure(message string, remoteStatus int, err error) error {
	status := http.StatusBadGateway
	if remoteStatus >= 400 && remoteStatus < 500 {
		status = remoteStatus
	}
	return &DomainError{Code: CodeRemoteOperationFailed, Message: message, HTTPStatus: status, Err: err}
}

func NewInFlight(action string) error {
	return NewDomainError(CodeInFlight, fmt.Sprintf("%s already in progress", action), http.StatusConflict, map[string]any{"action": action})
}

func NewConfirmationRequired(message string) error {
	return NewDomainError(CodeConfirmationRequired, message, http.StatusPreconditionRequired, nil)
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

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
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

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Message
}
