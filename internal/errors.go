package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeBadRequest     ErrorType = "BAD_REQUEST"
	ErrorTypeConflict       ErrorType = "CONFLICT"
	ErrorTypeSessionExpired ErrorType = "SESSION_EXPIRED"
	ErrorTypeUnauthorized   ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden      ErrorType = "FORBIDDEN"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeNetwork        ErrorType = "NETWORK_ERROR"
	ErrorTypeExternal       ErrorType = "EXTERNAL_ERROR"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidURL       ErrorCode = "INVALID_URL"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidZipcode   ErrorCode = "INVALID_ZIPCODE"
	ErrCodeInvalidSlot      ErrorCode = "INVALID_SLOT"
	ErrCodeInvalidSession   ErrorCode = "INVALID_SESSION"

	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeDuplicate       ErrorCode = "DUPLICATE"
	ErrCodeSessionExpired  ErrorCode = "SESSION_EXPIRED"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeRoleNotAllowed  ErrorCode = "ROLE_NOT_ALLOWED"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeTransport       ErrorCode = "TRANSPORT_FAILURE"
	ErrCodeUnexpectedReply ErrorCode = "UNEXPECTED_RESPONSE"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

// FieldErrors returns the field-level validation details, if any.
func (e *AppError) FieldErrors() []ValidationError {
	if details, ok := e.Details.(ValidationErrors); ok {
		return details.Errors
	}
	return nil
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeBadRequest,
		Code:       ErrCodeBadRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewSessionExpiredError() *AppError {
	return &AppError{
		Type:       ErrorTypeSessionExpired,
		Code:       ErrCodeSessionExpired,
		Message:    "Session expired",
		StatusCode: http.StatusUnauthorized,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewNetworkError(cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeNetwork,
		Code:    ErrCodeTransport,
		Message: "Request failed",
		Cause:   cause,
	}
}

func NewExternalError(message string, statusCode int) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeUnexpectedReply,
		Message:    message,
		StatusCode: statusCode,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewStatusError maps a non-2xx backend status to the client error taxonomy.
// 401 is handled by the gateway itself and never reaches this function with a live session.
func NewStatusError(statusCode int, message string) *AppError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		appErr := NewBadRequestError(message)
		appErr.StatusCode = statusCode
		return appErr
	case http.StatusConflict:
		return NewConflictError(message, ErrCodeDuplicate)
	case http.StatusUnauthorized:
		return NewUnauthorizedError(message, ErrCodeUnauthorized)
	case http.StatusForbidden:
		return NewForbiddenError(message, ErrCodeForbidden)
	case http.StatusNotFound:
		return NewNotFoundError(message, ErrCodeNotFound)
	default:
		return NewExternalError(message, statusCode)
	}
}

var (
	ErrSessionExpired  = NewSessionExpiredError()
	ErrRoleNotAllowed  = NewForbiddenError("Your role does not allow this action", ErrCodeRoleNotAllowed)
	ErrNotLoggedIn     = NewUnauthorizedError("Not logged in", ErrCodeUnauthorized)
	ErrInvalidSnapshot = NewValidationError("session requires both user and access token", ErrCodeInvalidSession)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == t
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
