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
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeForbidden  ErrorType = "FORBIDDEN"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal   ErrorType = "EXTERNAL_ERROR"
)

// statusFor is the HTTP status each error type is answered with. Gateway
// failures surface as 500 to donors.
var statusFor = map[ErrorType]int{
	ErrorTypeValidation: http.StatusBadRequest,
	ErrorTypeNotFound:   http.StatusNotFound,
	ErrorTypeForbidden:  http.StatusForbidden,
	ErrorTypeConflict:   http.StatusConflict,
	ErrorTypeInternal:   http.StatusInternalServerError,
	ErrorTypeExternal:   http.StatusInternalServerError,
}

type ErrorCode string

const (
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount        ErrorCode = "INVALID_AMOUNT"
	ErrCodeAmountTooLow         ErrorCode = "AMOUNT_TOO_LOW"
	ErrCodeInvalidEmail         ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidPaymentMethod ErrorCode = "INVALID_PAYMENT_METHOD"

	ErrCodeInvalidNotification ErrorCode = "INVALID_NOTIFICATION"
	ErrCodeInvalidSignature    ErrorCode = "INVALID_SIGNATURE"
	ErrCodeInvalidTransition   ErrorCode = "INVALID_STATUS_TRANSITION"

	ErrCodeDonationNotFound ErrorCode = "DONATION_NOT_FOUND"
	ErrCodeProgramNotFound  ErrorCode = "PROGRAM_NOT_FOUND"

	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
	ErrCodePaymentGatewayFailed ErrorCode = "PAYMENT_GATEWAY_FAILED"
)

type AppError struct {
	Type       ErrorType
	Code       ErrorCode
	Message    string
	Details    interface{}
	StatusCode int
	Cause      error
}

var (
	ErrDonationNotFound    = newAppError(ErrorTypeNotFound, ErrCodeDonationNotFound, "Donation not found")
	ErrProgramNotFound     = newAppError(ErrorTypeNotFound, ErrCodeProgramNotFound, "Donation program not found")
	ErrInvalidSignature    = newAppError(ErrorTypeForbidden, ErrCodeInvalidSignature, "Invalid signature")
	ErrInvalidNotification = newAppError(ErrorTypeValidation, ErrCodeInvalidNotification, "Invalid notification format.")
	ErrInvalidTransition   = newAppError(ErrorTypeConflict, ErrCodeInvalidTransition, "status transition not allowed")
)

func newAppError(typ ErrorType, code ErrorCode, message string) *AppError {
	return &AppError{
		Type:       typ,
		Code:       code,
		Message:    message,
		StatusCode: statusFor[typ],
	}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeValidation, code, message)
}

// NewValidationFieldError reports a single invalid request field.
func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return NewValidationError("Validation failed", ErrCodeValidationFailed).WithDetails(ValidationErrors{
		Errors: []ValidationError{{Field: field, Message: message, Code: string(code)}},
	})
}

func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, ErrCodeInternal, message).WithCause(cause)
}

// NewUpstreamError reports a failure of the payment gateway.
func NewUpstreamError(message string, cause error) *AppError {
	return newAppError(ErrorTypeExternal, ErrCodePaymentGatewayFailed, message).WithCause(cause)
}

func (e *AppError) Error() string {
	if fields := e.fieldErrors(); len(fields) > 0 {
		return fields[0].Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins field messages, falling back to Message.
func (e *AppError) GetDetailedMessage() string {
	fields := e.fieldErrors()
	if len(fields) == 0 {
		return e.Message
	}
	messages := make([]string, len(fields))
	for i, f := range fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

func (e *AppError) fieldErrors() []ValidationError {
	if v, ok := e.Details.(ValidationErrors); ok {
		return v.Errors
	}
	return nil
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Type and Code so sentinel errors survive WithCause copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy carrying cause; sentinels stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// MarshalJSON leaves out the status and the cause, which may carry driver
// detail.
func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{e.Type, e.Code, e.Message, e.Details})
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Is reports whether err matches target, see errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsAppError unwraps err looking for an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
