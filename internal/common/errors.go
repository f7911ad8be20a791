package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match an AppError against the sentinel of its code.
func (e *AppError) Is(target error) bool {
	s, ok := codeSentinels[e.Code]
	return ok && s == target
}

// Error codes
const (
	CodeUserInput   = "USER_INPUT"
	CodeProcessing  = "PROCESSING"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "CONFLICT"
	CodeUnavailable = "UNAVAILABLE"
	CodeConfig      = "CONFIG_ERROR"
)

// Common application errors
var (
	ErrUserInput    = errors.New("user input error")
	ErrProcessing   = errors.New("processing error")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource busy")
	ErrUnavailable  = errors.New("service unavailable")
	ErrInvalidInput = errors.New("invalid input")
)

var codeSentinels = map[string]error{
	CodeUserInput:   ErrUserInput,
	CodeProcessing:  ErrProcessing,
	CodeNotFound:    ErrNotFound,
	CodeConflict:    ErrConflict,
	CodeUnavailable: ErrUnavailable,
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewUserInputError reports a request the caller must fix (missing photos,
// missing template). Nothing downstream has run when one is returned.
func NewUserInputError(message string, cause error) *AppError {
	return NewAppError(CodeUserInput, message, cause)
}

// NewProcessingError reports a failure after validation passed: model call,
// image decode, document write.
func NewProcessingError(message string, cause error) *AppError {
	return NewAppError(CodeProcessing, message, cause)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, message, nil)
}

func NewConflictError(message string) *AppError {
	return NewAppError(CodeConflict, message, nil)
}

func NewUnavailableError(message string) *AppError {
	return NewAppError(CodeUnavailable, message, nil)
}

func IsUserInput(err error) bool  { return errors.Is(err, ErrUserInput) }
func IsProcessing(err error) bool { return errors.Is(err, ErrProcessing) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUserInput), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrProcessing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show a caller; causes stay in logs.
func PublicMessage(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}
