package errors

import (
	"errors"
	"fmt"
)

const (
	StatusNoContent           = 204
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusRequestTimeout      = 408
	StatusConflict            = 409
	StatusInternalServerError = 500
	StatusServiceUnavailable  = 503
)

const (
	ErrorTypeDatabaseError       = "DATABASE_ERROR"
	ErrorTypeNotFound            = "NOT_FOUND"
	ErrorTypeInvalidRequest      = "INVALID_REQUEST"
	ErrorTypeUnauthorized        = "UNAUTHORIZED"
	ErrorTypeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrorTypeUnknown             = "UNKNOWN_ERROR"
	ErrorTypeValidation          = "VALIDATION_FAILED"
	ErrorTypeDuplicate           = "DUPLICATE"
	ErrorTypeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorTypeMalformedIdentifier = "MALFORMED_IDENTIFIER"
	ErrorTypeNothingToExport     = "NOTHING_TO_EXPORT"
)

type AppError struct {
	Type    string
	Message string
	Err     error
	// Details carries client-safe structured context, e.g. validation reasons
	// or the fields that collided on a duplicate.
	Details any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(errType, message string, err error, details any) *AppError {
	return &AppError{Type: errType, Message: message, Err: err, Details: details}
}

func NewNotFoundError(message string, err error) *AppError {
	return newAppError(ErrorTypeNotFound, message, err, nil)
}

func NewInvalidRequestError(message string, err error) *AppError {
	return newAppError(ErrorTypeInvalidRequest, message, err, nil)
}

func NewUnauthorizedError(message string, err error) *AppError {
	return newAppError(ErrorTypeUnauthorized, message, err, nil)
}

func NewDatabaseError(message string, err error) *AppError {
	return newAppError(ErrorTypeDatabaseError, message, err, nil)
}

func NewInternalServerError(message string, err error) *AppError {
	return newAppError(ErrorTypeInternalServerError, message, err, nil)
}

// NewValidationError reports user-fixable input problems. All reasons are
// surfaced together, in the order they were detected.
func NewValidationError(message string, reasons []string) *AppError {
	return newAppError(ErrorTypeValidation, message, nil, reasons)
}

// NewDuplicateError names the fields that collided with an existing record.
func NewDuplicateError(message string, fields []string, err error) *AppError {
	return newAppError(ErrorTypeDuplicate, message, err, fields)
}

func NewServiceUnavailableError(message string, err error) *AppError {
	return newAppError(ErrorTypeServiceUnavailable, message, err, nil)
}

func NewMalformedIdentifierError(message string, err error) *AppError {
	return newAppError(ErrorTypeMalformedIdentifier, message, err, nil)
}

func NewNothingToExportError(message string) *AppError {
	return newAppError(ErrorTypeNothingToExport, message, nil, nil)
}

func GetErrorType(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}

	return ErrorTypeUnknown
}

// GetDetails returns the structured details of an AppError, or nil.
func GetDetails(err error) any {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType string) bool {
	return GetErrorType(err) == errType
}
