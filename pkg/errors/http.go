package errors

import (
	"errors"
)

func HTTPStatusCode(err error) int {
	switch GetErrorType(err) {
	case ErrorTypeNotFound, ErrorTypeNothingToExport:
		return StatusNotFound
	case ErrorTypeInvalidRequest, ErrorTypeValidation, ErrorTypeMalformedIdentifier:
		return StatusBadRequest
	case ErrorTypeUnauthorized:
		return StatusUnauthorized
	case ErrorTypeDuplicate:
		return StatusConflict
	case ErrorTypeServiceUnavailable:
		return StatusServiceUnavailable
	default:
		return StatusInternalServerError
	}
}

func GetHumanReadableMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeDatabaseError, ErrorTypeInternalServerError:
			// Messages on these types are written for operators.
			return "An unexpected error occurred"
		}
		return appErr.Message
	}

	// Avoid leaking driver or stack messages.
	return "An unexpected error occurred"
}
