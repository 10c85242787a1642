package router

import (
	"net/http"

	"github.com/akeren/event-registration/internal/log"
	apperrors "github.com/akeren/event-registration/pkg/errors"
)

// GetLogger returns the request-scoped logger, or a fresh JSON logger
// carrying the correlation ID when none was injected.
func GetLogger(ctx *RequestContext) *log.Logger {
	if l, ok := ctx.Request.Context().Value(log.LoggerKeyForContext).(*log.Logger); ok {
		return l
	}
	return log.NewLoggerWithJSONOutput().WithCorrelationID(ctx.Request.Context())
}

func newResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{StatusCode: statusCode, Message: message, Data: data}
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return newResult(statusCode, message, data)
}

func OKResult(data any, message string) *ServiceResult {
	return newResult(http.StatusOK, message, data)
}

// BadRequestResult carries field errors in Data.
func BadRequestResult(message string, fieldErrors any) *ServiceResult {
	return newResult(http.StatusBadRequest, message, fieldErrors)
}

func UnauthorizedResult(message string) *ServiceResult {
	return newResult(http.StatusUnauthorized, message, nil)
}

func NotFoundResult(message string) *ServiceResult {
	return newResult(http.StatusNotFound, message, nil)
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return newResult(http.StatusTooManyRequests, "Too Many Requests", data)
}

func InternalServerErrorResult(message string) *ServiceResult {
	return newResult(http.StatusInternalServerError, message, nil)
}

func ServiceUnavailableResult(message string) *ServiceResult {
	return newResult(http.StatusServiceUnavailable, message, nil)
}

// AppErrorResult maps err onto its HTTP status, client-safe message and details.
func AppErrorResult(err error) *ServiceResult {
	return ErrorResult(
		apperrors.HTTPStatusCode(err),
		apperrors.GetHumanReadableMessage(err),
		apperrors.GetDetails(err),
	)
}

// FileResult answers with a binary download instead of the JSON envelope.
func FileResult(filename, contentType string, body []byte) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusOK,
		Message:    filename,
		Attachment: &Attachment{Filename: filename, ContentType: contentType, Body: body},
	}
}
