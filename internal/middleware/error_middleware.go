package middleware

import (
	"errors"
	"net/http"

	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/alumniconnect/platform/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

// statusFor maps an error kind to its HTTP status and default error code.
func statusFor(err error) (int, dto.ErrorCode) {
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.ErrorCodeUnauthorized
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.ErrorCodeAccountDisabled
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		return http.StatusConflict, dto.ErrorCodeCapacityExceeded
	case errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusConflict, dto.ErrorCodeInvalidState
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeConflict
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer
	}
}

// errorDetail renders err for the client. Infrastructure errors never leak
// their message.
func errorDetail(err error) (int, *dto.ErrorDetail) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		return status, dto.NewErrorDetail(code, "Internal server error").WithSeverity(dto.ErrorSeverityCritical)
	}

	detail := dto.NewErrorDetail(code, err.Error())
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		detail.Message = ce.Message
		if len(ce.Details) > 0 {
			detail.WithDetails(ce.Details)
			if field, ok := ce.Details["field"].(string); ok {
				detail.WithField(field)
			}
		}
	}
	if status < http.StatusInternalServerError {
		detail.WithSeverity(dto.ErrorSeverityWarning)
	}
	return status, detail
}

// HandleAPIError writes the error response for err.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetail(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	_ = c.Error(err)
	c.JSON(status, dto.NewErrorResponse(detail))
}

func abortWithError(c *gin.Context, err error) {
	HandleAPIError(c, err)
	c.Abort()
}
