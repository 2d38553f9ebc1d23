package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentdesk/internal/app/models/dto"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
	"github.com/yigit/studentdesk/internal/pkg/dberrors"
	"github.com/yigit/studentdesk/internal/pkg/logger"
)

// HandleAPIError maps service errors onto API error responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Student not found")
	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "User not found")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid),
		errors.Is(err, apperrors.ErrSessionNotFound),
		errors.Is(err, apperrors.ErrSessionRevoked):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrSessionAbsent):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrValidationFailed):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
		if fields := apperrors.FieldErrors(err); fields != nil {
			detail = detail.WithDetails(fields)
		}
		return http.StatusBadRequest, detail
	case errors.Is(err, apperrors.ErrInvalidEmail):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidEmail, err.Error())
	case errors.Is(err, apperrors.ErrInvalidPassword):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidPassword, err.Error())
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrWriteFailed), errors.Is(err, apperrors.ErrReadFailed):
		// Store failures are reported with the database's own message.
		detail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, err.Error())
		return http.StatusBadGateway, detail.WithDetails(dberrors.Message(err))
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
