package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cambix/cambix_backend/internal/apperrors"
	"github.com/cambix/cambix_backend/internal/middleware"
)

// handleServiceError translates service errors into HTTP responses. Every
// handler funnels its service call failures through here so status mapping
// stays in one place.
func handleServiceError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var insufficientErr *apperrors.InsufficientFundsError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("validation error", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("forbidden", "error", err.Error())
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("conflict", "error", err.Error())
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidState):
		logger.Warn("invalid state", "error", err.Error())
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &insufficientErr):
		logger.Warn("insufficient funds", "currency", insufficientErr.CurrencyCode,
			"required", insufficientErr.Required.String(), "available", insufficientErr.Available.String())
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":        insufficientErr.Error(),
			"currencyCode": insufficientErr.CurrencyCode,
			"required":     insufficientErr.Required,
			"available":    insufficientErr.Available,
		})
	default:
		logger.Error("internal error", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parseIDParam reads a positive int64 path parameter, answering 400 itself
// on bad input.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}
