package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/service"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case service.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrRecipeNotFound),
		errors.Is(err, service.ErrMealPlanNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientQuantity),
		errors.Is(err, service.ErrNoIngredients),
		errors.Is(err, service.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRecipeExists),
		errors.Is(err, service.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAIUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Unexpected errors are logged
// and hidden from the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(status, gin.H{"error": verr.Error(), "field": verr.Field})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
