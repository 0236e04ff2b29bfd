package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealplanner/backend/internal/middleware"
)

// RateLimitHandler reports the caller's remaining AI quota.
type RateLimitHandler struct {
	limiter *middleware.RateLimiter
}

func NewRateLimitHandler(limiter *middleware.RateLimiter) *RateLimitHandler {
	return &RateLimitHandler{limiter: limiter}
}

func (h *RateLimitHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rate-limits/ai", h.AIStatus)
}

func (h *RateLimitHandler) AIStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	remaining, resetTime, err := h.limiter.GetRemainingRequests(c.Request.Context(), userID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check rate limit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"limit":      h.limiter.Limit(),
		"remaining":  remaining,
		"reset_time": resetTime.Unix(),
		"window":     h.limiter.Window().String(),
	})
}
