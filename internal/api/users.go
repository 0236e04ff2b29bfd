package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewUserHandler(authService *service.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{authService: authService, logger: logger}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	me := router.Group("/users/me")
	{
		me.GET("", h.GetProfile)
		me.PUT("", h.UpdateProfile)
		me.PUT("/preferences", h.UpdatePreferences)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdatePreferences merges the body into the stored preferences. A null
// value removes a key.
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var prefs map[string]interface{}
	if err := c.ShouldBindJSON(&prefs); err != nil {
		badRequest(c, "preferences must be a JSON object")
		return
	}
	user, err := h.authService.UpdatePreferences(c.Request.Context(), userID, prefs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
