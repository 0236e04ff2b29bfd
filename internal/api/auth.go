package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
)

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email, password and name are required")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name, req.Preferences)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}
