package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
)

// AssistantHandler serves recipe suggestions and the AI chat.
type AssistantHandler struct {
	suggestions *service.SuggestionService
	recipes     *service.RecipeService
	ai          service.Assistant
	aiLimit     gin.HandlerFunc
	logger      *zap.Logger
}

func NewAssistantHandler(suggestions *service.SuggestionService, recipes *service.RecipeService, ai service.Assistant, aiLimit gin.HandlerFunc, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{suggestions: suggestions, recipes: recipes, ai: ai, aiLimit: aiLimit, logger: logger}
}

func (h *AssistantHandler) RegisterRoutes(router *gin.RouterGroup) {
	sug := router.Group("/suggestions")
	sug.Use(h.aiLimit)
	{
		sug.GET("/recipes", h.RecipeSuggestions)
		sug.GET("/recipes/:id/instructions", h.Instructions)
		sug.GET("/substitutions/:ingredient", h.Substitutions)
	}
	router.POST("/chat", h.aiLimit, h.Chat)
}

func (h *AssistantHandler) RecipeSuggestions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	suggestions, err := h.suggestions.ForInventory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *AssistantHandler) Substitutions(c *gin.Context) {
	if h.ai == nil {
		respondError(c, h.logger, service.ErrAIUnavailable)
		return
	}
	ingredient := c.Param("ingredient")
	subs, err := h.ai.Substitutions(c.Request.Context(), ingredient)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredient": ingredient, "substitutions": subs})
}

// Instructions asks the assistant for step-by-step directions for a
// stored recipe.
func (h *AssistantHandler) Instructions(c *gin.Context) {
	if h.ai == nil {
		respondError(c, h.logger, service.ErrAIUnavailable)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	steps, err := h.ai.RecipeInstructions(c.Request.Context(), recipe.Name, recipe.IngredientNames())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_id": recipe.ID, "name": recipe.Name, "instructions": steps})
}

func (h *AssistantHandler) Chat(c *gin.Context) {
	if h.ai == nil {
		respondError(c, h.logger, service.ErrAIUnavailable)
		return
	}
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "message is required")
		return
	}
	reply, err := h.ai.Chat(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}
