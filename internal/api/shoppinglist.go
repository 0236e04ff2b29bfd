package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
)

type ShoppingListHandler struct {
	list   *service.ShoppingListService
	cache  *middleware.ResponseCache
	logger *zap.Logger
}

func NewShoppingListHandler(list *service.ShoppingListService, cache *middleware.ResponseCache, logger *zap.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{list: list, cache: cache, logger: logger}
}

func (h *ShoppingListHandler) RegisterRoutes(router *gin.RouterGroup) {
	list := router.Group("/shopping-list")
	write := h.cache.Invalidate(scopeShoppingList)
	{
		list.GET("", h.cache.Cache(scopeShoppingList), h.List)
		list.DELETE("", write, h.Clear)
		list.POST("/add", write, h.Add)
		list.POST("/remove", write, h.Remove)
		list.POST("/generate", write, h.Generate)
	}
}

func shoppingItems(req *types.ShoppingItemsRequest) []service.ShoppingItem {
	items := make([]service.ShoppingItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.ShoppingItem{Ingredient: it.Ingredient, Quantity: it.Quantity, Unit: it.Unit}
	}
	return items
}

func (h *ShoppingListHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.list.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ShoppingListHandler) Add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ShoppingItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "items are required")
		return
	}
	items, err := h.list.Add(c.Request.Context(), userID, shoppingItems(&req))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ShoppingListHandler) Remove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ShoppingItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "items are required")
		return
	}
	items, err := h.list.Remove(c.Request.Context(), userID, shoppingItems(&req))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ShoppingListHandler) Clear(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.list.Clear(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shopping list cleared"})
}

// Generate computes what the given recipes still need. With save set the
// result is also merged into the stored list.
func (h *ShoppingListHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.GenerateShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "recipe_ids are required")
		return
	}
	ids := make([]uuid.UUID, 0, len(req.RecipeIDs))
	for _, raw := range req.RecipeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid recipe id "+raw)
			return
		}
		ids = append(ids, id)
	}

	items, err := h.list.GenerateFromRecipes(c.Request.Context(), userID, ids)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if req.Save && len(items) > 0 {
		if _, err := h.list.Add(c.Request.Context(), userID, items); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
