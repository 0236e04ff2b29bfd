package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/types"
)

type RecipeHandler struct {
	recipes *service.RecipeService
	cache   *middleware.ResponseCache
	logger  *zap.Logger
}

func NewRecipeHandler(recipes *service.RecipeService, cache *middleware.ResponseCache, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, cache: cache, logger: logger}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	read := h.cache.Cache(scopeRecipes)
	write := h.cache.Invalidate(scopeRecipes)
	{
		recipes.GET("", read, h.ListRecipes)
		recipes.GET("/:id", read, h.GetRecipe)
		recipes.POST("", write, h.CreateRecipe)
		recipes.PUT("/:id", write, h.UpdateRecipe)
		recipes.DELETE("/:id", write, h.DeleteRecipe)
	}
}

func recipeFromRequest(req *types.RecipeRequest) *models.Recipe {
	recipe := &models.Recipe{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Instructions: models.JSONBStringArray(req.Instructions),
		PrepTime:     req.PrepTime,
		Servings:     req.Servings,
	}
	for _, ing := range req.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			Item:     ing.Item,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}
	return recipe
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ListRecipes searches all recipes. q orders by similarity where the
// database supports it.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, err := h.recipes.Search(c.Request.Context(), service.RecipeQuery{
		Text:         c.Query("q"),
		NameContains: c.Query("name"),
		Ingredient:   c.Query("ingredient"),
		Ingredients:  splitCSV(c.Query("ingredients")),
		SortBy:       c.Query("sortBy"),
		SortOrder:    c.Query("sortOrder"),
		Page:         queryInt(c, "page"),
		Limit:        queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, ingredients and instructions are required")
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), userID, recipeFromRequest(&req))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, ingredients and instructions are required")
		return
	}
	recipe, err := h.recipes.Update(c.Request.Context(), id, recipeFromRequest(&req))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}
