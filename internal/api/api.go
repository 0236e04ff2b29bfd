package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
)

// Cache scopes for read endpoints.
const (
	scopeInventory    = "inventory"
	scopeRecipes      = "recipes"
	scopeMealPlans    = "mealplans"
	scopeShoppingList = "shopping-list"
)

// Dependencies are the services the HTTP layer is built from. Cache and
// AILimiter may be nil.
type Dependencies struct {
	Auth         *service.AuthService
	Inventory    *service.InventoryService
	Recipes      *service.RecipeService
	MealPlans    *service.MealPlanService
	ShoppingList *service.ShoppingListService
	Suggestions  *service.SuggestionService
	Images       *service.ImageService
	Commands     *service.CommandService
	AI           service.Assistant
	Cache        *middleware.ResponseCache
	AILimiter    *middleware.RateLimiter
	Logger       *zap.Logger
}

// RegisterRoutes mounts every handler on v1.
func RegisterRoutes(v1 *gin.RouterGroup, deps Dependencies) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Cache == nil {
		deps.Cache = middleware.NewResponseCache(nil, deps.Logger)
	}
	var aiLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.AILimiter != nil {
		aiLimit = deps.AILimiter.RateLimitMiddleware()
	}

	NewAuthHandler(deps.Auth, deps.Logger).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth))

	NewUserHandler(deps.Auth, deps.Logger).RegisterRoutes(protected)
	NewInventoryHandler(deps.Inventory, deps.Cache, deps.Logger).RegisterRoutes(protected)
	NewRecipeHandler(deps.Recipes, deps.Cache, deps.Logger).RegisterRoutes(protected)
	NewMealPlanHandler(deps.MealPlans, deps.Cache, aiLimit, deps.Logger).RegisterRoutes(protected)
	NewShoppingListHandler(deps.ShoppingList, deps.Cache, deps.Logger).RegisterRoutes(protected)
	NewAssistantHandler(deps.Suggestions, deps.Recipes, deps.AI, aiLimit, deps.Logger).RegisterRoutes(protected)
	NewImageHandler(deps.Images, deps.Cache, aiLimit, deps.Logger).RegisterRoutes(protected)
	NewCommandHandler(deps.Commands, deps.Cache, deps.Logger).RegisterRoutes(protected)

	if deps.AILimiter != nil {
		NewRateLimitHandler(deps.AILimiter).RegisterRoutes(protected)
	}
}
