package types

import (
	"github.com/pageza/mealplanner/backend/internal/command"
)

// Auth API types
type RegisterRequest struct {
	Email       string                 `json:"email" binding:"required"`
	Password    string                 `json:"password" binding:"required"`
	Name        string                 `json:"name" binding:"required"`
	Preferences map[string]interface{} `json:"preferences"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Inventory API types
type InventoryItemRequest struct {
	Item     string `json:"item" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	Unit     string `json:"unit"`
}

type BulkInventoryRequest struct {
	Items []InventoryItemRequest `json:"items" binding:"required"`
}

// InventoryUpdateRequest applies one operation to one item.
type InventoryUpdateRequest struct {
	Operation string `json:"operation" binding:"required,oneof=add remove"`
	InventoryItemRequest
}

// Recipe API types
type RecipeIngredientRequest struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type RecipeRequest struct {
	Name         string                    `json:"name" binding:"required"`
	Description  string                    `json:"description"`
	Category     string                    `json:"category"`
	Ingredients  []RecipeIngredientRequest `json:"ingredients" binding:"required"`
	Instructions []string                  `json:"instructions" binding:"required"`
	PrepTime     int                       `json:"prep_time"`
	Servings     int                       `json:"servings"`
}

// Meal plan API types
type PlannedMealRequest struct {
	RecipeID string `json:"recipe_id"`
	Name     string `json:"name"`
	Date     string `json:"date"`
	Meal     string `json:"meal"`
}

type MealPlanRequest struct {
	Name      string               `json:"name" binding:"required"`
	StartDate string               `json:"start_date" binding:"required"`
	EndDate   string               `json:"end_date" binding:"required"`
	Meals     []PlannedMealRequest `json:"meals"`
}

type AutoGenerateRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Shopping list API types
type ShoppingItemRequest struct {
	Ingredient string  `json:"ingredient" binding:"required"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
}

type ShoppingItemsRequest struct {
	Items []ShoppingItemRequest `json:"items" binding:"required"`
}

type GenerateShoppingListRequest struct {
	RecipeIDs []string `json:"recipe_ids" binding:"required"`
	Save      bool     `json:"save"`
}

// Assistant API types
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

// CommandResponse is the result of executing an interpreted command.
type CommandResponse struct {
	Action command.Action `json:"action"`
	Params command.Intent `json:"params"`
	Result interface{}    `json:"result,omitempty"`
}

// CommandErrorResponse is returned for commands that match no rule.
type CommandErrorResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions"`
}
