package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
	"go.uber.org/zap"
)

const (
	SourceDatabase = "database"
	SourceAI       = "ai"
)

// RecipeSuggestion is a recipe proposed for the user's inventory.
type RecipeSuggestion struct {
	Name         string                    `json:"name"`
	RecipeID     *uuid.UUID                `json:"recipe_id,omitempty"`
	Ingredients  []models.RecipeIngredient `json:"ingredients"`
	Instructions []string                  `json:"instructions"`
	Source       string                    `json:"source"`
}

// SuggestionService combines stored recipes with AI ideas.
type SuggestionService struct {
	inventory *InventoryService
	recipes   *RecipeService
	ai        MealSuggester
	logger    *zap.Logger
}

// NewSuggestionService creates a suggestion service. ai may be nil.
func NewSuggestionService(inventory *InventoryService, recipes *RecipeService, ai MealSuggester, logger *zap.Logger) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{inventory: inventory, recipes: recipes, ai: ai, logger: logger}
}

// ForInventory suggests recipes for everything the user has in stock.
func (s *SuggestionService) ForInventory(ctx context.Context, userID uuid.UUID) ([]RecipeSuggestion, error) {
	items, err := s.inventory.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return s.Generate(ctx, names), nil
}

// Generate returns at most one stored recipe using any of ingredients,
// followed by the first AI suggestion. Failures of either source only drop
// that source's entry.
func (s *SuggestionService) Generate(ctx context.Context, ingredients []string) []RecipeSuggestion {
	out := []RecipeSuggestion{}
	if len(ingredients) == 0 {
		return out
	}

	for _, ing := range ingredients {
		page, err := s.recipes.Search(ctx, RecipeQuery{Ingredient: ing, SortBy: "name", Limit: 1})
		if err != nil {
			s.logger.Warn("recipe search failed", zap.String("ingredient", ing), zap.Error(err))
			continue
		}
		if len(page.Recipes) > 0 {
			r := page.Recipes[0]
			id := r.ID
			out = append(out, RecipeSuggestion{
				Name:         r.Name,
				RecipeID:     &id,
				Ingredients:  r.Ingredients,
				Instructions: r.Instructions,
				Source:       SourceDatabase,
			})
			break
		}
	}

	if s.ai == nil {
		return out
	}
	ideas, err := s.ai.MealSuggestions(ctx, ingredients)
	if err != nil {
		s.logger.Warn("ai suggestions failed", zap.Error(err))
		return out
	}
	if len(ideas) == 0 {
		return out
	}

	first := ideas[0]
	ings := make([]models.RecipeIngredient, len(first.Ingredients))
	for i, item := range first.Ingredients {
		ings[i] = models.RecipeIngredient{Item: item, Quantity: 1}
	}
	return append(out, RecipeSuggestion{
		Name:         first.Name,
		Ingredients:  ings,
		Instructions: first.Instructions,
		Source:       SourceAI,
	})
}
