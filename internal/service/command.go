package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/pageza/mealplanner/backend/internal/metrics"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
	"go.uber.org/zap"
)

// ItemQuantity answers a stock check.
type ItemQuantity struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// BulkResult is the outcome of adding one item of a bulk command.
type BulkResult struct {
	Item    string                `json:"item"`
	Success bool                  `json:"success"`
	Result  *models.InventoryItem `json:"result,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// CommandService interprets natural-language commands and carries them out
// against the user's data.
type CommandService struct {
	interpreter *command.Interpreter
	inventory   *InventoryService
	recipes     *RecipeService
	mealPlans   *MealPlanService
	ai          Substituter
	logger      *zap.Logger
}

// NewCommandService creates a command service. ai may be nil, in which case
// substitution commands fail with ErrAIUnavailable.
func NewCommandService(
	interpreter *command.Interpreter,
	inventory *InventoryService,
	recipes *RecipeService,
	mealPlans *MealPlanService,
	ai Substituter,
	logger *zap.Logger,
) *CommandService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandService{
		interpreter: interpreter,
		inventory:   inventory,
		recipes:     recipes,
		mealPlans:   mealPlans,
		ai:          ai,
		logger:      logger,
	}
}

// Interpret turns text into an Intent without executing it.
func (s *CommandService) Interpret(text string) (command.Intent, error) {
	intent, err := s.interpreter.Interpret(text)
	if err != nil {
		metrics.CommandsInterpreted.WithLabelValues(metrics.NotRecognized).Inc()
		return nil, err
	}
	metrics.CommandsInterpreted.WithLabelValues(string(intent.Action())).Inc()
	return intent, nil
}

// Run interprets and executes text for userID.
func (s *CommandService) Run(ctx context.Context, userID uuid.UUID, text string) (*types.CommandResponse, error) {
	intent, err := s.Interpret(text)
	if err != nil {
		return nil, err
	}
	result, err := s.Execute(ctx, userID, intent)
	if err != nil {
		return nil, err
	}
	return &types.CommandResponse{Action: intent.Action(), Params: intent, Result: result}, nil
}

// Execute carries out an interpreted intent.
func (s *CommandService) Execute(ctx context.Context, userID uuid.UUID, intent command.Intent) (interface{}, error) {
	s.logger.Debug("executing command", zap.String("action", string(intent.Action())), zap.String("user_id", userID.String()))

	switch in := intent.(type) {
	case command.CheckInventory:
		return s.inventory.List(ctx, userID, InventoryFilter{})

	case command.CheckItem:
		qty, err := s.inventory.Quantity(ctx, userID, in.Item)
		if err != nil {
			return nil, err
		}
		return ItemQuantity{Item: in.Item, Quantity: qty}, nil

	case command.AddToInventory:
		return s.inventory.Add(ctx, userID, in.Item, in.Quantity, in.Unit)

	case command.RemoveFromInventory:
		return s.inventory.Remove(ctx, userID, in.Item, in.Quantity)

	case command.BulkAddToInventory:
		results := make([]BulkResult, 0, len(in.Items))
		for _, e := range in.Items {
			row, err := s.inventory.Add(ctx, userID, e.Item, e.Quantity, e.Unit)
			if err != nil {
				results = append(results, BulkResult{Item: e.Item, Error: err.Error()})
				continue
			}
			results = append(results, BulkResult{Item: e.Item, Success: true, Result: row})
		}
		return map[string]interface{}{"message": "Bulk update completed", "results": results}, nil

	case command.ClearCategory:
		removed, err := s.inventory.ClearCategory(ctx, userID, in.Category)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"message":      fmt.Sprintf("Cleared %d items from %s category", len(removed), in.Category),
			"removedItems": removed,
		}, nil

	case command.FindRecipesByIngredients:
		items := make([]string, len(in.Ingredients))
		for i, ing := range in.Ingredients {
			items[i] = ing.Item
		}
		recipes, err := s.recipes.FindByIngredients(ctx, items)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"message": fmt.Sprintf("Found %d recipes you can make", len(recipes)),
			"recipes": recipes,
		}, nil

	case command.Search:
		return s.recipes.Search(ctx, RecipeQuery{Text: in.Search})

	case command.CreateRecipe:
		recipe := &models.Recipe{Name: in.Name, Instructions: models.JSONBStringArray(in.Instructions)}
		for _, ing := range in.Ingredients {
			recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
				Item:     ing.Item,
				Quantity: float64(ing.Quantity),
				Unit:     ing.Unit,
			})
		}
		return s.recipes.Create(ctx, userID, recipe)

	case command.DeleteRecipe:
		recipe, err := s.recipes.DeleteByName(ctx, in.Name)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"message": "Recipe deleted successfully", "recipe": recipe}, nil

	case command.CheckRecipeAvailability:
		stock, err := s.stock(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.recipes.Availability(ctx, in.Name, stock)

	case command.PlanRecipe:
		recipe, err := s.recipes.GetByName(ctx, in.Name)
		if err != nil {
			return nil, err
		}
		return s.mealPlans.PlanRecipe(ctx, userID, recipe, in.Date)

	case command.FindSubstitutes:
		if s.ai == nil {
			return nil, ErrAIUnavailable
		}
		subs, err := s.ai.Substitutions(ctx, in.Ingredient)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"ingredient": in.Ingredient, "substitutions": subs}, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedIntent, intent)
}

func (s *CommandService) stock(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	items, err := s.inventory.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	stock := make(map[string]int, len(items))
	for _, it := range items {
		stock[it.Name] = it.Quantity
	}
	return stock, nil
}

// IsNotRecognized reports whether err means no interpretation rule matched.
func IsNotRecognized(err error) bool {
	return errors.Is(err, command.ErrCommandNotRecognized)
}
