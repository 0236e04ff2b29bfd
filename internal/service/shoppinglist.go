package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
	"gorm.io/gorm"
)

// ShoppingItem is an ingredient still to buy.
type ShoppingItem struct {
	Ingredient string  `json:"ingredient"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit,omitempty"`
}

// ShoppingListService keeps a per-user list of ingredients to buy. A line is
// identified by its lower-cased ingredient and its unit.
type ShoppingListService struct {
	db        *gorm.DB
	inventory *InventoryService
	recipes   *RecipeService
}

// NewShoppingListService creates a shopping list service.
func NewShoppingListService(db *gorm.DB, inventory *InventoryService, recipes *RecipeService) *ShoppingListService {
	return &ShoppingListService{db: db, inventory: inventory, recipes: recipes}
}

func (s *ShoppingListService) List(ctx context.Context, userID uuid.UUID) ([]models.ShoppingListItem, error) {
	items := []models.ShoppingListItem{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("ingredient ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeShoppingItem(it ShoppingItem) (ShoppingItem, error) {
	it.Ingredient = strings.ToLower(strings.TrimSpace(it.Ingredient))
	it.Unit = strings.ToLower(strings.TrimSpace(it.Unit))
	if it.Ingredient == "" {
		return it, invalid("ingredient", "is required")
	}
	if len(it.Ingredient) > maxNameLength {
		return it, invalid("ingredient", "must be at most %d characters", maxNameLength)
	}
	if it.Quantity <= 0 {
		it.Quantity = 1
	}
	return it, nil
}

// Add merges items into the list, summing quantities of matching lines.
func (s *ShoppingListService) Add(ctx context.Context, userID uuid.UUID, items []ShoppingItem) ([]models.ShoppingListItem, error) {
	if len(items) == 0 {
		return nil, invalid("items", "at least one item is required")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, raw := range items {
			it, err := normalizeShoppingItem(raw)
			if err != nil {
				return err
			}
			res := tx.Model(&models.ShoppingListItem{}).
				Where("user_id = ? AND ingredient = ? AND unit = ?", userID, it.Ingredient, it.Unit).
				Update("quantity", gorm.Expr("quantity + ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				continue
			}
			row := models.ShoppingListItem{UserID: userID, Ingredient: it.Ingredient, Quantity: it.Quantity, Unit: it.Unit}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add to shopping list: %w", err)
	}
	return s.List(ctx, userID)
}

// Remove deletes the lines matching items regardless of quantity.
func (s *ShoppingListService) Remove(ctx context.Context, userID uuid.UUID, items []ShoppingItem) ([]models.ShoppingListItem, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, raw := range items {
			it, err := normalizeShoppingItem(raw)
			if err != nil {
				return err
			}
			if err := tx.Where("user_id = ? AND ingredient = ? AND unit = ?", userID, it.Ingredient, it.Unit).
				Delete(&models.ShoppingListItem{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove from shopping list: %w", err)
	}
	return s.List(ctx, userID)
}

func (s *ShoppingListService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ShoppingListItem{}).Error
}

// GenerateFromRecipes totals the ingredients of the given recipes, less what
// the user's inventory already holds, sorted by ingredient. Inventory is
// matched by name and unit and consumed across recipes.
func (s *ShoppingListService) GenerateFromRecipes(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) ([]ShoppingItem, error) {
	stock, err := s.inventory.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	onHand := make(map[string]float64, len(stock))
	for _, it := range stock {
		onHand[lineKey(it.Name, it.Unit)] = float64(it.Quantity)
	}

	needs := map[string]*ShoppingItem{}
	for _, id := range recipeIDs {
		recipe, err := s.recipes.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", id, err)
		}
		for _, ing := range recipe.Ingredients {
			key := lineKey(ing.Item, ing.Unit)
			need := ing.Quantity
			if have := onHand[key]; have > 0 {
				used := need
				if have < used {
					used = have
				}
				onHand[key] = have - used
				need -= used
			}
			if need <= 0 {
				continue
			}
			if n, ok := needs[key]; ok {
				n.Quantity += need
				continue
			}
			needs[key] = &ShoppingItem{
				Ingredient: strings.ToLower(ing.Item),
				Quantity:   need,
				Unit:       strings.ToLower(ing.Unit),
			}
		}
	}

	out := make([]ShoppingItem, 0, len(needs))
	for _, n := range needs {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ingredient != out[j].Ingredient {
			return out[i].Ingredient < out[j].Ingredient
		}
		return out[i].Unit < out[j].Unit
	})
	return out, nil
}

func lineKey(item, unit string) string {
	return strings.ToLower(strings.TrimSpace(item)) + "|" + strings.ToLower(strings.TrimSpace(unit))
}
