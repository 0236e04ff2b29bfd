package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	userID    uuid.UUID
	inventory *service.InventoryService
	recipes   *service.RecipeService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	return &testEnv{
		db:        db,
		userID:    uuid.New(),
		inventory: service.NewInventoryService(db, command.DefaultVocabulary()),
		recipes:   service.NewRecipeService(db, nil),
	}
}

func (e *testEnv) stock(t *testing.T, item string, qty int, unit string) {
	t.Helper()
	_, err := e.inventory.Add(context.Background(), e.userID, item, qty, unit)
	require.NoError(t, err)
}

func (e *testEnv) recipe(t *testing.T, name string, ingredients ...models.RecipeIngredient) *models.Recipe {
	t.Helper()
	r, err := e.recipes.Create(context.Background(), e.userID, &models.Recipe{
		Name:         name,
		Ingredients:  ingredients,
		Instructions: models.JSONBStringArray{"Mix everything", "Cook until done"},
	})
	require.NoError(t, err)
	return r
}

func ing(item string, qty float64, unit string) models.RecipeIngredient {
	return models.RecipeIngredient{Item: item, Quantity: qty, Unit: unit}
}

// fakeAI is a scripted MealSuggester and Substituter.
type fakeAI struct {
	mu            sync.Mutex
	suggestions   []service.MealSuggestion
	substitutions []service.Substitution
	err           error
	calls         int
	lastInput     []string
}

func (f *fakeAI) MealSuggestions(_ context.Context, ingredients []string) ([]service.MealSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastInput = ingredients
	return f.suggestions, f.err
}

func (f *fakeAI) Substitutions(_ context.Context, ingredient string) ([]service.Substitution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastInput = []string{ingredient}
	return f.substitutions, f.err
}
