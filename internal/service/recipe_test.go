package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeService_Create(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	r := env.recipe(t, " Pancakes ", ing("Flour", 2, "Cups"), ing("eggs", 2, ""))
	assert.Equal(t, "Pancakes", r.Name)
	assert.Equal(t, env.userID, r.UserID)
	assert.Equal(t, "flour", r.Ingredients[0].Item)
	assert.Equal(t, "cups", r.Ingredients[0].Unit)
	require.NotNil(t, r.Embedding)
	assert.Len(t, r.Embedding.Slice(), service.EmbeddingDimensions)

	got, err := env.recipes.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"flour", "eggs"}, got.IngredientNames())
	assert.Equal(t, []string{"Mix everything", "Cook until done"}, []string(got.Instructions))

	t.Run("duplicate name", func(t *testing.T) {
		_, err := env.recipes.Create(ctx, env.userID, &models.Recipe{
			Name:         "PANCAKES",
			Ingredients:  models.IngredientList{ing("milk", 1, "")},
			Instructions: models.JSONBStringArray{"Pour"},
		})
		assert.ErrorIs(t, err, service.ErrRecipeExists)
	})
}

func TestRecipeService_Validation(t *testing.T) {
	env := setupEnv(t)
	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name   string
		recipe models.Recipe
	}{
		{"no name", models.Recipe{Ingredients: models.IngredientList{ing("egg", 1, "")}, Instructions: models.JSONBStringArray{"Boil"}}},
		{"bad name", models.Recipe{Name: "Eggs & Ham", Ingredients: models.IngredientList{ing("egg", 1, "")}, Instructions: models.JSONBStringArray{"Boil"}}},
		{"no ingredients", models.Recipe{Name: "Eggs", Instructions: models.JSONBStringArray{"Boil"}}},
		{"zero quantity", models.Recipe{Name: "Eggs", Ingredients: models.IngredientList{ing("egg", 0, "")}, Instructions: models.JSONBStringArray{"Boil"}}},
		{"blank item", models.Recipe{Name: "Eggs", Ingredients: models.IngredientList{ing(" ", 1, "")}, Instructions: models.JSONBStringArray{"Boil"}}},
		{"no instructions", models.Recipe{Name: "Eggs", Ingredients: models.IngredientList{ing("egg", 1, "")}}},
		{"empty instruction", models.Recipe{Name: "Eggs", Ingredients: models.IngredientList{ing("egg", 1, "")}, Instructions: models.JSONBStringArray{" "}}},
		{"long instruction", models.Recipe{Name: "Eggs", Ingredients: models.IngredientList{ing("egg", 1, "")}, Instructions: models.JSONBStringArray{string(long)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.recipe
			_, err := env.recipes.Create(context.Background(), env.userID, &r)
			require.Error(t, err)
			assert.True(t, service.IsValidation(err))
		})
	}
}

func TestRecipeService_UpdateDelete(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pancakes := env.recipe(t, "Pancakes", ing("flour", 2, "cups"))
	env.recipe(t, "Omelette", ing("eggs", 3, ""))

	updated, err := env.recipes.Update(ctx, pancakes.ID, &models.Recipe{
		Name:         "Fluffy Pancakes",
		Description:  "Sunday breakfast",
		Ingredients:  models.IngredientList{ing("flour", 3, "cups"), ing("milk", 1, "cup")},
		Instructions: models.JSONBStringArray{"Whisk", "Fry"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Fluffy Pancakes", updated.Name)
	assert.Equal(t, "Sunday breakfast", updated.Description)
	assert.Len(t, updated.Ingredients, 2)

	// Keeping its own name is not a duplicate.
	_, err = env.recipes.Update(ctx, pancakes.ID, updated)
	assert.NoError(t, err)

	_, err = env.recipes.Update(ctx, pancakes.ID, &models.Recipe{
		Name:         "omelette",
		Ingredients:  models.IngredientList{ing("eggs", 1, "")},
		Instructions: models.JSONBStringArray{"Fry"},
	})
	assert.ErrorIs(t, err, service.ErrRecipeExists)

	_, err = env.recipes.Update(ctx, uuid.New(), updated)
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)

	deleted, err := env.recipes.DeleteByName(ctx, "OMELETTE")
	require.NoError(t, err)
	assert.Equal(t, "Omelette", deleted.Name)

	_, err = env.recipes.GetByName(ctx, "omelette")
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)

	require.NoError(t, env.recipes.Delete(ctx, pancakes.ID))
	assert.ErrorIs(t, env.recipes.Delete(ctx, pancakes.ID), service.ErrRecipeNotFound)
}

func TestRecipeService_Search(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.recipe(t, "Pancakes", ing("flour", 2, "cups"), ing("eggs", 2, ""), ing("milk", 1, "cup"))
	env.recipe(t, "Omelette", ing("eggs", 3, ""), ing("cheese", 1, ""))
	env.recipe(t, "Bread", ing("flour", 4, "cups"), ing("yeast", 1, "tsp"))

	names := func(p *service.RecipePage) []string {
		out := make([]string, len(p.Recipes))
		for i, r := range p.Recipes {
			out[i] = r.Name
		}
		return out
	}

	tests := []struct {
		name  string
		query service.RecipeQuery
		want  []string
	}{
		{"all by name", service.RecipeQuery{}, []string{"Bread", "Omelette", "Pancakes"}},
		{"name desc", service.RecipeQuery{SortBy: "name", SortOrder: "desc"}, []string{"Pancakes", "Omelette", "Bread"}},
		{"name contains", service.RecipeQuery{NameContains: "CAKE"}, []string{"Pancakes"}},
		{"ingredient contains", service.RecipeQuery{Ingredient: "egg"}, []string{"Omelette", "Pancakes"}},
		{"all ingredients", service.RecipeQuery{Ingredients: []string{"flour", "eggs"}}, []string{"Pancakes"}},
		{"text", service.RecipeQuery{Text: "yeast"}, []string{"Bread"}},
		{"page", service.RecipeQuery{Page: 2, Limit: 2}, []string{"Pancakes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.recipes.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(page))
		})
	}

	found, err := env.recipes.FindByIngredients(ctx, []string{"eggs"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestRecipeService_Availability(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.recipe(t, "Pancakes", ing("flour", 2, "cups"), ing("eggs", 2, ""))

	avail, err := env.recipes.Availability(ctx, "pancakes", map[string]int{"flour": 5, "eggs": 1})
	require.NoError(t, err)
	assert.False(t, avail.CanMake)
	require.Len(t, avail.Missing, 1)
	assert.Equal(t, service.MissingIngredient{Item: "eggs", Needed: 2, Available: 1}, avail.Missing[0])

	avail, err = env.recipes.Availability(ctx, "pancakes", map[string]int{"flour": 2, "eggs": 2})
	require.NoError(t, err)
	assert.True(t, avail.CanMake)
	assert.Empty(t, avail.Missing)

	_, err = env.recipes.Availability(ctx, "waffles", nil)
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
}

func TestRecipeService_SearchPostgres(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	recipes := service.NewRecipeService(db, service.LetterEmbedder{})
	ctx := context.Background()
	userID := uuid.New()

	for _, name := range []string{"Tomato Soup", "Tomato Pasta Bake"} {
		_, err := recipes.Create(ctx, userID, &models.Recipe{
			Name:         name,
			Ingredients:  models.IngredientList{ing("tomato", 2, "")},
			Instructions: models.JSONBStringArray{"Cook"},
		})
		require.NoError(t, err)
	}

	page, err := recipes.Search(ctx, service.RecipeQuery{Text: "tomato"})
	require.NoError(t, err)
	require.Len(t, page.Recipes, 2)
	assert.Equal(t, "Tomato Soup", page.Recipes[0].Name)
}
