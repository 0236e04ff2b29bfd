package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := service.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMealPlanService_CRUD(t *testing.T) {
	env := setupEnv(t)
	plans := service.NewMealPlanService(env.db, env.inventory, nil, nil)
	ctx := context.Background()

	plan, err := plans.Create(ctx, env.userID, &models.MealPlan{
		Name:      "Week 1",
		StartDate: day("2024-03-11"),
		EndDate:   day("2024-03-17"),
		Meals:     models.PlannedMealList{{Name: "Pancakes"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", plan.Meals[0].Date)

	got, err := plans.Get(ctx, env.userID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Week 1", got.Name)

	_, err = plans.Get(ctx, uuid.New(), plan.ID)
	assert.ErrorIs(t, err, service.ErrMealPlanNotFound)

	updated, err := plans.Update(ctx, env.userID, plan.ID, &models.MealPlan{
		Name:      "Week One",
		StartDate: day("2024-03-11"),
		EndDate:   day("2024-03-18"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Week One", updated.Name)
	assert.Equal(t, "2024-03-18", updated.EndDate.Format("2006-01-02"))
	assert.Empty(t, updated.Meals)

	require.NoError(t, plans.Delete(ctx, env.userID, plan.ID))
	assert.ErrorIs(t, plans.Delete(ctx, env.userID, plan.ID), service.ErrMealPlanNotFound)
}

func TestMealPlanService_Validation(t *testing.T) {
	env := setupEnv(t)
	plans := service.NewMealPlanService(env.db, env.inventory, nil, nil)

	tests := []struct {
		name string
		plan models.MealPlan
	}{
		{"no name", models.MealPlan{StartDate: day("2024-03-11"), EndDate: day("2024-03-12")}},
		{"no start", models.MealPlan{Name: "x", EndDate: day("2024-03-12")}},
		{"end before start", models.MealPlan{Name: "x", StartDate: day("2024-03-12"), EndDate: day("2024-03-11")}},
		{"bad meal date", models.MealPlan{Name: "x", StartDate: day("2024-03-11"), EndDate: day("2024-03-12"),
			Meals: models.PlannedMealList{{Name: "Soup", Date: "12/03/2024"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.plan
			_, err := plans.Create(context.Background(), env.userID, &p)
			require.Error(t, err)
			assert.True(t, service.IsValidation(err))
		})
	}

	_, err := service.ParseDate("tomorrow")
	assert.True(t, service.IsValidation(err))
}

func TestMealPlanService_List(t *testing.T) {
	env := setupEnv(t)
	plans := service.NewMealPlanService(env.db, env.inventory, nil, nil)
	ctx := context.Background()

	for _, p := range []struct{ name, start string }{
		{"Spring Week", "2024-03-18"},
		{"Busy Week", "2024-03-11"},
		{"Holiday", "2024-03-25"},
	} {
		_, err := plans.Create(ctx, env.userID, &models.MealPlan{Name: p.name, StartDate: day(p.start), EndDate: day(p.start).AddDate(0, 0, 6)})
		require.NoError(t, err)
	}

	page, err := plans.List(ctx, env.userID, service.MealPlanFilter{SortBy: "start_date"})
	require.NoError(t, err)
	require.Len(t, page.MealPlans, 3)
	assert.Equal(t, "Busy Week", page.MealPlans[0].Name)
	assert.Equal(t, "Holiday", page.MealPlans[2].Name)

	page, err = plans.List(ctx, env.userID, service.MealPlanFilter{NameContains: "week", SortBy: "name", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, page.MealPlans, 2)
	assert.Equal(t, "Spring Week", page.MealPlans[0].Name)

	start := day("2024-03-25")
	page, err = plans.List(ctx, env.userID, service.MealPlanFilter{StartDate: &start})
	require.NoError(t, err)
	require.Len(t, page.MealPlans, 1)
	assert.Equal(t, "Holiday", page.MealPlans[0].Name)

	page, err = plans.List(ctx, env.userID, service.MealPlanFilter{Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.MealPlans, 1)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestMealPlanService_PlanRecipe(t *testing.T) {
	env := setupEnv(t)
	plans := service.NewMealPlanService(env.db, env.inventory, nil, nil)
	ctx := context.Background()
	soup := env.recipe(t, "Soup", ing("tomato", 3, ""))

	week, err := plans.Create(ctx, env.userID, &models.MealPlan{Name: "Week", StartDate: day("2024-03-11"), EndDate: day("2024-03-17")})
	require.NoError(t, err)

	local := time.Date(2024, 3, 14, 0, 0, 0, 0, time.FixedZone("EST", -5*3600))
	plan, err := plans.PlanRecipe(ctx, env.userID, soup, local)
	require.NoError(t, err)
	assert.Equal(t, week.ID, plan.ID)
	require.Len(t, plan.Meals, 1)
	assert.Equal(t, "2024-03-14", plan.Meals[0].Date)
	assert.Equal(t, soup.ID, *plan.Meals[0].RecipeID)

	outside, err := plans.PlanRecipe(ctx, env.userID, soup, day("2024-04-01"))
	require.NoError(t, err)
	assert.NotEqual(t, week.ID, outside.ID)
	assert.Equal(t, "2024-04-01", outside.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2024-04-01", outside.EndDate.Format("2006-01-02"))
}

func TestMealPlanService_AutoGenerate(t *testing.T) {
	t.Run("no ingredients", func(t *testing.T) {
		env := setupEnv(t)
		plans := service.NewMealPlanService(env.db, env.inventory, &fakeAI{}, nil)
		_, err := plans.AutoGenerate(context.Background(), env.userID, service.AutoGenerateOptions{})
		assert.ErrorIs(t, err, service.ErrNoIngredients)
	})

	t.Run("from suggestions", func(t *testing.T) {
		env := setupEnv(t)
		env.stock(t, "eggs", 6, "")
		env.stock(t, "flour", 2, "cups")
		ai := &fakeAI{suggestions: []service.MealSuggestion{{Name: "Pancakes"}, {Name: "Crepes"}, {Name: "Pasta"}}}
		plans := service.NewMealPlanService(env.db, env.inventory, ai, nil)

		plan, err := plans.AutoGenerate(context.Background(), env.userID, service.AutoGenerateOptions{
			Start: day("2024-03-11"),
			End:   day("2024-03-12"),
		})
		require.NoError(t, err)
		assert.Equal(t, "AI Generated Meal Plan", plan.Name)
		assert.Equal(t, []string{"eggs", "flour"}, ai.lastInput)
		require.Len(t, plan.Meals, 3)
		assert.Equal(t, "2024-03-11", plan.Meals[0].Date)
		assert.Equal(t, "2024-03-12", plan.Meals[1].Date)
		assert.Equal(t, "2024-03-11", plan.Meals[2].Date)
	})

	t.Run("ai failure yields empty plan", func(t *testing.T) {
		env := setupEnv(t)
		env.stock(t, "eggs", 6, "")
		plans := service.NewMealPlanService(env.db, env.inventory, &fakeAI{err: errors.New("boom")}, nil)

		plan, err := plans.AutoGenerate(context.Background(), env.userID, service.AutoGenerateOptions{Name: "Fallback"})
		require.NoError(t, err)
		assert.Equal(t, "Fallback", plan.Name)
		assert.Empty(t, plan.Meals)
		assert.Equal(t, 7, int(plan.EndDate.Sub(plan.StartDate).Hours()/24))
	})
}
