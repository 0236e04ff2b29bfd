package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPlanName = "AI Generated Meal Plan"
	defaultPlanDays = 7
)

// MealPlanFilter narrows and orders a meal plan listing.
type MealPlanFilter struct {
	NameContains string
	StartDate    *time.Time
	SortBy       string // name, start_date or end_date
	SortOrder    string
	Page         int
	Limit        int
}

type MealPlanPage struct {
	MealPlans  []models.MealPlan `json:"mealPlans"`
	Pagination types.Pagination  `json:"pagination"`
}

// AutoGenerateOptions configures a generated plan. Zero values select a
// default name and a week starting today.
type AutoGenerateOptions struct {
	Name  string
	Start time.Time
	End   time.Time
}

type MealPlanService struct {
	db        *gorm.DB
	inventory *InventoryService
	ai        MealSuggester
	now       func() time.Time
	logger    *zap.Logger
}

// NewMealPlanService creates a meal plan service. ai may be nil.
func NewMealPlanService(db *gorm.DB, inventory *InventoryService, ai MealSuggester, logger *zap.Logger) *MealPlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealPlanService{db: db, inventory: inventory, ai: ai, now: time.Now, logger: logger}
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(command.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalid("date", "must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// calendarDay drops the time of day and location of t.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validateMealPlan(p *models.MealPlan) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("name", "meal plan name must be a non-empty string")
	}
	if len(p.Name) > maxNameLength {
		return invalid("name", "must be at most %d characters", maxNameLength)
	}
	if p.StartDate.IsZero() {
		return invalid("start_date", "start date must be a valid date")
	}
	if p.EndDate.IsZero() {
		return invalid("end_date", "end date must be a valid date")
	}
	p.StartDate = calendarDay(p.StartDate)
	p.EndDate = calendarDay(p.EndDate)
	if p.EndDate.Before(p.StartDate) {
		return invalid("end_date", "end date must not be before start date")
	}
	if p.Meals == nil {
		p.Meals = models.PlannedMealList{}
	}
	for i := range p.Meals {
		meal := &p.Meals[i]
		if strings.TrimSpace(meal.Name) == "" {
			return invalid("meals", "meal %d must have a name", i+1)
		}
		if meal.Date == "" {
			meal.Date = p.StartDate.Format(command.DateLayout)
			continue
		}
		if _, err := ParseDate(meal.Date); err != nil {
			return invalid("meals", "meal %d date must be formatted as YYYY-MM-DD", i+1)
		}
	}
	return nil
}

func (s *MealPlanService) Create(ctx context.Context, userID uuid.UUID, plan *models.MealPlan) (*models.MealPlan, error) {
	if err := validateMealPlan(plan); err != nil {
		return nil, err
	}
	plan.UserID = userID
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to save meal plan: %w", err)
	}
	return plan, nil
}

func (s *MealPlanService) Get(ctx context.Context, userID, id uuid.UUID) (*models.MealPlan, error) {
	var plan models.MealPlan
	if err := s.db.WithContext(ctx).First(&plan, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// List returns one filtered, sorted page of the user's meal plans.
func (s *MealPlanService) List(ctx context.Context, userID uuid.UUID, f MealPlanFilter) (*MealPlanPage, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.NameContains != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(f.NameContains))+"%")
	}

	var plans []models.MealPlan
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}

	if f.StartDate != nil {
		want := calendarDay(*f.StartDate)
		kept := plans[:0]
		for _, p := range plans {
			if calendarDay(p.StartDate).Equal(want) {
				kept = append(kept, p)
			}
		}
		plans = kept
	}
	sortMealPlans(plans, f.SortBy, strings.EqualFold(f.SortOrder, "desc"))

	page := types.NewPagination(f.Page, f.Limit, len(plans))
	start := page.Offset()
	if start > len(plans) {
		start = len(plans)
	}
	end := start + page.Limit
	if end > len(plans) {
		end = len(plans)
	}
	out := make([]models.MealPlan, end-start)
	copy(out, plans[start:end])
	return &MealPlanPage{MealPlans: out, Pagination: page}, nil
}

func sortMealPlans(plans []models.MealPlan, sortBy string, desc bool) {
	less := func(a, b *models.MealPlan) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch sortBy {
	case "name":
		less = func(a, b *models.MealPlan) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "start_date", "startDate":
		less = func(a, b *models.MealPlan) bool { return a.StartDate.Before(b.StartDate) }
	case "end_date", "endDate":
		less = func(a, b *models.MealPlan) bool { return a.EndDate.Before(b.EndDate) }
	}
	sort.SliceStable(plans, func(i, j int) bool {
		if desc {
			return less(&plans[j], &plans[i])
		}
		return less(&plans[i], &plans[j])
	})
}

// Update replaces the name, dates and meals of a plan.
func (s *MealPlanService) Update(ctx context.Context, userID, id uuid.UUID, plan *models.MealPlan) (*models.MealPlan, error) {
	if err := validateMealPlan(plan); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(existing).
		Select("name", "start_date", "end_date", "meals").
		Updates(plan).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save meal plan: %w", err)
	}
	return s.Get(ctx, userID, id)
}

func (s *MealPlanService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.MealPlan{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMealPlanNotFound
	}
	return nil
}

// PlanRecipe adds recipe to the earliest plan covering day, or to a new
// one-day plan when none does.
func (s *MealPlanService) PlanRecipe(ctx context.Context, userID uuid.UUID, recipe *models.Recipe, day time.Time) (*models.MealPlan, error) {
	day = calendarDay(day)
	recipeID := recipe.ID
	meal := models.PlannedMeal{RecipeID: &recipeID, Name: recipe.Name, Date: day.Format(command.DateLayout)}

	var plan *models.MealPlan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plans []models.MealPlan
		if err := tx.Where("user_id = ?", userID).Order("start_date ASC").Find(&plans).Error; err != nil {
			return err
		}
		for i := range plans {
			if plans[i].Covers(day) {
				plan = &plans[i]
				break
			}
		}

		if plan == nil {
			plan = &models.MealPlan{
				UserID:    userID,
				Name:      "Meals for " + day.Format(command.DateLayout),
				StartDate: day,
				EndDate:   day,
				Meals:     models.PlannedMealList{meal},
			}
			return tx.Create(plan).Error
		}

		plan.Meals = append(plan.Meals, meal)
		return tx.Model(plan).Update("meals", plan.Meals).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to plan recipe: %w", err)
	}
	return plan, nil
}

// AutoGenerate builds a plan from suggestions for the user's current
// inventory. A failing suggester yields a plan without meals.
func (s *MealPlanService) AutoGenerate(ctx context.Context, userID uuid.UUID, opts AutoGenerateOptions) (*models.MealPlan, error) {
	items, err := s.inventory.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoIngredients
	}

	if opts.Name == "" {
		opts.Name = defaultPlanName
	}
	if opts.Start.IsZero() {
		opts.Start = s.now()
	}
	opts.Start = calendarDay(opts.Start)
	if opts.End.IsZero() {
		opts.End = opts.Start.AddDate(0, 0, defaultPlanDays)
	}
	opts.End = calendarDay(opts.End)

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}

	var suggestions []MealSuggestion
	if s.ai != nil {
		suggestions, err = s.ai.MealSuggestions(ctx, names)
		if err != nil {
			s.logger.Warn("meal suggestions failed, generating empty plan", zap.Error(err))
			suggestions = nil
		}
	}

	days := int(opts.End.Sub(opts.Start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	meals := models.PlannedMealList{}
	for i, sug := range suggestions {
		if strings.TrimSpace(sug.Name) == "" {
			continue
		}
		meals = append(meals, models.PlannedMeal{
			Name: sug.Name,
			Date: opts.Start.AddDate(0, 0, i%days).Format(command.DateLayout),
		})
	}

	return s.Create(ctx, userID, &models.MealPlan{
		Name:      opts.Name,
		StartDate: opts.Start,
		EndDate:   opts.End,
		Meals:     meals,
	})
}
