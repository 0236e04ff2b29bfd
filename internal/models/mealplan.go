package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlannedMeal places a recipe on a day of a meal plan. RecipeID is nil for
// meals suggested by the assistant that have no stored recipe.
type PlannedMeal struct {
	RecipeID *uuid.UUID `json:"recipe_id,omitempty"`
	Name     string     `json:"name"`
	Date     string     `json:"date"`
	Meal     string     `json:"meal,omitempty"`
}

type MealPlan struct {
	ID        uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"-"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	StartDate time.Time       `gorm:"not null;index" json:"start_date"`
	EndDate   time.Time       `gorm:"not null" json:"end_date"`
	Meals     PlannedMealList `gorm:"type:jsonb;not null;default:'[]'" json:"meals"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p *MealPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Covers reports whether day falls within the plan's date range.
func (p *MealPlan) Covers(day time.Time) bool {
	d := day.Format("2006-01-02")
	return d >= p.StartDate.Format("2006-01-02") && d <= p.EndDate.Format("2006-01-02")
}
