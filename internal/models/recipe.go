package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// RecipeIngredient is one line of a recipe's ingredient list.
type RecipeIngredient struct {
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

type Recipe struct {
	ID           uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`
	UserID       uuid.UUID        `gorm:"type:varchar(36);index" json:"user_id"`
	Name         string           `gorm:"size:100;not null;index" json:"name"`
	Description  string           `gorm:"type:text" json:"description"`
	Category     string           `gorm:"size:50" json:"category"`
	Ingredients  IngredientList   `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	PrepTime     int              `json:"prep_time,omitempty"`
	Servings     int              `json:"servings,omitempty"`
	Embedding    *pgvector.Vector `gorm:"type:vector(3)" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IngredientNames returns the lower-cased ingredient item names.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		names[i] = ing.Item
	}
	return names
}
