package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingListItem is one line of a user's shopping list. Ingredient and unit
// together identify a line.
type ShoppingListItem struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     uuid.UUID `gorm:"type:varchar(36);not null;index" json:"-"`
	Ingredient string    `gorm:"size:100;not null" json:"ingredient"`
	Quantity   float64   `gorm:"not null" json:"quantity"`
	Unit       string    `gorm:"size:20" json:"unit,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *ShoppingListItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
