package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryItem is a quantity of one named food item held by a user. Names
// are stored lower-cased and are unique per user.
type InventoryItem struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_inventory_user_name" json:"-"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_inventory_user_name" json:"item"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Unit      string    `gorm:"size:20" json:"unit,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
