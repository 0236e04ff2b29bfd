// Package models holds the gorm-mapped persistence types.
package models

// All lists every model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&InventoryItem{},
		&Recipe{},
		&MealPlan{},
		&ShoppingListItem{},
	}
}
