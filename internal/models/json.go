package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	*a = JSONBStringArray{}
	return scanJSON(value, a)
}

// JSONMap stores free-form user preferences.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONMap) Scan(value interface{}) error {
	*m = JSONMap{}
	return scanJSON(value, m)
}

// IngredientList is a recipe's ingredient list, stored as JSON.
type IngredientList []RecipeIngredient

func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *IngredientList) Scan(value interface{}) error {
	*l = IngredientList{}
	return scanJSON(value, l)
}

// PlannedMealList is the ordered list of meals in a plan, stored as JSON.
type PlannedMealList []PlannedMeal

func (l PlannedMealList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *PlannedMealList) Scan(value interface{}) error {
	*l = PlannedMealList{}
	return scanJSON(value, l)
}

func scanJSON(value interface{}, dest interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
