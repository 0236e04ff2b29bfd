package service

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound         = errors.New("item not found")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrRecipeExists         = errors.New("a recipe with this name already exists")
	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrMealPlanNotFound     = errors.New("meal plan not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrNoIngredients        = errors.New("no ingredients available")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrUnsupportedIntent    = errors.New("unsupported intent")
	ErrAIUnavailable        = errors.New("ai service is not configured")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
