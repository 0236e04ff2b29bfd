package service

import (
	"context"
)

// MealSuggester proposes recipes for a set of ingredients.
type MealSuggester interface {
	MealSuggestions(ctx context.Context, ingredients []string) ([]MealSuggestion, error)
}

// Substituter suggests replacements for an ingredient.
type Substituter interface {
	Substitutions(ctx context.Context, ingredient string) ([]Substitution, error)
}

// ImageAnalyzer recognises food items in a photo.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, contentType string) ([]DetectedItem, error)
}

// ObjectStore persists uploaded files and returns a URL to read them back.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Assistant is the full set of AI operations the HTTP layer exposes.
// *AIService implements it.
type Assistant interface {
	MealSuggester
	Substituter
	ImageAnalyzer
	RecipeInstructions(ctx context.Context, name string, ingredients []string) ([]string, error)
	Chat(ctx context.Context, message string) (string, error)
}

var _ Assistant = (*AIService)(nil)
