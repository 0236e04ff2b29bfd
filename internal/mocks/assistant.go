// Package mocks holds testify mocks of the service interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealplanner/backend/internal/service"
)

// MockAssistant is a mock implementation of service.Assistant
type MockAssistant struct {
	mock.Mock
}

var _ service.Assistant = (*MockAssistant)(nil)

func (m *MockAssistant) MealSuggestions(ctx context.Context, ingredients []string) ([]service.MealSuggestion, error) {
	args := m.Called(ctx, ingredients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.MealSuggestion), args.Error(1)
}

func (m *MockAssistant) Substitutions(ctx context.Context, ingredient string) ([]service.Substitution, error) {
	args := m.Called(ctx, ingredient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.Substitution), args.Error(1)
}

func (m *MockAssistant) AnalyzeImage(ctx context.Context, image []byte, contentType string) ([]service.DetectedItem, error) {
	args := m.Called(ctx, image, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DetectedItem), args.Error(1)
}

func (m *MockAssistant) RecipeInstructions(ctx context.Context, name string, ingredients []string) ([]string, error) {
	args := m.Called(ctx, name, ingredients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAssistant) Chat(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

// MockObjectStore is a mock implementation of service.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

var _ service.ObjectStore = (*MockObjectStore)(nil)

func (m *MockObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}
