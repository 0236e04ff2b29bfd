package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pageza/mealplanner/backend/internal/mocks"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestImageService_Analyze(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	photo := []byte("\x89PNG fake image")

	store := &mocks.MockObjectStore{}
	store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "uploads/"+env.userID.String()+"/") && strings.HasSuffix(key, ".png")
	}), photo, "image/png").Return("https://bucket.example/photo.png", nil)

	analyzer := &mocks.MockAssistant{}
	analyzer.On("AnalyzeImage", mock.Anything, photo, "image/png").Return([]service.DetectedItem{
		{Name: "apple", Quantity: 3, Unit: "pieces"},
		{Name: "milk", Quantity: 0},
		{Name: "mystery!", Quantity: 1},
	}, nil)

	images := service.NewImageService(store, analyzer, env.inventory, nil)
	result, err := images.Analyze(ctx, env.userID, photo, "image/png; charset=binary", true)
	require.NoError(t, err)
	store.AssertExpectations(t)
	analyzer.AssertExpectations(t)

	assert.Equal(t, "https://bucket.example/photo.png", result.ImageURL)
	assert.Len(t, result.Items, 3)
	assert.Len(t, result.Added, 2)
	assert.Equal(t, []string{"mystery!"}, result.Skipped)

	qty, err := env.inventory.Quantity(ctx, env.userID, "milk")
	require.NoError(t, err)
	assert.Equal(t, 1, qty)
}

func TestImageService_AnalyzeWithoutStore(t *testing.T) {
	env := setupEnv(t)
	analyzer := &mocks.MockAssistant{}
	analyzer.On("AnalyzeImage", mock.Anything, mock.Anything, "image/jpeg").Return([]service.DetectedItem{{Name: "bread", Quantity: 1}}, nil)

	images := service.NewImageService(nil, analyzer, env.inventory, nil)
	result, err := images.Analyze(context.Background(), env.userID, []byte("jpeg"), "image/jpeg", false)
	require.NoError(t, err)
	assert.Empty(t, result.ImageURL)
	assert.Empty(t, result.Added)

	qty, err := env.inventory.Quantity(context.Background(), env.userID, "bread")
	require.NoError(t, err)
	assert.Zero(t, qty)
}

func TestImageService_Rejects(t *testing.T) {
	env := setupEnv(t)
	analyzer := &mocks.MockAssistant{}
	images := service.NewImageService(nil, analyzer, env.inventory, nil)
	ctx := context.Background()

	_, err := images.Analyze(ctx, env.userID, []byte("text"), "text/plain", false)
	assert.True(t, service.IsValidation(err))

	_, err = images.Analyze(ctx, env.userID, nil, "image/png", false)
	assert.True(t, service.IsValidation(err))

	_, err = images.Analyze(ctx, env.userID, make([]byte, service.MaxImageSize+1), "image/png", false)
	assert.True(t, service.IsValidation(err))

	analyzer.On("AnalyzeImage", mock.Anything, mock.Anything, "image/gif").Return(nil, errors.New("vision down"))
	_, err = images.Analyze(ctx, env.userID, []byte("gif"), "image/gif", false)
	assert.EqualError(t, err, "vision down")
}
