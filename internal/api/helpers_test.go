package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/cache"
	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/mocks"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Wednesday afternoon.
var testClock = func() time.Time { return time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC) }

type testServer struct {
	router *gin.Engine
	auth   *service.AuthService
	ai     *mocks.MockAssistant
}

func setupServer(t *testing.T) *testServer {
	return setupServerWithRedis(t, nil)
}

func setupServerWithRedis(t *testing.T, client *redis.Client) *testServer {
	t.Helper()
	return setupServerWithLimiter(t, client, nil)
}

func setupServerWithLimiter(t *testing.T, client *redis.Client, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	db := testhelpers.SetupSQLite(t)
	logger := zap.NewNop()
	ai := &mocks.MockAssistant{}

	vocab := command.DefaultVocabulary()
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	inventory := service.NewInventoryService(db, vocab)
	recipes := service.NewRecipeService(db, nil)
	mealPlans := service.NewMealPlanService(db, inventory, ai, logger)
	interp := command.New(command.WithVocabulary(vocab), command.WithClock(testClock))

	deps := Dependencies{
		Auth:         auth,
		Inventory:    inventory,
		Recipes:      recipes,
		MealPlans:    mealPlans,
		ShoppingList: service.NewShoppingListService(db, inventory, recipes),
		Suggestions:  service.NewSuggestionService(inventory, recipes, ai, logger),
		Images:       service.NewImageService(nil, ai, inventory, logger),
		Commands:     service.NewCommandService(interp, inventory, recipes, mealPlans, ai, logger),
		AI:           ai,
		Cache:        middleware.NewResponseCache(cache.New(client, 5*time.Minute), logger),
		AILimiter:    limiter,
		Logger:       logger,
	}

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), deps)
	return &testServer{router: router, auth: auth, ai: ai}
}

// register creates a user and returns its bearer token.
func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"email":    email,
		"password": "secret123",
		"name":     "Test User",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

// do performs a JSON request, authenticated when token is set.
func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func recipeBody(name string, ingredients ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":         name,
		"ingredients":  ingredients,
		"instructions": []string{"Mix everything", "Cook until done"},
	}
}

func ingredient(item string, qty float64, unit string) map[string]interface{} {
	return map[string]interface{}{"item": item, "quantity": qty, "unit": unit}
}
