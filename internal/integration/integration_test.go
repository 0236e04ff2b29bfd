// Package integration drives the full HTTP stack against PostgreSQL.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/api"
	"github.com/pageza/mealplanner/backend/internal/cache"
	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/server"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
)

type stack struct {
	handler http.Handler
	token   string
}

func setupStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupPostgres(t)
	redisClient, _ := testhelpers.SetupRedis(t)
	logger := zap.NewNop()

	cfg := &config.Config{Environment: config.Test, JWTSecret: "integration-secret"}
	vocab := command.DefaultVocabulary()
	auth := service.NewAuthService(db, cfg.JWTSecret, time.Hour)
	inventory := service.NewInventoryService(db, vocab)
	recipes := service.NewRecipeService(db, service.LetterEmbedder{})
	mealPlans := service.NewMealPlanService(db, inventory, nil, logger)

	deps := api.Dependencies{
		Auth:         auth,
		Inventory:    inventory,
		Recipes:      recipes,
		MealPlans:    mealPlans,
		ShoppingList: service.NewShoppingListService(db, inventory, recipes),
		Commands:     service.NewCommandService(command.New(command.WithVocabulary(vocab)), inventory, recipes, mealPlans, nil, logger),
		Cache:        middleware.NewResponseCache(cache.New(redisClient, time.Minute), logger),
		AILimiter:    middleware.NewAIRateLimiter(redisClient, 5, time.Minute, logger),
		Logger:       logger,
	}
	s := &stack{handler: server.New(cfg, db, redisClient, deps, logger).Handler()}

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"email": "cook@example.com", "password": "secret123", "name": "Cook",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	s.token = registered.Token
	return s
}

func (s *stack) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *stack) command(t *testing.T, text string) map[string]interface{} {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/commands", map[string]string{"command": text})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCommandFlowOnPostgres(t *testing.T) {
	s := setupStack(t)

	s.command(t, "add 3 eggs to inventory")
	s.command(t, "add 2 tomatoes to inventory")

	created := s.command(t, "create recipe for shakshuka with 2 eggs and 2 tomatoes instructions: simmer tomatoes, poach eggs")
	assert.Equal(t, "create", created["action"])

	avail := s.command(t, "can I make shakshuka")
	assert.Equal(t, "checkRecipeAvailability", avail["action"])
	result := avail["result"].(map[string]interface{})
	assert.Equal(t, true, result["canMake"])

	w := s.do(t, http.MethodGet, "/api/v1/recipes?q=shakshuka", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "shakshuka")

	s.command(t, "remove 3 eggs")
	w = s.do(t, http.MethodGet, "/api/v1/inventory/eggs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInventoryCacheOnPostgres(t *testing.T) {
	s := setupStack(t)

	w := s.do(t, http.MethodGet, "/api/v1/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = s.do(t, http.MethodGet, "/api/v1/inventory", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = s.do(t, http.MethodPost, "/api/v1/inventory/add", map[string]interface{}{"item": "rice", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/inventory", nil)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Contains(t, w.Body.String(), "rice")
}

func TestHealthOnPostgres(t *testing.T) {
	s := setupStack(t)
	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}
