package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/api"
	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
)

func newTestServer(t *testing.T, client *redis.Client) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLite(t)
	cfg := &config.Config{
		Environment: config.Test,
		ServerHost:  "127.0.0.1",
		ServerPort:  "0",
		JWTSecret:   "test-secret",
		CORSOrigins: []string{"http://localhost:5173"},
	}
	inventory := service.NewInventoryService(db, command.DefaultVocabulary())
	recipes := service.NewRecipeService(db, nil)
	deps := api.Dependencies{
		Auth:      service.NewAuthService(db, cfg.JWTSecret, time.Hour),
		Inventory: inventory,
		Recipes:   recipes,
		Commands:  service.NewCommandService(command.New(), inventory, recipes, nil, nil, nil),
	}
	return New(cfg, db, client, deps, zap.NewNop())
}

func TestHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	s := newTestServer(t, client)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]interface{}{"database": "ok", "redis": "ok"}, body["checks"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	// Produce at least one request sample.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"email":"m@example.com","password":"secret123","name":"M"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mealplanner_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/inventory", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/inventory", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStartStopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
