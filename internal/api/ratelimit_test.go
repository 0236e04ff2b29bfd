package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
)

func TestAIRateLimit(t *testing.T) {
	client, _ := testhelpers.SetupRedis(t)
	limiter := middleware.NewAIRateLimiter(client, 2, time.Hour, zap.NewNop())
	s := setupServerWithLimiter(t, client, limiter)
	token := s.register(t, "limited@example.com")

	s.ai.On("Substitutions", mock.Anything, "butter").Return([]service.Substitution{{Name: "olive oil"}}, nil)

	w := s.do(http.MethodGet, "/api/v1/rate-limits/ai", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode(t, w)
	assert.EqualValues(t, 2, status["limit"])
	assert.EqualValues(t, 2, status["remaining"])
	assert.Equal(t, "1h0m0s", status["window"])

	for i := 0; i < 2; i++ {
		w = s.do(http.MethodGet, "/api/v1/suggestions/substitutions/butter", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = s.do(http.MethodGet, "/api/v1/suggestions/substitutions/butter", nil, token)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = s.do(http.MethodGet, "/api/v1/rate-limits/ai", nil, token)
	assert.EqualValues(t, 0, decode(t, w)["remaining"])

	// Quotas are per user.
	other := s.register(t, "fresh@example.com")
	w = s.do(http.MethodGet, "/api/v1/suggestions/substitutions/butter", nil, other)
	assert.Equal(t, http.StatusOK, w.Code)
}
