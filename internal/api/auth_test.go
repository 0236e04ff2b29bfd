package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	s := setupServer(t)
	token := s.register(t, "cook@example.com")
	assert.NotEmpty(t, token)

	w := s.do(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"email": "COOK@example.com", "password": "secret123", "name": "Again",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"email": "not-an-email", "password": "secret123", "name": "Bad",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decode(t, w)["field"])

	w = s.do(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email": "cook@example.com", "password": "wrong-pass",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
		"email": "cook@example.com", "password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "cook@example.com", user["email"])
	assert.NotContains(t, user, "PasswordHash")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setupServer(t)

	for _, path := range []string{"/api/v1/users/me", "/api/v1/inventory", "/api/v1/recipes", "/api/v1/mealplans"} {
		w := s.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := s.do(http.MethodGet, "/api/v1/users/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserProfile(t *testing.T) {
	s := setupServer(t)
	token := s.register(t, "me@example.com")

	w := s.do(http.MethodGet, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "me@example.com", decode(t, w)["email"])

	w = s.do(http.MethodPut, "/api/v1/users/me", map[string]interface{}{"name": "Chef"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Chef", decode(t, w)["name"])

	w = s.do(http.MethodPut, "/api/v1/users/me/preferences", map[string]interface{}{"diet": "vegetarian", "spicy": true}, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPut, "/api/v1/users/me/preferences", map[string]interface{}{"spicy": nil}, token)
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decode(t, w)["preferences"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"diet": "vegetarian"}, prefs)
}
