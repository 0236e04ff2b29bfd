package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingList(t *testing.T) {
	s := setupServer(t)
	token := s.register(t, "shop@example.com")

	w := s.do(http.MethodPost, "/api/v1/shopping-list/add", map[string]interface{}{"items": []map[string]interface{}{
		{"ingredient": "Milk", "quantity": 1, "unit": "l"},
		{"ingredient": "milk", "quantity": 2, "unit": "l"},
		{"ingredient": "bread"},
	}}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := decode(t, w)["items"].([]interface{})
	require.Len(t, items, 2)
	assert.EqualValues(t, 3, items[1].(map[string]interface{})["quantity"])

	w = s.do(http.MethodPost, "/api/v1/shopping-list/remove", map[string]interface{}{"items": []map[string]interface{}{
		{"ingredient": "bread"},
	}}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	w = s.do(http.MethodDelete, "/api/v1/shopping-list", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/v1/shopping-list", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["items"])
}

func TestShoppingListGenerate(t *testing.T) {
	s := setupServer(t)
	token := s.register(t, "gen@example.com")

	w := s.do(http.MethodPost, "/api/v1/recipes", recipeBody("Pancakes", ingredient("flour", 3, "cup"), ingredient("egg", 2, "")), token)
	require.Equal(t, http.StatusCreated, w.Code)
	recipeID := decode(t, w)["id"].(string)
	s.do(http.MethodPost, "/api/v1/inventory/add", map[string]interface{}{"item": "flour", "quantity": 1, "unit": "cup"}, token)

	w = s.do(http.MethodPost, "/api/v1/shopping-list/generate", map[string]interface{}{"recipe_ids": []string{"nope"}}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/shopping-list/generate", map[string]interface{}{
		"recipe_ids": []string{recipeID},
		"save":       true,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := decode(t, w)["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, map[string]interface{}{"ingredient": "egg", "quantity": float64(2)}, items[0])
	assert.Equal(t, map[string]interface{}{"ingredient": "flour", "quantity": float64(2), "unit": "cup"}, items[1])

	w = s.do(http.MethodGet, "/api/v1/shopping-list", nil, token)
	assert.Len(t, decode(t, w)["items"], 2)
}
