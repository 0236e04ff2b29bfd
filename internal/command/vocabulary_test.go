package command_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabularyCategories(t *testing.T) {
	v := command.DefaultVocabulary()

	assert.Equal(t, []string{"dairy", "meat", "pantry", "produce"}, v.CategoryNames())
	assert.True(t, v.InCategory("dairy", "Cheddar Cheese"))
	assert.True(t, v.InCategory("Meat", "chicken breast"))
	assert.False(t, v.InCategory("dairy", "flour"))
	assert.False(t, v.InCategory("frozen", "peas"))
}

func TestParseVocabularyOverridesTables(t *testing.T) {
	v, err := command.ParseVocabulary([]byte(`
ingredient_units: [Clove, cup]
inventory_units: [tins, tin]
categories:
  Canned: [beans, tuna]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"clove", "cup"}, v.IngredientUnits)
	assert.Equal(t, []string{"canned"}, v.CategoryNames())
	assert.True(t, v.InCategory("canned", "tuna chunks"))

	in := command.New(command.WithVocabulary(v))

	got, err := in.Interpret("add 2 tins beans")
	require.NoError(t, err)
	assert.Equal(t, command.AddToInventory{Item: "beans", Quantity: 2, Unit: "tins"}, got)

	got, err = in.Interpret("what can i make with 2 cloves garlic")
	require.NoError(t, err)
	assert.Equal(t, command.FindRecipesByIngredients{Ingredients: []command.ParsedIngredient{
		{Item: "garlic", Quantity: 2, Unit: "clove"},
	}}, got)
}

func TestParseVocabularyKeepsMissingTables(t *testing.T) {
	v, err := command.ParseVocabulary([]byte("inventory_units: [jar]\n"))
	require.NoError(t, err)

	defaults := command.DefaultVocabulary()
	assert.Equal(t, []string{"jar"}, v.InventoryUnits)
	assert.Equal(t, defaults.IngredientUnits, v.IngredientUnits)
	assert.Equal(t, defaults.Categories, v.Categories)
}

func TestParseVocabularyInvalid(t *testing.T) {
	_, err := command.ParseVocabulary([]byte("categories: [not, a, map]"))
	assert.Error(t, err)
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inventory_units: [bags]\n"), 0o600))

	v, err := command.LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bags"}, v.InventoryUnits)

	_, err = command.LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
