package command

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the content tables the interpreter and its callers match
// against. None of it is control flow; it can be replaced from a YAML file.
type Vocabulary struct {
	// IngredientUnits are singular unit words recognised inside ingredient
	// lists. The plural form (trailing "s") is accepted as well.
	IngredientUnits []string `yaml:"ingredient_units"`
	// InventoryUnits are the unit words stripped from add/bulk-add items,
	// checked in order.
	InventoryUnits []string `yaml:"inventory_units"`
	// Categories maps an inventory category to the keywords identifying its items.
	Categories map[string][]string `yaml:"categories"`
}

// DefaultVocabulary returns the built-in tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		IngredientUnits: []string{"cup", "tbsp", "tsp", "g", "oz", "ml", "piece", "whole"},
		InventoryUnits: []string{
			"cups", "cup", "grams", "gram", "g", "kg", "oz",
			"pounds", "pound", "lb", "lbs", "pieces", "piece",
		},
		Categories: map[string][]string{
			"dairy":   {"milk", "cheese", "yogurt", "cream", "butter"},
			"meat":    {"chicken", "beef", "pork", "fish", "meat"},
			"produce": {"fruit", "vegetable", "tomato", "lettuce", "carrot", "onion"},
			"pantry":  {"flour", "sugar", "rice", "pasta", "oil"},
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file. Tables absent from the file keep
// their defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes a YAML vocabulary document over the defaults.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var file Vocabulary
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Vocabulary{}, fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	v := DefaultVocabulary()
	if len(file.IngredientUnits) > 0 {
		v.IngredientUnits = normalizeWords(file.IngredientUnits)
	}
	if len(file.InventoryUnits) > 0 {
		v.InventoryUnits = normalizeWords(file.InventoryUnits)
	}
	if len(file.Categories) > 0 {
		v.Categories = make(map[string][]string, len(file.Categories))
		for name, keywords := range file.Categories {
			v.Categories[strings.ToLower(strings.TrimSpace(name))] = normalizeWords(keywords)
		}
	}
	return v, nil
}

// CategoryNames returns the known categories in sorted order.
func (v Vocabulary) CategoryNames() []string {
	names := make([]string, 0, len(v.Categories))
	for name := range v.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InCategory reports whether an item name belongs to the category. Unknown
// categories match nothing.
func (v Vocabulary) InCategory(category, item string) bool {
	keywords, ok := v.Categories[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return false
	}
	item = strings.ToLower(item)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(item, kw) {
			return true
		}
	}
	return false
}

func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
