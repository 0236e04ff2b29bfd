package command

import "strings"

var (
	recipeSuggestions = []string{
		"create recipe for [name] with [ingredients] instructions: [steps]",
		"find recipes with [ingredient]",
		"delete recipe [name]",
		"what can I make with [ingredients]",
	}
	inventorySuggestions = []string{
		"add [quantity] [item] to inventory",
		"check inventory",
		"remove [quantity] [item]",
		"clear all [category] from inventory",
	}
)

// Suggestions returns usage hints for a command that could not be interpreted.
// Recipe hints are returned when the text mentions "recipe", inventory hints
// when it mentions "inventory" or "stock".
func Suggestions(command string) []string {
	cmd := strings.ToLower(command)
	out := []string{}
	if strings.Contains(cmd, "recipe") {
		out = append(out, recipeSuggestions...)
	}
	if strings.Contains(cmd, "inventory") || strings.Contains(cmd, "stock") {
		out = append(out, inventorySuggestions...)
	}
	return out
}
