package service

import (
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/pageza/mealplanner/backend/internal/models"
)

// EmbeddingDimensions matches the vector column of the recipes table.
const EmbeddingDimensions = 3

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(text string) (pgvector.Vector, error)
}

// LetterEmbedder is a deterministic embedding built from the total length,
// vowel count and consonant count of the text.
type LetterEmbedder struct{}

func (LetterEmbedder) Embed(text string) (pgvector.Vector, error) {
	return GenerateEmbedding(text), nil
}

// GenerateEmbedding returns a simple deterministic embedding for the given text.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var vowels, consonants float32
	for _, r := range text {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		} else if r >= 'a' && r <= 'z' {
			consonants++
		}
	}
	return pgvector.NewVector([]float32{float32(len(text)), vowels, consonants})
}

// embeddingText is the text a recipe is indexed by.
func embeddingText(r *models.Recipe) string {
	return r.Name + " " + strings.Join(r.IngredientNames(), " ")
}
