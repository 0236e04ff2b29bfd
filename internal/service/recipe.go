package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxInstructionLength = 500

// RecipeQuery filters a recipe search. All set fields must match.
type RecipeQuery struct {
	// Text is matched against name, description and ingredients. On
	// PostgreSQL results are ordered by embedding similarity to it.
	Text         string
	NameContains string
	Ingredient   string
	// Ingredients must all appear in the recipe.
	Ingredients []string
	SortBy      string // name or date
	SortOrder   string // asc or desc
	Page        int
	Limit       int
}

// RecipePage is one page of search results.
type RecipePage struct {
	Recipes    []models.Recipe  `json:"recipes"`
	Pagination types.Pagination `json:"pagination"`
}

// MissingIngredient is a recipe ingredient the inventory cannot cover.
type MissingIngredient struct {
	Item      string  `json:"item"`
	Needed    float64 `json:"needed"`
	Available int     `json:"available"`
	Unit      string  `json:"unit,omitempty"`
}

// Availability reports whether a recipe can be made from the inventory.
type Availability struct {
	Recipe  *models.Recipe      `json:"recipe"`
	CanMake bool                `json:"canMake"`
	Missing []MissingIngredient `json:"missingIngredients"`
}

// RecipeService handles recipe operations
type RecipeService struct {
	db       *gorm.DB
	embedder Embedder
}

// NewRecipeService creates a recipe service. A nil embedder selects
// LetterEmbedder.
func NewRecipeService(db *gorm.DB, embedder Embedder) *RecipeService {
	if embedder == nil {
		embedder = LetterEmbedder{}
	}
	return &RecipeService{db: db, embedder: embedder}
}

// validateRecipe normalizes the recipe in place.
func validateRecipe(r *models.Recipe) error {
	name := strings.TrimSpace(r.Name)
	if _, err := normalizeName("name", name); err != nil {
		return err
	}
	r.Name = name

	if len(r.Ingredients) == 0 {
		return invalid("ingredients", "at least one ingredient is required")
	}
	for i := range r.Ingredients {
		ing := &r.Ingredients[i]
		ing.Item = strings.ToLower(strings.TrimSpace(ing.Item))
		ing.Unit = strings.ToLower(strings.TrimSpace(ing.Unit))
		if ing.Item == "" {
			return invalid("ingredients", "ingredient %d must have an item", i+1)
		}
		if ing.Quantity <= 0 || ing.Quantity > maxQuantity {
			return invalid("ingredients", "ingredient %d must have a positive quantity", i+1)
		}
	}

	if len(r.Instructions) == 0 {
		return invalid("instructions", "at least one instruction is required")
	}
	for i, step := range r.Instructions {
		step = strings.TrimSpace(step)
		if step == "" {
			return invalid("instructions", "instruction %d is empty", i+1)
		}
		if len(step) > maxInstructionLength {
			return invalid("instructions", "instruction %d must be at most %d characters", i+1, maxInstructionLength)
		}
		r.Instructions[i] = step
	}
	return nil
}

func (s *RecipeService) checkDuplicate(tx *gorm.DB, name string, exclude uuid.UUID) error {
	var count int64
	query := tx.Model(&models.Recipe{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrRecipeExists, name)
	}
	return nil
}

func (s *RecipeService) embed(r *models.Recipe) error {
	vec, err := s.embedder.Embed(embeddingText(r))
	if err != nil {
		return fmt.Errorf("failed to embed recipe: %w", err)
	}
	r.Embedding = &vec
	return nil
}

// Create validates and stores a new recipe owned by userID.
func (s *RecipeService) Create(ctx context.Context, userID uuid.UUID, recipe *models.Recipe) (*models.Recipe, error) {
	if err := validateRecipe(recipe); err != nil {
		return nil, err
	}
	recipe.UserID = userID
	if err := s.embed(recipe); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkDuplicate(tx, recipe.Name, uuid.Nil); err != nil {
			return err
		}
		return tx.Create(recipe).Error
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// Get retrieves a recipe by ID
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// GetByName finds a recipe by case-insensitive name.
func (s *RecipeService) GetByName(ctx context.Context, name string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, name)
		}
		return nil, err
	}
	return &recipe, nil
}

// Update replaces the editable fields of a recipe.
func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, recipe *models.Recipe) (*models.Recipe, error) {
	if err := validateRecipe(recipe); err != nil {
		return nil, err
	}
	if err := s.embed(recipe); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Recipe
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		if err := s.checkDuplicate(tx, recipe.Name, id); err != nil {
			return err
		}
		return tx.Model(&existing).Select(
			"name", "description", "category", "ingredients", "instructions",
			"prep_time", "servings", "embedding",
		).Updates(recipe).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete deletes a recipe
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// DeleteByName deletes the recipe with the given case-insensitive name.
func (s *RecipeService) DeleteByName(ctx context.Context, name string) (*models.Recipe, error) {
	recipe, err := s.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.Delete(ctx, recipe.ID); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Search returns one page of recipes matching q.
func (s *RecipeService) Search(ctx context.Context, q RecipeQuery) (*RecipePage, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if q.NameContains != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(q.NameContains))+"%")
	}

	bySimilarity := false
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		like := "%" + text + "%"
		if s.db.Dialector.Name() == "postgres" {
			query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(ingredients::text) LIKE ?",
				like, like, like)
			if q.SortBy == "" {
				vec, err := s.embedder.Embed(text)
				if err != nil {
					return nil, fmt.Errorf("failed to embed query: %w", err)
				}
				query = query.Clauses(clause.OrderBy{
					Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
				})
				bySimilarity = true
			}
		} else {
			query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(ingredients) LIKE ?",
				like, like, like)
		}
	}

	if !bySimilarity {
		query = query.Order(recipeOrder(q.SortBy, q.SortOrder))
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	// Ingredient filters run on the decoded lists so both dialects agree.
	filtered := recipes[:0]
	for _, r := range recipes {
		if matchesIngredients(&r, q.Ingredient, q.Ingredients) {
			filtered = append(filtered, r)
		}
	}

	page := types.NewPagination(q.Page, q.Limit, len(filtered))
	start := page.Offset()
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + page.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	out := make([]models.Recipe, end-start)
	copy(out, filtered[start:end])
	return &RecipePage{Recipes: out, Pagination: page}, nil
}

func recipeOrder(sortBy, sortOrder string) string {
	dir := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		dir = "DESC"
	}
	if sortBy == "date" {
		return "updated_at " + dir
	}
	return "LOWER(name) " + dir
}

func matchesIngredients(r *models.Recipe, contains string, all []string) bool {
	names := r.IngredientNames()
	if contains = strings.ToLower(strings.TrimSpace(contains)); contains != "" {
		found := false
		for _, n := range names {
			if strings.Contains(n, contains) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, want := range all {
		want = strings.ToLower(strings.TrimSpace(want))
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FindByIngredients returns every recipe that uses all of items, by name.
func (s *RecipeService) FindByIngredients(ctx context.Context, items []string) ([]models.Recipe, error) {
	page, err := s.Search(ctx, RecipeQuery{Ingredients: items, SortBy: "name", Limit: types.MaxLimit})
	if err != nil {
		return nil, err
	}
	return page.Recipes, nil
}

// Availability compares the named recipe's ingredients with stock, keyed by
// lower-cased item name.
func (s *RecipeService) Availability(ctx context.Context, name string, stock map[string]int) (*Availability, error) {
	recipe, err := s.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	missing := []MissingIngredient{}
	for _, ing := range recipe.Ingredients {
		have := stock[strings.ToLower(ing.Item)]
		if float64(have) < ing.Quantity {
			missing = append(missing, MissingIngredient{
				Item:      ing.Item,
				Needed:    ing.Quantity,
				Available: have,
				Unit:      ing.Unit,
			})
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].Item < missing[j].Item })

	return &Availability{Recipe: recipe, CanMake: len(missing) == 0, Missing: missing}, nil
}
