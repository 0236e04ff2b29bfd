package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/database"
	"github.com/pageza/mealplanner/backend/internal/logger"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/service"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed recipes.yaml
var defaultRecipes []byte

const (
	seedEmail    = "seed@example.com"
	seedPassword = "seed-password"
)

type recipeData struct {
	Name         string                    `yaml:"name"`
	Description  string                    `yaml:"description"`
	Category     string                    `yaml:"category"`
	PrepTime     int                       `yaml:"prep_time"`
	Servings     int                       `yaml:"servings"`
	Ingredients  []models.RecipeIngredient `yaml:"ingredients"`
	Instructions []string                  `yaml:"instructions"`
}

func main() {
	file := flag.String("file", "", "YAML file with recipes to seed (defaults to the built-in set)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	data := defaultRecipes
	if *file != "" {
		if data, err = os.ReadFile(*file); err != nil {
			zl.Fatal("failed to read recipe file", zap.Error(err))
		}
	}
	var recipes []recipeData
	if err := yaml.Unmarshal(data, &recipes); err != nil {
		zl.Fatal("failed to parse recipes", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	owner, err := auth.Register(ctx, seedEmail, seedPassword, "Seed User", nil)
	if errors.Is(err, service.ErrUserExists) {
		owner, _, err = auth.Login(ctx, seedEmail, seedPassword)
	}
	if err != nil {
		zl.Fatal("failed to prepare seed user", zap.Error(err))
	}

	svc := service.NewRecipeService(db, service.LetterEmbedder{})
	created := 0
	for _, rd := range recipes {
		recipe := &models.Recipe{
			Name:         rd.Name,
			Description:  rd.Description,
			Category:     rd.Category,
			PrepTime:     rd.PrepTime,
			Servings:     rd.Servings,
			Ingredients:  models.IngredientList(rd.Ingredients),
			Instructions: models.JSONBStringArray(rd.Instructions),
		}
		if _, err := svc.Create(ctx, owner.ID, recipe); err != nil {
			if errors.Is(err, service.ErrRecipeExists) {
				zl.Info("recipe already present", zap.String("name", rd.Name))
				continue
			}
			zl.Error("failed to save recipe", zap.String("name", rd.Name), zap.Error(err))
			continue
		}
		created++
		zl.Info("created recipe", zap.String("name", recipe.Name))
	}

	fmt.Printf("Seeded %d of %d recipes\n", created, len(recipes))
}
