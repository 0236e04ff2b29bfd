package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/api"
	"github.com/pageza/mealplanner/backend/internal/cache"
	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/pageza/mealplanner/backend/internal/database"
	"github.com/pageza/mealplanner/backend/internal/logger"
	"github.com/pageza/mealplanner/backend/internal/middleware"
	"github.com/pageza/mealplanner/backend/internal/server"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
	zl.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	} else {
		log.Warn("redis not configured, caching disabled and rate limits kept in memory")
	}

	vocab := command.DefaultVocabulary()
	if cfg.VocabularyPath != "" {
		vocab, err = command.LoadVocabulary(cfg.VocabularyPath)
		if err != nil {
			return err
		}
		log.Info("loaded command vocabulary", zap.String("path", cfg.VocabularyPath))
	}

	ai := service.NewAIService(service.AIConfig{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		VisionModel: cfg.LLMVisionModel,
		Timeout:     cfg.LLMTimeout,
	}, cache.New(redisClient, 24*time.Hour), log)
	if !ai.Enabled() {
		log.Warn("LLM API key not set, AI endpoints will return 503")
	}

	var store service.ObjectStore
	if cfg.S3BucketName != "" {
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return err
		}
		store = service.NewS3Store(s3Config)
	}

	inventory := service.NewInventoryService(db, vocab)
	recipes := service.NewRecipeService(db, service.LetterEmbedder{})
	mealPlans := service.NewMealPlanService(db, inventory, ai, log)
	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)

	deps := api.Dependencies{
		Auth:         authService,
		Inventory:    inventory,
		Recipes:      recipes,
		MealPlans:    mealPlans,
		ShoppingList: service.NewShoppingListService(db, inventory, recipes),
		Suggestions:  service.NewSuggestionService(inventory, recipes, ai, log),
		Images:       service.NewImageService(store, ai, inventory, log),
		Commands: service.NewCommandService(
			command.New(command.WithVocabulary(vocab)),
			inventory, recipes, mealPlans, ai, log,
		),
		AI:        ai,
		Cache:     middleware.NewResponseCache(cache.New(redisClient, cfg.CacheTTL), log),
		AILimiter: middleware.NewAIRateLimiter(redisClient, cfg.RateLimit, cfg.RateLimitWindow, log),
		Logger:    log,
	}

	return server.New(cfg, db, redisClient, deps, log).Start(ctx)
}
