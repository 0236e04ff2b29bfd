package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort      string
	ServerHost      string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Database configuration. DBDriver is "postgres" or "sqlite"; SQLitePath
	// is only used by the latter.
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration. An empty RedisURL and RedisHost disables Redis.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// LLM configuration (OpenAI-compatible chat completions)
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMVisionModel string
	LLMTimeout     time.Duration

	// Image storage
	S3BucketName string
	AWSRegion    string

	// Response caching and AI rate limiting
	CacheTTL        time.Duration
	RateLimit       int
	RateLimitWindow time.Duration

	LogLevel  string
	LogFormat string

	// Optional YAML file replacing the command vocabulary tables.
	VocabularyPath string
}

// secretKeys maps Docker secret file names to the config keys they override.
var secretKeys = map[string]string{
	"db_user":        "db.user",
	"db_password":    "db.password",
	"jwt_secret":     "jwt.secret",
	"redis_password": "redis.password",
	"redis_url":      "redis.url",
	"llm_api_key":    "llm.api_key",
}

// LoadConfig creates a new Config instance with values from .env, an optional
// config file, environment variables and Docker secrets, in increasing order of
// precedence.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	loadEnvFile()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// CI uses ONLY environment variables; other environments prefer Docker secrets.
	if env != CI {
		for secret, key := range secretKeys {
			if value := readSecret(secret); value != "" {
				v.Set(key, value)
			}
		}
	}

	cfg := fromViper(v)
	cfg.Environment = env

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("cors.origins", "*")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "mealplanner")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("sqlite.path", "mealplanner.db")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.url", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.vision_model", "gpt-4o")
	v.SetDefault("llm.timeout", "60s")

	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("aws.region", "us-east-1")

	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("vocabulary.path", "")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:      v.GetString("server.port"),
		ServerHost:      v.GetString("server.host"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		CORSOrigins:     splitList(v.GetString("cors.origins")),

		DBDriver:   strings.ToLower(v.GetString("db.driver")),
		DBHost:     v.GetString("db.host"),
		DBPort:     v.GetString("db.port"),
		DBUser:     v.GetString("db.user"),
		DBPassword: v.GetString("db.password"),
		DBName:     v.GetString("db.name"),
		DBSSLMode:  v.GetString("db.ssl_mode"),
		SQLitePath: v.GetString("sqlite.path"),

		RedisHost:     v.GetString("redis.host"),
		RedisPort:     v.GetString("redis.port"),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),
		RedisURL:      v.GetString("redis.url"),

		JWTSecret: v.GetString("jwt.secret"),
		TokenTTL:  v.GetDuration("jwt.ttl"),

		LLMBaseURL:     strings.TrimRight(v.GetString("llm.base_url"), "/"),
		LLMAPIKey:      v.GetString("llm.api_key"),
		LLMModel:       v.GetString("llm.model"),
		LLMVisionModel: v.GetString("llm.vision_model"),
		LLMTimeout:     v.GetDuration("llm.timeout"),

		S3BucketName: v.GetString("s3.bucket_name"),
		AWSRegion:    v.GetString("aws.region"),

		CacheTTL:        v.GetDuration("cache.ttl"),
		RateLimit:       v.GetInt("rate_limit.requests"),
		RateLimitWindow: v.GetDuration("rate_limit.window"),

		LogLevel:  strings.ToLower(v.GetString("log.level")),
		LogFormat: strings.ToLower(v.GetString("log.format")),

		VocabularyPath: v.GetString("vocabulary.path"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
