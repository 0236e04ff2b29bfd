package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// requirement is a check applied in the listed environments.
type requirement struct {
	field string
	envs  []Environment
	ok    func(*Config) bool
	msg   string
}

var requirements = []requirement{
	{"JWT_SECRET", []Environment{Development, Test, CI, Production},
		func(c *Config) bool { return c.JWTSecret != "" }, "is required"},
	{"JWT_SECRET", []Environment{Production},
		func(c *Config) bool { return len(c.JWTSecret) >= 32 }, "must be at least 32 characters in production"},
	{"DB_PASSWORD", []Environment{CI, Production},
		func(c *Config) bool { return c.DBDriver != "postgres" || c.DBPassword != "" }, "is required"},
	{"DB_DRIVER", []Environment{Development, Test, CI, Production},
		func(c *Config) bool { return c.DBDriver == "postgres" || c.DBDriver == "sqlite" }, "must be postgres or sqlite"},
	{"DB_HOST", []Environment{Development, Test, CI, Production},
		func(c *Config) bool { return c.DBDriver != "postgres" || c.DBHost != "" }, "is required"},
	{"SQLITE_PATH", []Environment{Development, Test, CI, Production},
		func(c *Config) bool { return c.DBDriver != "sqlite" || c.SQLitePath != "" }, "is required"},
	{"SERVER_PORT", []Environment{Development, Test, CI, Production},
		func(c *Config) bool { return c.ServerPort != "" }, "is required"},
	{"RATE_LIMIT_REQUESTS", []Environment{Development, Test, CI, Production},
		func(c *Config) bool { return c.RateLimit > 0 && c.RateLimitWindow > 0 }, "must be positive"},
	{"REDIS_URL", []Environment{Production},
		func(c *Config) bool { return c.RedisEnabled() }, "is required in production"},
	{"LOG_FORMAT", []Environment{Development, Test, CI, Production},
		func(c *Config) bool { return c.LogFormat == "json" || c.LogFormat == "console" }, "must be json or console"},
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	env := cfg.Environment
	if env == "" {
		env = GetEnvironment()
	}

	var errs ValidationErrors
	for _, req := range requirements {
		if !appliesTo(req.envs, env) || req.ok(cfg) {
			continue
		}
		errs = append(errs, ValidationError{Field: req.field, Message: req.msg})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func appliesTo(envs []Environment, env Environment) bool {
	for _, e := range envs {
		if e == env {
			return true
		}
	}
	return false
}
