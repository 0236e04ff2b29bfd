package config

import (
	"os"
	"strings"
)

// Environment selects defaults and validation rules.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV (or APP_ENV). CI=true wins over both.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	name := os.Getenv("ENV")
	if name == "" {
		name = os.Getenv("APP_ENV")
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "production", "prod":
		return Production
	case "test", "testing":
		return Test
	default:
		return Development
	}
}

// Release reports whether gin should run in release mode.
func (e Environment) Release() bool {
	return e == Production
}
