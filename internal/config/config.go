package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	TablePrefix string
	// Identity provider admin API (seeding demo users only)
	AuthAdminURL   string
	AuthServiceKey string
	// Generation collaborators
	AnthropicAPIKey    string
	GenerationProvider string // "anthropic" or "lorem" (offline)
	GenerationModel    string
	ImageServiceURL    string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     getEnv("JWKS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: tablePrefix,
		// Identity provider admin API
		AuthAdminURL:   getEnv("AUTH_ADMIN_URL", ""),
		AuthServiceKey: getEnv("AUTH_SERVICE_KEY", ""),
		// Generation collaborators
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		GenerationProvider: getEnv("GENERATION_PROVIDER", "anthropic"),
		GenerationModel:    getEnv("GENERATION_MODEL", "claude-haiku-4-5-20251001"),
		ImageServiceURL:    getEnv("IMAGE_SERVICE_URL", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
