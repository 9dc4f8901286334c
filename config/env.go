// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadEnv loads environment variables from .env files, later files winning.
func LoadEnv(logger *logrus.Logger) {
	files := []string{".env", ".env.dev"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger == nil {
		return
	}
	if len(loaded) == 0 {
		logger.Debug("No local env files loaded; relying on process environment")
	} else {
		logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
	}
}

// GetEnv gets an environment variable with a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer environment variable with a default value
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvBool gets a boolean environment variable with a default value
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvList splits a comma-separated variable, dropping empty items.
func GetEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GetLogLevel gets the log level from environment
func GetLogLevel() logrus.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// =============================================================================
// SERVER CONFIG
// =============================================================================

// Config is the server configuration. Command-line flags override it.
type Config struct {
	Port          int    `validate:"min=1,max=65535"`
	DBPath        string `validate:"required"`
	SeedOnStart   bool
	AppEnv        string `validate:"oneof=development production test"`
	DemoSeedToken string
	CORSOrigins   []string `validate:"min=1"`
	StaticDir     string
}

// Production reports whether the server runs with production guards.
func (c Config) Production() bool {
	return c.AppEnv == "production"
}

// FromEnv reads Config from the environment.
func FromEnv() Config {
	return Config{
		Port:          GetEnvInt("PORT", 8080),
		DBPath:        GetEnv("DB_PATH", "yogitrack.db"),
		SeedOnStart:   GetEnvBool("SEED_ON_START", false),
		AppEnv:        GetEnv("APP_ENV", "development"),
		DemoSeedToken: GetEnv("DEMO_SEED_TOKEN", ""),
		CORSOrigins:   GetEnvList("CORS_ORIGINS", []string{"*"}),
		StaticDir:     GetEnv("STATIC_DIR", "web/dist"),
	}
}

var validate = validator.New()

// Validate rejects out-of-range values. In production a seed token is
// required so the admin seed route cannot be called anonymously.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Production() && c.DemoSeedToken == "" && c.SeedOnStart {
		return fmt.Errorf("invalid config: SEED_ON_START in production requires DEMO_SEED_TOKEN")
	}
	return nil
}
