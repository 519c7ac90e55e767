// Package config loads server configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// Config holds the mockupd server configuration.
type Config struct {
	Port           string
	DBPath         string
	ItemTimeout    int // seconds
	Concurrency    int
	ThumbnailWidth int
	LogLevel       string
}

// Load reads configuration from the environment, falling back to
// defaults suitable for local development.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "3000"),
		DBPath:         getEnv("DB_PATH", "data/catalog.db"),
		ItemTimeout:    getEnvAsInt("ITEM_TIMEOUT", 30),
		Concurrency:    getEnvAsInt("BATCH_CONCURRENCY", 4),
		ThumbnailWidth: getEnvAsInt("THUMBNAIL_WIDTH", 320),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
