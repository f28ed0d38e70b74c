package config

import (
	"os"
	"strconv"
)

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv(cfg *Config) {
	if port := os.Getenv("FILEBOX_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if logLevel := os.Getenv("FILEBOX_LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}

	// Database settings
	if host := os.Getenv("FILEBOX_DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("FILEBOX_DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Database.Port = p
		}
	}
	if name := os.Getenv("FILEBOX_DB_NAME"); name != "" {
		cfg.Database.Database = name
	}
	if user := os.Getenv("FILEBOX_DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if password := os.Getenv("FILEBOX_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}

	// Explanation generator
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if model := os.Getenv("FILEBOX_OPENAI_MODEL"); model != "" {
		cfg.OpenAI.Model = model
	}
}

// GetEnvOrDefault returns environment variable or default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
