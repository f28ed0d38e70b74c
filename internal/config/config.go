package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SDRoan/Filebox-sub002/internal/database"
	"github.com/SDRoan/Filebox-sub002/internal/organizer"
	"github.com/SDRoan/Filebox-sub002/internal/ratelimit"
)

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Database  database.Config  `yaml:"database"`
	Organizer organizer.Config `yaml:"organizer"`
	OpenAI    OpenAIConfig     `yaml:"openai"`
	RateLimit ratelimit.Config `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

type OpenAIConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Load reads the YAML file (when path is non-empty), applies defaults
// and environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()
	LoadFromEnv(cfg)
	return cfg, nil
}

// ApplyDefaults fills in default values.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Database == "" {
		c.Database.Database = "filebox"
	}
	c.Organizer.ApplyDefaults()
	c.RateLimit.ApplyDefaults()
}
