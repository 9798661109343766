package config

import (
	"errors"
	"os"
)

// Config holds all server configuration, loaded from environment variables.
type Config struct {
	Port      string
	SelfURL   string // public base URL, used by the keep-alive self-ping
	RedisAddr string // optional; enables cross-instance presence events
	DevLog    bool

	AuthSecret string // shared secret for the /genie endpoint
	AIProvider string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:       getEnvOrDefault("PORT", "8080"),
		SelfURL:    os.Getenv("SELF_URL"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		DevLog:     os.Getenv("DEV_LOG") == "true",
		AuthSecret: os.Getenv("AUTH_SECRET"),
		AIProvider: getEnvOrDefault("AI_PROVIDER", "gemini"),
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Port == "" {
		return errors.New("PORT must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
