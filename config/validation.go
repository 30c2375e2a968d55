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

// ValidateConfig checks that every credential the assistant cannot run
// without is present. Missing required values are fatal at startup.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.BotToken == "" {
		errors = append(errors, "BOT_TOKEN (or bot_token secret) is required to talk to the chat platform")
	}
	if cfg.OpenAIAPIKey == "" {
		errors = append(errors, "OPENAI_API_KEY (or openai_api_key secret) is required for plan generation, food analysis and transcription")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" {
		errors = append(errors, "DB_HOST and DB_PORT are required")
	}
	if cfg.DBUser == "" || cfg.DBName == "" {
		errors = append(errors, "DB_USER and DB_NAME are required")
	}
	if IsProduction() && cfg.DBPassword == "" {
		errors = append(errors, "DB_PASSWORD (or db_password secret) is required in production")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}

	return nil
}

// RedisConfigured reports whether a session-store backend has been
// configured. Redis is optional; without it sessions are held in memory
// and in-progress dialogues do not survive a restart.
func (c *Config) RedisConfigured() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}
