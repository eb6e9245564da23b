package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config keeps runtime settings for the tracker.
type Config struct {
	TelegramToken    string        `env:"TELEGRAM_TOKEN"`
	DatabaseURL      string        `env:"DATABASE_URL" env-default:"gicare.db"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiModel      string        `env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
	ReminderInterval time.Duration `env:"REMINDER_INTERVAL" env-default:"60s"`
}

// Load reads configuration from environment variables with sane defaults.
// GEMINI_API_KEY is optional: without it the free-text appointment flow is
// disabled and manual entry keeps working.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = time.Minute
	}

	return cfg, nil
}
