package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	// Storage selects the persistence backend: "postgres" or "file".
	Storage     string
	DatabaseURI string
	DataDir     string

	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	// SummaryHour is the local hour (0-23) of the daily agenda message.
	SummaryHour int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	summaryHour, err := strconv.Atoi(getEnvOrDefault("SUMMARY_HOUR", "7"))
	if err != nil || summaryHour < 0 || summaryHour > 23 {
		return nil, fmt.Errorf("invalid SUMMARY_HOUR: %s", os.Getenv("SUMMARY_HOUR"))
	}

	return &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		Storage:       getEnvOrDefault("STORAGE", "file"),
		DatabaseURI:   os.Getenv("DATABASE_URI"),
		DataDir:       getEnvOrDefault("DATA_DIR", "data"),
		AIAPIKey:      os.Getenv("AI_API_KEY"),
		AIBaseURL:     getEnvOrDefault("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:       getEnvOrDefault("AI_MODEL", "openai/gpt-4o-mini"),
		SummaryHour:   summaryHour,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
