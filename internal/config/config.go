package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	// Default base URL / model target Gemini's OpenAI-compatible endpoint.
	defaultAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultAIModel   = "gemini-2.0-flash"
)

type Config struct {
	Port     string
	LogLevel string

	// Chat proxy settings. An empty key disables the /api/chat endpoint.
	AIAPIKey  string
	AIBaseURL string
	AIModel   string
}

func Load() Config {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	apiKey := os.Getenv("AI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	return Config{
		Port:      getEnv("PORT", "8000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		AIAPIKey:  apiKey,
		AIBaseURL: getEnv("AI_BASE_URL", defaultAIBaseURL),
		AIModel:   getEnv("AI_MODEL", defaultAIModel),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
