package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required
	AnthropicAPIKey       string
	GoogleCredentialsFile string

	// Optional with defaults
	DBPath            string
	WhatsAppDBPath    string
	HTTPPort          int
	BaseURL           string
	HomeTimezone      string
	ClaudeModel       string
	ClaudeTemperature float64
	ClaudeFallbackURL string
	LLMTimeoutSecs    int
	WorkerCount       int
	MaxListResults    int
	SearchWindowDays  int
	Debug             bool

	// Email notifications (optional)
	ResendAPIKey    string
	ResendFrom      string
	NotifyRecipient string
}

func LoadFromEnv() *Config {
	cfg := &Config{
		// Required
		AnthropicAPIKey:       os.Getenv("ANTHROPIC_API_KEY"),
		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),

		// Optional with defaults
		DBPath:            getEnvOrDefault("WOOSTER_DB_PATH", "./wooster.db"),
		WhatsAppDBPath:    getEnvOrDefault("WOOSTER_WHATSAPP_DB_PATH", "./whatsapp.db"),
		HTTPPort:          getEnvAsIntOrDefault("WOOSTER_HTTP_PORT", 8080),
		BaseURL:           getEnvOrDefault("WOOSTER_BASE_URL", "http://localhost:8080"),
		HomeTimezone:      getEnvOrDefault("WOOSTER_TIMEZONE", "UTC"),
		ClaudeModel:       getEnvOrDefault("WOOSTER_CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		ClaudeTemperature: getEnvAsFloatOrDefault("WOOSTER_CLAUDE_TEMPERATURE", 0.1),
		ClaudeFallbackURL: os.Getenv("WOOSTER_CLAUDE_FALLBACK_URL"),
		LLMTimeoutSecs:    getEnvAsIntOrDefault("WOOSTER_LLM_TIMEOUT_SECS", 30),
		WorkerCount:       getEnvAsIntOrDefault("WOOSTER_WORKER_COUNT", 2),
		MaxListResults:    getEnvAsIntOrDefault("WOOSTER_MAX_LIST_RESULTS", 25),
		SearchWindowDays:  getEnvAsIntOrDefault("WOOSTER_SEARCH_WINDOW_DAYS", 30),
		Debug:             getEnvAsBoolOrDefault("WOOSTER_DEBUG", false),

		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		ResendFrom:      getEnvOrDefault("WOOSTER_NOTIFY_FROM", "wooster@localhost"),
		NotifyRecipient: os.Getenv("WOOSTER_NOTIFY_RECIPIENT"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
