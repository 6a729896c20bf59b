package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Storage. DBPath selects the SQLite file; DATABASE_URL, when set,
	// switches the message store to PostgreSQL. REDIS_URL enables the
	// optional presence tracking.
	DBPath      string
	DatabaseURL string
	RedisURL    string

	// HistoryLimit is the number of messages replayed to a new WebSocket
	// connection.
	HistoryLimit int

	// AgentName is the responder's identity on its messages.
	AgentName string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		DBPath:       getEnv("DB_PATH", "./data/chat.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		HistoryLimit: getEnvInt("HISTORY_LIMIT", 20),
		AgentName:    getEnv("AGENT_NAME", "mock-ai"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
