package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv     string
	Port        string
	FrontendDir string
	CatalogFile string
	Database    DatabaseConfig
	Gemini      GeminiConfig
	Loading     LoadingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// GeminiConfig holds the document analysis settings
type GeminiConfig struct {
	APIKey string
	Model  string
}

// LoadingConfig holds live loading persistence and ordering settings
type LoadingConfig struct {
	SaveDebounce    time.Duration
	SaveMaxAttempts int
	SaveRetryBase   time.Duration
	ShiftStartHour  int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		NodeEnv:     getEnv("NODE_ENV", "development"),
		Port:        getEnv("PORT", "3210"),
		FrontendDir: os.Getenv("FRONTEND_DIR"),
		CatalogFile: os.Getenv("CATALOG_FILE"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "loadboard"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Loading: LoadingConfig{
			SaveDebounce:    time.Duration(getEnvInt("SAVE_DEBOUNCE_MS", 1000)) * time.Millisecond,
			SaveMaxAttempts: getEnvInt("SAVE_MAX_ATTEMPTS", 3),
			SaveRetryBase:   time.Duration(getEnvInt("SAVE_RETRY_BASE_MS", 1000)) * time.Millisecond,
			ShiftStartHour:  getEnvInt("SHIFT_START_HOUR", 7),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer variable, falling back on missing or malformed values
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
