package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the application settings, loaded from the environment.
type Config struct {
	Port        string
	FrontendURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr string

	JWTSecret   string
	TokenExpiry time.Duration

	PGPKeyPath string

	LLMAPIKey  string
	LLMBaseURL string
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using environment only")
	}

	expiry, err := time.ParseDuration(os.Getenv("TOKEN_EXPIRY"))
	if err != nil {
		expiry = 7 * 24 * time.Hour // session cookie lifetime
	}

	cfg := &Config{
		Port:        getEnv("PORT", "3001"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "shg_management"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:   getEnv("JWT_SECRET", "sakhisahyog-secret-key-change-in-production"),
		TokenExpiry: expiry,
		PGPKeyPath:  getEnv("PGP_KEY_PATH", "config/pgp-key.asc"),
		LLMAPIKey:   os.Getenv("OPENAI_API_KEY"),
		LLMBaseURL:  getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
	}

	return cfg, nil
}

// getEnv returns the environment value or a fallback when unset.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
