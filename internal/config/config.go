// Package config loads application settings from the environment. In
// development a .env file is honored; in production required settings must
// be present.
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

	DatabaseURL   string
	RedisURL      string
	RedisPassword string

	// Identity provider (Supabase) token verification
	JWTSecret string

	// Admin content-entry panel
	AdminKeyHash string // bcrypt hash of the X-Admin-Key value

	// AI assistant
	GeminiAPIKey string
	GeminiModel  string

	// Course media storage (S3-compatible)
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool

	// Contact-form SMS notifications
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	AdminPhoneNumber string

	// Assistant rate limiting
	AssistantLimitPerMinute int
}

// Load reads configuration from environment variables, falling back to a
// .env file when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:    os.Getenv("SUPABASE_JWT_SECRET"),
		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		S3Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey: getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:    getEnv("S3_BUCKET", "baua-media"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3UseSSL:    os.Getenv("S3_USE_SSL") == "true",

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		AdminPhoneNumber: os.Getenv("ADMIN_PHONE_NUMBER"),

		AssistantLimitPerMinute: getEnvInt("ASSISTANT_LIMIT_PER_MINUTE", 10),
	}

	// In production, require the settings the app cannot run without.
	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if cfg.JWTSecret == "" {
			panic("SUPABASE_JWT_SECRET is required in production")
		}
	}

	return cfg
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
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
