package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var AppEnv Config

type Config struct {
	Port            string
	LogLevel        string
	MongoURI        string
	DBName          string
	DBTimeout       time.Duration
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CookieSecure    bool

	PubSubProjectID string
	PubSubTopic     string

	// RejectDuplicateTransaction refuses a second order carrying the same
	// payment transaction id.
	RejectDuplicateTransaction bool

	AdminEmail    string
	AdminPassword string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		zap.L().Info(".env not loaded", zap.Error(err))
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment.
func FromEnv() Config {
	return Config{
		Port:                       getEnvOrDefault("PORT", "8080"),
		LogLevel:                   getEnvOrDefault("LOG_LEVEL", "info"),
		MongoURI:                   getEnvOrDefault("MONGO_URI", ""),
		DBName:                     getEnvOrDefault("DB_NAME", "capstone"),
		DBTimeout:                  getDurationEnv("DB_TIMEOUT", 5, time.Second),
		JWTSecret:                  getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:             getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RefreshTokenTTL:            getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),
		CookieSecure:               getBoolEnv("COOKIE_SECURE", false),
		PubSubProjectID:            getEnvOrDefault("PUBSUB_PROJECT_ID", ""),
		PubSubTopic:                getEnvOrDefault("PUBSUB_TOPIC", ""),
		RejectDuplicateTransaction: getBoolEnv("ORDER_REJECT_DUPLICATE_TRANSACTION", false),
		AdminEmail:                 getEnvOrDefault("ADMIN_EMAIL", ""),
		AdminPassword:              getEnvOrDefault("ADMIN_PASSWORD", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
