package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer     string // Issuer claim stamped on and required of every token
	SigningKey string // Required: symmetric HMAC-SHA256 signing key

	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)

	DatabaseFile      string // Path to SQLite database file (default: ./storagebox.db)
	RevocationBackend string // Revocation denylist backend (sqlite, redis) (default: sqlite)
	RedisAddr         string // Redis address, required when backend is redis

	AdminUsername string // Default admin account seeded on first start
	AdminPassword string // Default admin password; change it after first login

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Denylist pruning interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:     getEnvOrDefault("AUTH_ISSUER", "storage-service"),
		SigningKey: os.Getenv("AUTH_SIGNING_KEY"),

		AccessTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getEnvDurationOrDefault("AUTH_REFRESH_TTL", 7*24*time.Hour),

		DatabaseFile:      getEnvOrDefault("AUTH_DATABASE_FILE", "storagebox.db"),
		RevocationBackend: getEnvOrDefault("AUTH_REVOCATION_BACKEND", "sqlite"),
		RedisAddr:         getEnvOrDefault("AUTH_REDIS_ADDR", "localhost:6379"),

		AdminUsername: getEnvOrDefault("AUTH_ADMIN_USERNAME", "#admin"),
		AdminPassword: getEnvOrDefault("AUTH_ADMIN_PASSWORD", "#admin"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
