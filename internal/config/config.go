package config

import (
	"os"
	"strconv"
	"time"
)

// defaultAdminToken is a local-development placeholder. Any real deployment
// must set ADMIN_TOKEN.
const defaultAdminToken = "admin-secret-token-2024"

type Config struct {
	ListenAddr         string
	TLSListenAddr      string
	AdminToken         string
	DefaultCodeMinutes int
	MaxCodeMinutes     int
	SweepInterval      time.Duration
	LogLevel           string
}

func Load() *Config {
	return &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		TLSListenAddr:      getEnv("TLS_LISTEN_ADDR", ""),
		AdminToken:         getEnv("ADMIN_TOKEN", defaultAdminToken),
		DefaultCodeMinutes: getEnvInt("DEFAULT_CODE_MINUTES", 10),
		MaxCodeMinutes:     getEnvInt("MAX_CODE_MINUTES", 1440),
		SweepInterval:      getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
