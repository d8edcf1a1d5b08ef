package app

import (
	"os"
	"strconv"
	"time"

	"github.com/openlms/auth/pkg/jwtx"
)

type Config struct {
	SigningKeyPath      string // Required: path to the PEM private key for minting tokens
	VerificationKeyPath string // Required: path to the PEM public key for verifying tokens
	DirectoryURL        string // Required: base URL of the user directory service

	AccessTTL           time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL          time.Duration // Optional: refresh token lifetime (default: 168h)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		SigningKeyPath:      os.Getenv("GATEWAY_SIGNING_KEY"),
		VerificationKeyPath: os.Getenv("GATEWAY_VERIFICATION_KEY"),
		DirectoryURL:        os.Getenv("GATEWAY_DIRECTORY_URL"),
		AccessTTL:           getEnvDurationOrDefault("GATEWAY_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:          getEnvDurationOrDefault("GATEWAY_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
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
