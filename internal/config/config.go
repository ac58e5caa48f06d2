package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment
// variables. These are populated at startup by the LoadConfig function.
var (
	// LogLevel is the zerolog level name ("debug", "info", "warn", "error").
	LogLevel string

	// WebPort is the port the read-only dashboard API listens on.
	WebPort string

	// AuditDBDisabled switches the audit trail from PostgreSQL to the
	// structured log. Intended for local runs without a database.
	AuditDBDisabled bool

	// DBHost, DBPort, DBUser, DBPassword, DBName, DBSSLMode configure the
	// PostgreSQL audit store. Required unless AuditDBDisabled is set.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	WebPort = getEnvOrDefault("WEB_PORT", "8080")
	AuditDBDisabled = os.Getenv("AUDIT_DB_DISABLED") == "true"

	if !AuditDBDisabled {
		var err error
		if DBHost, err = getEnv("DB_HOST"); err != nil {
			return err
		}
		if DBPort, err = getEnvAsInt("DB_PORT"); err != nil {
			return err
		}
		if DBUser, err = getEnv("DB_USER"); err != nil {
			return err
		}
		if DBPassword, err = getEnv("DB_PASSWORD"); err != nil {
			return err
		}
		if DBName, err = getEnv("DB_NAME"); err != nil {
			return err
		}
		DBSSLMode = getEnvOrDefault("DB_SSLMODE", "disable")
	}

	log.Debug().
		Str("WebPort", WebPort).
		Bool("AuditDBDisabled", AuditDBDisabled).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOrDefault retrieves a string environment variable with a fallback.
func getEnvOrDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an int. Returns error
// if not set or invalid.
func getEnvAsInt(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}
