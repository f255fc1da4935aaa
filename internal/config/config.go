package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Storage     StorageConfig
	Auth        AuthConfig
	Capacity    CapacityConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// StorageConfig points at the object-storage bucket holding design and
// sizing photos. Empty URL means the upload endpoints return 503.
type StorageConfig struct {
	URL        string // e.g. https://<project>.supabase.co
	ServiceKey string // STORAGE_SERVICE_KEY
	Bucket     string
}

type AuthConfig struct {
	JWTSecret    string // verifies customer bearer tokens (HS256, sub = user id)
	AdminKeyHash string // bcrypt hash of the operational API key
}

// CapacityConfig shapes the weekly production-capacity window.
type CapacityConfig struct {
	WeeklyLimit  int // orders admitted per week
	AlmostFullAt int // remaining slots at or below which the window reads almost-full
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CAPACITY_WEEKLY_LIMIT", "12")
	viper.SetDefault("CAPACITY_ALMOST_FULL_AT", "3")
	viper.SetDefault("STORAGE_BUCKET", "order-images")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "nailsbyabri"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			URL:        strings.TrimSpace(getEnvOrViper("STORAGE_URL", "")),
			ServiceKey: strings.TrimSpace(getEnvOrViper("STORAGE_SERVICE_KEY", "")),
			Bucket:     getEnvOrViper("STORAGE_BUCKET", "order-images"),
		},
		Auth: AuthConfig{
			JWTSecret:    strings.TrimSpace(getEnvOrViper("JWT_SECRET", "")),
			AdminKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		},
		Capacity: CapacityConfig{
			WeeklyLimit:  getEnvOrViperInt("CAPACITY_WEEKLY_LIMIT", 12),
			AlmostFullAt: getEnvOrViperInt("CAPACITY_ALMOST_FULL_AT", 3),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Capacity.WeeklyLimit < 1 {
		return nil, fmt.Errorf("CAPACITY_WEEKLY_LIMIT must be at least 1")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getEnvOrViperInt(key string, defaultValue int) int {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}
