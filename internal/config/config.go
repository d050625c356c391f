package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	ServicePort int
	LogLevel    string
	Database    DatabaseConfig
	Redis       RedisConfig
	RabbitMQ    RabbitMQConfig
	Upload      UploadConfig
	HTTP        HTTPConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds the preview cache settings. An empty URL disables the cache.
type RedisConfig struct {
	URL        string
	PreviewTTL time.Duration
}

// RabbitMQConfig holds RabbitMQ settings. An empty URL disables events.
type RabbitMQConfig struct {
	URL            string
	EventsExchange string
}

// UploadConfig holds spreadsheet upload settings
type UploadConfig struct {
	MaxBytes       int64
	HeaderScanRows int
}

// HTTPConfig holds HTTP surface settings
type HTTPConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "solar-telemetry-ingest"),
		ServicePort: getEnvAsInt("SERVICE_PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL:        getEnv("REDIS_URL", ""),
			PreviewTTL: time.Duration(getEnvAsInt("PREVIEW_TTL_MINUTES", 60)) * time.Minute,
		},
		RabbitMQ: RabbitMQConfig{
			URL:            getEnv("RABBITMQ_URL", ""),
			EventsExchange: getEnv("RABBITMQ_EVENTS_EXCHANGE", "solar-ingest.events.exchange"),
		},
		Upload: UploadConfig{
			MaxBytes:       getEnvAsInt64("UPLOAD_MAX_BYTES", 10<<20),
			HeaderScanRows: getEnvAsInt("HEADER_SCAN_ROWS", 20),
		},
		HTTP: HTTPConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set in environment variables")
	}

	return cfg, nil
}

// PreviewEnabled reports whether the Redis preview cache is configured
func (c *Config) PreviewEnabled() bool {
	return c.Redis.URL != ""
}

// EventsEnabled reports whether submission events are configured
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQ.URL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
