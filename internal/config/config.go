package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database (empty = in-memory ledger)
	DatabaseURL string

	// Ledger
	ReferencePolicy           domain.ReferencePolicy
	SystemAvailableCategoryID uuid.UUID

	// Server
	Port        string
	CORSOrigins []string
	Env         string
	LogLevel    string

	// Rate limiting
	RateLimitPerMinute int
	RateLimitBurst     int

	// Event fan-out to RabbitMQ (empty URL = disabled)
	AMQPURL      string
	AMQPExchange string

	// S3 snapshot export (empty bucket = disabled)
	S3 S3Config
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether snapshot export is configured
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	policy, err := domain.ParseReferencePolicy(getEnv("REFERENCE_POLICY", string(domain.ReferencePolicyLax)))
	if err != nil {
		return nil, err
	}

	systemID := uuid.New()
	if raw := getEnv("SYSTEM_AVAILABLE_CATEGORY_ID", ""); raw != "" {
		systemID, err = uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("SYSTEM_AVAILABLE_CATEGORY_ID must be a UUID: %w", err)
		}
	}

	perMinute, err := getEnvInt("RATE_LIMIT_PER_MINUTE", 600)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt("RATE_LIMIT_BURST", 50)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		ReferencePolicy:           policy,
		SystemAvailableCategoryID: systemID,
		Port:                      getEnv("PORT", "3000"),
		CORSOrigins:               strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ","),
		Env:                       getEnv("ENV", "development"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		RateLimitPerMinute:        perMinute,
		RateLimitBurst:            burst,
		AMQPURL:                   getEnv("AMQP_URL", ""),
		AMQPExchange:              getEnv("AMQP_EXCHANGE", "ledger.events"),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			Prefix:          getEnv("S3_PREFIX", "snapshots"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive")
	}
	if c.AMQPURL != "" && c.AMQPExchange == "" {
		return fmt.Errorf("AMQP_EXCHANGE is required when AMQP_URL is set")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}
