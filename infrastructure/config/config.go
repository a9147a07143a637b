package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	EventBusName  string

	// Lambda configuration
	IsLambda bool

	// Live link configuration
	LiveLinkEndpoint string
	BrainID          string

	// Personality configuration
	PersonalityFile string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Logging and features
	LogLevel        string
	MetricNamespace string
	EnableMetrics   bool
	EnableCORS      bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "braincore-memories"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "braincore-events"),

		IsLambda: os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",

		LiveLinkEndpoint: getEnv("LIVE_LINK_ENDPOINT", "ws://localhost:9090/link"),
		BrainID:          getEnv("BRAIN_ID", ""),

		PersonalityFile: getEnv("PERSONALITY_FILE", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "braincore"),

		LogLevel:        getEnv("LOG_LEVEL", "info"),
		MetricNamespace: getEnv("METRIC_NAMESPACE", "Braincore"),
		EnableMetrics:   getEnvBool("ENABLE_METRICS", false),
		EnableCORS:      getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required configuration
func (c *Config) Validate() error {
	if c.DynamoDBTable == "" {
		return fmt.Errorf("TABLE_NAME is required")
	}
	if c.Environment == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
