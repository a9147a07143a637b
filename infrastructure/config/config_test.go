package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "braincore-memories", cfg.DynamoDBTable)
	assert.Equal(t, "ws://localhost:9090/link", cfg.LiveLinkEndpoint)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("TABLE_NAME", "custom-table")
	t.Setenv("ENABLE_METRICS", "true")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ServerAddress)
	assert.Equal(t, "custom-table", cfg.DynamoDBTable)
	assert.True(t, cfg.EnableMetrics)
}

func TestValidate_ProductionRequiresJWTSecret(t *testing.T) {
	cfg := &Config{
		Environment:   "production",
		DynamoDBTable: "table",
	}

	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RequiresTable(t *testing.T) {
	cfg := &Config{Environment: "development"}

	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_DetectsLambda(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "braincore-api")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.True(t, cfg.IsLambda)
}
