package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "test-secret")
}

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")
	setRequired(t)

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)

	assert.Equal(t, 30*time.Second, cfg.Dispatch.Window())
	assert.Equal(t, 3, cfg.Dispatch.EscalationThreshold)
	assert.Equal(t, 3, cfg.Dispatch.MaxNotifications)
	assert.Equal(t, time.Minute, cfg.Dispatch.NotifyInterval())
	assert.Equal(t, 24*time.Hour, cfg.Dispatch.OfferTTL())
	assert.InDelta(t, 100.0, cfg.Dispatch.GeofenceMeters, 1e-9)

	assert.InDelta(t, 5.0, cfg.Pricing.MinPrice, 1e-9)
	assert.InDelta(t, 0.5, cfg.Pricing.MinDistanceKm, 1e-9)
	assert.InDelta(t, 3.5, cfg.Pricing.PerKm, 1e-9)
	assert.InDelta(t, 0.15, cfg.Pricing.FragileSurcharge, 1e-9)
	assert.Equal(t, "BRL", cfg.Pricing.Currency)
	assert.Empty(t, cfg.Kafka.BrokerList())
	assert.Empty(t, cfg.Routing.URL)
	assert.Equal(t, 5*time.Second, cfg.Routing.Timeout())
	assert.Equal(t, 24*time.Hour, cfg.Routing.GeocodeCacheTTL())
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DISPATCH_WINDOW_SECONDS", "45")
	t.Setenv("PRICING_PER_KM", "4.25")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 45*time.Second, cfg.Dispatch.Window())
	assert.InDelta(t, 4.25, cfg.Pricing.PerKm, 1e-9)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.BrokerList())
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
REDIS_URL=redis://staging:6379/1
JWT_SECRET=staging-secret
DISPATCH_ESCALATION_THRESHOLD=5
`)
	err := os.WriteFile(".env", content, 0644)
	require.NoError(t, err)
	defer os.Remove(".env")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, "staging-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 5, cfg.Dispatch.EscalationThreshold)
}

// TestLoad_ValidationFailure verifies that missing required fields return an error.
func TestLoad_ValidationFailure(t *testing.T) {
	os.Unsetenv("REDIS_URL")
	os.Unsetenv("JWT_SECRET")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "missing required configuration")
}
