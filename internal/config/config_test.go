package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8007, cfg.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "http://localhost:5000", cfg.StorefrontBaseURL)
	assert.Equal(t, 720, cfg.SessionTTL)
	assert.Equal(t, 4, cfg.MaterializeConcurrency)
	assert.Equal(t, 2*time.Second, cfg.LoginPromptDelay)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WISHLIST_HTTP_PORT", "9100")
	t.Setenv("STOREFRONT_API_URL", "https://shop.example.com")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOGIN_PROMPT_DELAY", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.Equal(t, "https://shop.example.com", cfg.StorefrontBaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 500*time.Millisecond, cfg.LoginPromptDelay)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("WISHLIST_HTTP_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidConcurrency(t *testing.T) {
	t.Setenv("MATERIALIZE_CONCURRENCY", "0")

	_, err := Load()
	assert.Error(t, err)
}
