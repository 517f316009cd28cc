package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "storefront", cfg.MongoDB)
	assert.Equal(t, 720*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 30*time.Second, cfg.FeedCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.KafkaEnabled)
	assert.False(t, cfg.RedisEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	setEnvs(t, map[string]string{
		"PORT":                 "8080",
		"STORE_DRIVER":         "memory",
		"KAFKA_ENABLED":        "true",
		"KAFKA_BROKERS":        "k1:9092,k2:9092",
		"FEED_CACHE_TTL":       "2m",
		"CORS_ALLOWED_ORIGINS": "https://a.example.com,https://b.example.com",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Minute, cfg.FeedCacheTTL)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
}

func TestLoad_InvalidPort(t *testing.T) {
	setEnvs(t, map[string]string{"PORT": "70000"})

	cfg, err := Load()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_UnparsablePort(t *testing.T) {
	setEnvs(t, map[string]string{"PORT": "abc"})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load storefront config")
}

func TestLoad_InvalidStoreDriver(t *testing.T) {
	setEnvs(t, map[string]string{"STORE_DRIVER": "postgres"})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid STORE_DRIVER")
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	setEnvs(t, map[string]string{"OTEL_SAMPLE_RATE": "1.5"})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE")
}

func TestLoad_Production_RejectsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{"ENVIRONMENT": "production"})

	cfg, err := Load()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be explicitly set")
}

func TestLoad_Production_RejectsShortSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "too-short",
	})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_Production_AcceptsStrongSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "a-very-long-and-random-production-secret-value",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}
