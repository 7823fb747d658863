package config

import (
	"testing"
	"time"

	apperrors "sjsage522/catalogscraper/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "https://www.livcheers.com", config.BaseURL)
	assert.Equal(t, "bangalore", config.Region)
	assert.Equal(t, []string{"gin"}, config.Categories)
	assert.Equal(t, "spirits", config.Profile)
	assert.Equal(t, 3, config.MaxAttempts)
	assert.Equal(t, time.Second, config.BackoffBase)
	assert.Equal(t, 10*time.Second, config.DetailTimeout)
	assert.Equal(t, time.Second, config.CategoryDelay)
	assert.Equal(t, 1, config.DetailWorkers)
	assert.Zero(t, config.RunInterval)
	assert.Empty(t, config.RedisAddr)
	assert.Empty(t, config.MemcacheAddr)
	require.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("BASE_URL", "https://shop.example.com/")
	t.Setenv("REGION", "mumbai")
	t.Setenv("CATEGORIES", "single-malts, world-whisky,,blended-scotch")
	t.Setenv("PROFILE", "whisky")
	t.Setenv("MAX_ATTEMPTS", "5")
	t.Setenv("BACKOFF_BASE_MS", "250")
	t.Setenv("CATEGORY_DELAY_MS", "0")
	t.Setenv("DETAIL_WORKERS", "4")
	t.Setenv("REQUEST_RPS", "2.5")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("RUN_INTERVAL_SECONDS", "600")

	config = LoadConfig()
	assert.Equal(t, "https://shop.example.com", config.BaseURL)
	assert.Equal(t, "mumbai", config.Region)
	assert.Equal(t, []string{"single-malts", "world-whisky", "blended-scotch"}, config.Categories)
	assert.Equal(t, "whisky", config.Profile)
	assert.Equal(t, 5, config.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, config.BackoffBase)
	assert.Equal(t, time.Duration(0), config.CategoryDelay)
	assert.Equal(t, 4, config.DetailWorkers)
	assert.Equal(t, 2.5, config.RequestRPS)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 10*time.Minute, config.RunInterval)
	require.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad base url", func(c *Config) { c.BaseURL = "not a url" }},
		{"no region", func(c *Config) { c.Region = "" }},
		{"no categories", func(c *Config) { c.Categories = nil }},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"negative delay", func(c *Config) { c.CategoryDelay = -time.Second }},
		{"zero workers", func(c *Config) { c.DetailWorkers = 0 }},
		{"negative rps", func(c *Config) { c.RequestRPS = -1 }},
		{"bad proxy", func(c *Config) { c.ProxyURL = "::not-a-proxy" }},
		{"negative interval", func(c *Config) { c.RunInterval = -time.Minute }},
		{"no sink", func(c *Config) { c.OutputCSV, c.RedisAddr = "", "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var ce *apperrors.CrawlerError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, apperrors.ErrorTypeConfiguration, ce.Type)
		})
	}
}
