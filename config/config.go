package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "sjsage522/catalogscraper/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Target site
	BaseURL    string
	Region     string
	Categories []string
	Profile    string

	// Fetch policy
	MaxAttempts    int
	BackoffBase    time.Duration
	DetailTimeout  time.Duration
	ListingTimeout time.Duration
	UserAgent      string
	RequestRPS     float64
	ProxyURL       string // optional HTTP or SOCKS5 proxy

	// Crawl pacing
	CategoryDelay time.Duration
	DetailWorkers int
	RunInterval   time.Duration // zero runs once

	// Output
	OutputCSV string

	// Redis stream sink (disabled when RedisAddr is empty)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache page cache (disabled when MemcacheAddr is empty)
	MemcacheAddr string
	CacheTTL     time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		BaseURL:              strings.TrimRight(getEnv("BASE_URL", "https://www.livcheers.com"), "/"),
		Region:               getEnv("REGION", "bangalore"),
		Categories:           getEnvList("CATEGORIES", []string{"gin"}),
		Profile:              getEnv("PROFILE", "spirits"),
		MaxAttempts:          getEnvInt("MAX_ATTEMPTS", 3),
		BackoffBase:          time.Duration(getEnvInt("BACKOFF_BASE_MS", 1000)) * time.Millisecond,
		DetailTimeout:        time.Duration(getEnvInt("DETAIL_TIMEOUT_SECONDS", 10)) * time.Second,
		ListingTimeout:       time.Duration(getEnvInt("LISTING_TIMEOUT_SECONDS", 30)) * time.Second,
		UserAgent:            getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"),
		RequestRPS:           getEnvFloat("REQUEST_RPS", 0),
		ProxyURL:             os.Getenv("PROXY_URL"),
		CategoryDelay:        time.Duration(getEnvInt("CATEGORY_DELAY_MS", 1000)) * time.Millisecond,
		DetailWorkers:        getEnvInt("DETAIL_WORKERS", 1),
		RunInterval:          time.Duration(getEnvInt("RUN_INTERVAL_SECONDS", 0)) * time.Second,
		OutputCSV:            getEnv("OUTPUT_CSV", "catalog.csv"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "catalog"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 10000),
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		CacheTTL:             time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		Environment:          getEnv("SCRAPER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.NewConfiguration(fmt.Sprintf("invalid BASE_URL %q", c.BaseURL), err)
	}
	if c.Region == "" {
		return apperrors.NewConfiguration("REGION must not be empty", nil)
	}
	if len(c.Categories) == 0 {
		return apperrors.NewConfiguration("at least one category is required", nil)
	}
	if c.MaxAttempts < 1 {
		return apperrors.NewConfiguration("MAX_ATTEMPTS must be at least 1", nil)
	}
	if c.BackoffBase < 0 || c.CategoryDelay < 0 || c.RunInterval < 0 {
		return apperrors.NewConfiguration("delays must not be negative", nil)
	}
	if c.DetailWorkers < 1 {
		return apperrors.NewConfiguration("DETAIL_WORKERS must be at least 1", nil)
	}
	if c.RequestRPS < 0 {
		return apperrors.NewConfiguration("REQUEST_RPS must not be negative", nil)
	}
	if c.ProxyURL != "" {
		if p, err := url.Parse(c.ProxyURL); err != nil || p.Host == "" {
			return apperrors.NewConfiguration(fmt.Sprintf("invalid PROXY_URL %q", c.ProxyURL), err)
		}
	}
	if c.OutputCSV == "" && c.RedisAddr == "" {
		return apperrors.NewConfiguration("no sink configured, set OUTPUT_CSV or REDIS_ADDR", nil)
	}
	if c.RedisAddr != "" && c.RedisStreamCount < 1 {
		return apperrors.NewConfiguration("REDIS_STREAM_COUNT must be at least 1", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList reads a comma separated list, dropping blank entries
func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	return SplitList(raw)
}

// SplitList splits a comma separated list and trims each entry
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
