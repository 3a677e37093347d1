package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	FoldlineAPIKey string

	// Outliner host the line provider imports pages from
	HostAPIURL     string
	HostAPIKey     string
	HostAPITimeout time.Duration

	// Event dispatch
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Page state
	PageTTL         time.Duration
	CleanupInterval time.Duration

	// Operation latency window
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		FoldlineAPIKey: os.Getenv("FOLDLINE_API_KEY"),

		HostAPIURL:     envOr("HOST_API_URL", "https://scrapbox.io"),
		HostAPIKey:     os.Getenv("HOST_API_KEY"),
		HostAPITimeout: envDuration("HOST_API_TIMEOUT", 30*time.Second),

		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		PageTTL:         envDuration("PAGE_TTL", 1*time.Hour),
		CleanupInterval: envDuration("CLEANUP_INTERVAL", 5*time.Minute),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.HostAPITimeout <= 0 {
		cfg.HostAPITimeout = 30 * time.Second
	}
	if cfg.PageTTL <= 0 {
		cfg.PageTTL = 1 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.FoldlineAPIKey == "" {
		return fmt.Errorf("FOLDLINE_API_KEY is required")
	}
	if c.HostAPIURL == "" {
		return fmt.Errorf("HOST_API_URL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
