package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	APIBaseURL      string
	APIToken        string
	BranchID        string
	HTTPTimeout     time.Duration
	DBConnString    string
	PDFDir          string
	LogLevel        string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	FakePDFEnabled  bool
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		APIBaseURL:      envOrDefault("POS_API_BASE_URL", "http://localhost:8080"),
		APIToken:        envOrDefault("POS_API_TOKEN", ""),
		BranchID:        envOrDefault("POS_BRANCH_ID", ""),
		HTTPTimeout:     envDuration("HTTP_TIMEOUT_SECONDS", 0),
		DBConnString:    envOrDefault("DB_DSN", ""),
		PDFDir:          envOrDefault("PDF_DIR", ""),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		FakePDFEnabled:  envBool("FAKEAPI_PDF_ENABLED", true),
	}
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
