package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// WebSocket tuning
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	// Analytics engine toggles
	SegmentCountSalesOnly bool
	RulesFile             string

	// Live dashboard loops
	PublishInterval time.Duration
	RefreshInterval time.Duration
	WindowDays      int

	// Row alert thresholds
	LowConversionThreshold float64
	SlowResponseSeconds    int64

	// Nightly rollup schedule (cron expression)
	RollupCron string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RulesFile:      getEnv("RULES_FILE", ""),
		RollupCron:     getEnv("ROLLUP_CRON", "10 0 * * *"),
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 64 * 1024 // report snapshots are larger than chat frames

	segmentGate, err := strconv.ParseBool(getEnv("SEGMENT_COUNT_SALES_ONLY", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEGMENT_COUNT_SALES_ONLY: %w", err)
	}
	config.SegmentCountSalesOnly = segmentGate

	publishSecs, err := strconv.Atoi(getEnv("PUBLISH_INTERVAL", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid PUBLISH_INTERVAL: %w", err)
	}
	config.PublishInterval = time.Duration(publishSecs) * time.Second

	refreshSecs, err := strconv.Atoi(getEnv("REFRESH_INTERVAL", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	config.RefreshInterval = time.Duration(refreshSecs) * time.Second

	windowDays, err := strconv.Atoi(getEnv("WINDOW_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid WINDOW_DAYS: %w", err)
	}
	config.WindowDays = windowDays

	lowConv, err := strconv.ParseFloat(getEnv("LOW_CONVERSION_THRESHOLD", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LOW_CONVERSION_THRESHOLD: %w", err)
	}
	config.LowConversionThreshold = lowConv

	slowResp, err := strconv.Atoi(getEnv("SLOW_RESPONSE_SECONDS", "3600"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLOW_RESPONSE_SECONDS: %w", err)
	}
	config.SlowResponseSeconds = int64(slowResp)

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
