package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("expected port 8080, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.WSReadTimeout != 60*time.Second {
					t.Errorf("expected WSReadTimeout 60s, got %v", cfg.WSReadTimeout)
				}
				if !cfg.SegmentCountSalesOnly {
					t.Error("expected SegmentCountSalesOnly true by default")
				}
				if cfg.PublishInterval != 5*time.Second {
					t.Errorf("expected PublishInterval 5s, got %v", cfg.PublishInterval)
				}
				if cfg.WindowDays != 30 {
					t.Errorf("expected WindowDays 30, got %d", cfg.WindowDays)
				}
				if cfg.RollupCron != "10 0 * * *" {
					t.Errorf("expected default rollup cron, got %s", cfg.RollupCron)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":                     "9000",
				"LOG_LEVEL":                "debug",
				"WS_READ_TIMEOUT":          "30",
				"WS_WRITE_TIMEOUT":         "5",
				"ALLOWED_ORIGINS":          "http://example.com,http://test.com",
				"SEGMENT_COUNT_SALES_ONLY": "false",
				"PUBLISH_INTERVAL":         "15",
				"REFRESH_INTERVAL":         "60",
				"WINDOW_DAYS":              "7",
				"LOW_CONVERSION_THRESHOLD": "25.5",
				"SLOW_RESPONSE_SECONDS":    "1800",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.WSReadTimeout != 30*time.Second {
					t.Errorf("expected WSReadTimeout 30s, got %v", cfg.WSReadTimeout)
				}
				if len(cfg.AllowedOrigins) != 2 {
					t.Errorf("expected 2 allowed origins, got %d", len(cfg.AllowedOrigins))
				}
				if cfg.SegmentCountSalesOnly {
					t.Error("expected SegmentCountSalesOnly false")
				}
				if cfg.PublishInterval != 15*time.Second {
					t.Errorf("expected PublishInterval 15s, got %v", cfg.PublishInterval)
				}
				if cfg.RefreshInterval != 60*time.Second {
					t.Errorf("expected RefreshInterval 60s, got %v", cfg.RefreshInterval)
				}
				if cfg.WindowDays != 7 {
					t.Errorf("expected WindowDays 7, got %d", cfg.WindowDays)
				}
				if cfg.LowConversionThreshold != 25.5 {
					t.Errorf("expected LowConversionThreshold 25.5, got %v", cfg.LowConversionThreshold)
				}
				if cfg.SlowResponseSeconds != 1800 {
					t.Errorf("expected SlowResponseSeconds 1800, got %d", cfg.SlowResponseSeconds)
				}
			},
		},
		{
			name: "invalid WS_READ_TIMEOUT",
			env: map[string]string{
				"WS_READ_TIMEOUT": "not-a-number",
			},
			wantErr: true,
		},
		{
			name: "invalid SEGMENT_COUNT_SALES_ONLY",
			env: map[string]string{
				"SEGMENT_COUNT_SALES_ONLY": "maybe",
			},
			wantErr: true,
		},
		{
			name: "invalid PUBLISH_INTERVAL",
			env: map[string]string{
				"PUBLISH_INTERVAL": "soon",
			},
			wantErr: true,
		},
		{
			name: "invalid LOW_CONVERSION_THRESHOLD",
			env: map[string]string{
				"LOW_CONVERSION_THRESHOLD": "ten",
			},
			wantErr: true,
		},
		{
			name: "origins are trimmed",
			env: map[string]string{
				"ALLOWED_ORIGINS": " http://a.com , http://b.com ",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.AllowedOrigins[0] != "http://a.com" {
					t.Errorf("expected trimmed origin, got %q", cfg.AllowedOrigins[0])
				}
				if cfg.AllowedOrigins[1] != "http://b.com" {
					t.Errorf("expected trimmed origin, got %q", cfg.AllowedOrigins[1])
				}
			},
		},
	}

	keys := []string{
		"PORT", "LOG_LEVEL", "WS_READ_TIMEOUT", "WS_WRITE_TIMEOUT", "ALLOWED_ORIGINS",
		"SEGMENT_COUNT_SALES_ONLY", "PUBLISH_INTERVAL", "REFRESH_INTERVAL", "WINDOW_DAYS",
		"LOW_CONVERSION_THRESHOLD", "SLOW_RESPONSE_SECONDS", "RULES_FILE", "ROLLUP_CRON",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range keys {
				os.Unsetenv(key)
			}
			for key, value := range tt.env {
				os.Setenv(key, value)
			}
			defer func() {
				for _, key := range keys {
					os.Unsetenv(key)
				}
			}()

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
