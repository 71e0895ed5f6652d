package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	Port   string
	DBPath string

	TrackedAccounts []string

	MinSamples  int
	WindowSize  int
	BucketWidth int
	SessionGap  time.Duration

	LogLevel string
}

func Load() *AppConfig {
	cfg := &AppConfig{
		Port:        "8080",
		DBPath:      "./chessmetrics.db",
		MinSamples:  5,
		WindowSize:  50,
		BucketWidth: 50,
		SessionGap:  time.Hour,
		LogLevel:    "info",
	}

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	if v := strings.TrimSpace(os.Getenv("TRACKED_ACCOUNTS")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				cfg.TrackedAccounts = append(cfg.TrackedAccounts, s)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv("MIN_SAMPLES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MinSamples = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("WINDOW_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WindowSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("BUCKET_WIDTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BucketWidth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_GAP_MINUTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionGap = time.Duration(n) * time.Minute
		}
	}

	return cfg
}
