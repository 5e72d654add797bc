// Package config loads environment variables into a typed Config with
// defaults, so the binary runs locally with just a token set.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Telegram
	Token string

	// Storage
	DBPath string

	// Access: empty means open mode.
	AdminIDs []int64

	// Browse
	PageSize int

	// Observability: empty disables the /metrics listener.
	MetricsAddr string
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Token = os.Getenv("TELEGRAM_TOKEN")
	if cfg.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	cfg.DBPath = os.Getenv("DB_PATH")
	if cfg.DBPath == "" {
		cfg.DBPath = "./voicecrate.db"
	}

	if v := os.Getenv("ADMIN_IDS"); v != "" {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid ADMIN_IDS entry %q: %w", part, err)
			}
			cfg.AdminIDs = append(cfg.AdminIDs, id)
		}
	}

	cfg.PageSize = 5
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid PAGE_SIZE %q", v)
		}
		cfg.PageSize = n
	}

	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	return cfg, nil
}
