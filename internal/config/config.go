package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/lexbox/internal/leitner"
)

// Config holds server-level configuration. Per-user preferences (interval
// overrides, locked mode, daily limit) live in user settings; these values
// are the server defaults applied to new users plus process-level knobs.
type Config struct {
	ListenAddr    string `yaml:"listen_addr"`
	TelegramToken string `yaml:"telegram_token"`
	Intervals     []int  `yaml:"intervals"`
	DailyNewLimit int    `yaml:"daily_new_limit"`
}

// Load reads the YAML config file (optional), fills defaults and applies
// environment overrides. An invalid interval table is a fatal configuration
// error: it is surfaced here, at startup, never defaulted past validation.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if len(cfg.Intervals) == 0 {
		cfg.Intervals = leitner.DefaultIntervals()
	}
	if cfg.DailyNewLimit == 0 {
		cfg.DailyNewLimit = 10
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}

	if err := leitner.IntervalConfig(cfg.Intervals).Validate(); err != nil {
		return nil, fmt.Errorf("invalid interval config: %w", err)
	}
	if cfg.DailyNewLimit < 1 {
		return nil, fmt.Errorf("daily_new_limit must be at least 1, got %d", cfg.DailyNewLimit)
	}
	return &cfg, nil
}
