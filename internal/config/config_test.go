package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	want := []int{1, 2, 4, 8, 16}
	if len(cfg.Intervals) != len(want) {
		t.Fatalf("Intervals = %v", cfg.Intervals)
	}
	for i, d := range want {
		if cfg.Intervals[i] != d {
			t.Errorf("Intervals[%d] = %d, want %d", i, cfg.Intervals[i], d)
		}
	}
	if cfg.DailyNewLimit != 10 {
		t.Errorf("DailyNewLimit = %d, want 10", cfg.DailyNewLimit)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	path := writeConfig(t, "listen_addr: \":9090\"\nintervals: [1, 3, 7]\ndaily_new_limit: 5\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.DailyNewLimit != 5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Intervals) != 3 || cfg.Intervals[2] != 7 {
		t.Errorf("Intervals = %v", cfg.Intervals)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-from-env")
	path := writeConfig(t, "listen_addr: \":9090\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Errorf("ListenAddr = %q, env override lost", cfg.ListenAddr)
	}
	if cfg.TelegramToken != "token-from-env" {
		t.Errorf("TelegramToken = %q", cfg.TelegramToken)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Errorf("Load with missing file: %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	tests := []struct {
		name    string
		content string
	}{
		{"decreasing intervals", "intervals: [4, 2, 1]\n"},
		{"zero interval", "intervals: [0, 1, 2]\n"},
		{"negative limit", "daily_new_limit: -3\n"},
		{"malformed yaml", "intervals: [1, 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Errorf("Load accepted %q", tt.content)
			}
		})
	}
}
