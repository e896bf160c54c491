package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("POSTER_QUEUE_URL", "")
	t.Setenv("API_URL", "")
	t.Setenv("MOCKUP_QUEUE_URL", "")
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("CDN_PROVIDER", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PosterQueueURL != defaultQueueURL {
		t.Fatalf("PosterQueueURL mismatch: got %q want %q", cfg.PosterQueueURL, defaultQueueURL)
	}
	if cfg.MockupQueueURL != defaultQueueURL {
		t.Fatalf("MockupQueueURL should inherit the poster queue, got %q", cfg.MockupQueueURL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Fatalf("PollInterval mismatch: got %s", cfg.PollInterval)
	}
	if cfg.CDNProvider != "bunny" {
		t.Fatalf("CDNProvider mismatch: got %q", cfg.CDNProvider)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("MaxRetries mismatch: got %d", cfg.MaxRetries)
	}
}

func TestLoadConfigPollIntervalMilliseconds(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "15000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PollInterval != 15*time.Second {
		t.Fatalf("PollInterval mismatch: got %s want 15s", cfg.PollInterval)
	}
}

func TestLoadConfigPollIntervalDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "2m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PollInterval != 2*time.Minute {
		t.Fatalf("PollInterval mismatch: got %s want 2m", cfg.PollInterval)
	}
}

func TestLoadConfigLegacyAPIURL(t *testing.T) {
	t.Setenv("POSTER_QUEUE_URL", "")
	t.Setenv("API_URL", "https://queue.example.com/")
	t.Setenv("MOCKUP_QUEUE_URL", "https://mockups.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PosterQueueURL != "https://queue.example.com" {
		t.Fatalf("PosterQueueURL mismatch: got %q", cfg.PosterQueueURL)
	}
	if cfg.MockupQueueURL != "https://mockups.example.com" {
		t.Fatalf("MockupQueueURL mismatch: got %q", cfg.MockupQueueURL)
	}
}

func TestLoadConfigRejectsUnknownCDNProvider(t *testing.T) {
	t.Setenv("CDN_PROVIDER", "ftp")

	_, err := LoadConfig()
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Key != "CDN_PROVIDER" {
		t.Fatalf("ConfigError key = %q, want CDN_PROVIDER", cfgErr.Key)
	}
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("BUNNYCDN_STORAGE_ZONE_NAME=prints\nBUNNYCDN_PULL_ZONE_URL=https://prints.b-cdn.net/\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// godotenv never overrides variables that are already set, so clear them
	// through t.Setenv to get them restored afterwards.
	t.Setenv("BUNNYCDN_STORAGE_ZONE_NAME", "")
	t.Setenv("BUNNYCDN_PULL_ZONE_URL", "")
	os.Unsetenv("BUNNYCDN_STORAGE_ZONE_NAME")
	os.Unsetenv("BUNNYCDN_PULL_ZONE_URL")

	cfg, err := LoadConfig(envPath, filepath.Join(dir, ".env.local"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Bunny.ZoneName != "prints" {
		t.Fatalf("ZoneName mismatch: got %q", cfg.Bunny.ZoneName)
	}
	if cfg.Bunny.PullZoneURL != "https://prints.b-cdn.net" {
		t.Fatalf("PullZoneURL mismatch: got %q", cfg.Bunny.PullZoneURL)
	}
}

func TestRequireValue(t *testing.T) {
	if err := RequireValue("KEY", "value"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := RequireValue("KEY", "  ")
	if err == nil || err.Error() != "config: KEY is required" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadConfigStatusOrigins(t *testing.T) {
	t.Setenv("STATUS_ALLOWED_ORIGINS", " https://dash.example.com/ ,, http://localhost:3000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://dash.example.com", "http://localhost:3000"}
	if len(cfg.StatusOrigins) != len(want) || cfg.StatusOrigins[0] != want[0] || cfg.StatusOrigins[1] != want[1] {
		t.Fatalf("StatusOrigins mismatch: got %v want %v", cfg.StatusOrigins, want)
	}
}
