package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "TELEGRAM_DISABLE_PREVIEW",
		"MIN_LAND_M2", "DEDUP_TTL_SECONDS", "DEDUP_MARK_POLICY",
		"PROXY_SERVER", "HEADLESS", "NAV_TIMEOUT_MS", "POST_LOAD_WAIT_MS",
		"MAX_TEXT_CHARS", "LISTEN_ADDR", "DB_PATH", "DATABASE_URL", "DIGEST_CRON",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Filter.MinLandM2 != 0 {
		t.Fatalf("expected filter disabled by default, got %d", cfg.Filter.MinLandM2)
	}
	if cfg.Dedup.TTL != 24*time.Hour {
		t.Fatalf("expected 24h dedup TTL, got %s", cfg.Dedup.TTL)
	}
	if cfg.Dedup.MarkPolicy != "eager" {
		t.Fatalf("expected eager mark policy, got %q", cfg.Dedup.MarkPolicy)
	}
	if !cfg.Browser.Headless {
		t.Fatal("expected headless by default")
	}
	if cfg.Browser.NavTimeout != 45*time.Second {
		t.Fatalf("expected 45s nav timeout, got %s", cfg.Browser.NavTimeout)
	}
	if cfg.Browser.SettleDelay != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s settle delay, got %s", cfg.Browser.SettleDelay)
	}
	if cfg.Browser.MaxTextChars != 250000 {
		t.Fatalf("expected 250000 max text chars, got %d", cfg.Browser.MaxTextChars)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.Server.ListenAddr)
	}
	if cfg.DBPath != "land_alert.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "-100")
	t.Setenv("TELEGRAM_DISABLE_PREVIEW", "true")
	t.Setenv("MIN_LAND_M2", "300")
	t.Setenv("DEDUP_TTL_SECONDS", "3600")
	t.Setenv("DEDUP_MARK_POLICY", "onsuccess")
	t.Setenv("HEADLESS", "false")
	t.Setenv("NAV_TIMEOUT_MS", "10000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Telegram.BotToken != "tok" || cfg.Telegram.ChatID != "-100" {
		t.Fatalf("telegram config not read: %+v", cfg.Telegram)
	}
	if !cfg.Telegram.DisablePreview {
		t.Fatal("expected preview disabled")
	}
	if cfg.Filter.MinLandM2 != 300 {
		t.Fatalf("expected min land 300, got %d", cfg.Filter.MinLandM2)
	}
	if cfg.Dedup.TTL != time.Hour {
		t.Fatalf("expected 1h TTL, got %s", cfg.Dedup.TTL)
	}
	if cfg.Dedup.MarkPolicy != "onsuccess" {
		t.Fatalf("expected onsuccess policy, got %q", cfg.Dedup.MarkPolicy)
	}
	if cfg.Browser.Headless {
		t.Fatal("expected headful browser")
	}
	if cfg.Browser.NavTimeout != 10*time.Second {
		t.Fatalf("expected 10s nav timeout, got %s", cfg.Browser.NavTimeout)
	}
}

func TestLoad_InvalidMarkPolicy(t *testing.T) {
	t.Setenv("DEDUP_MARK_POLICY", "lazy")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown mark policy")
	}
}

func TestLoadPatternPacks(t *testing.T) {
	dir := t.TempDir()
	pack := `id: greek-portals
land_patterns:
  - '(?i)\bterrain\b[^0-9]{0,40}([0-9]+)'
challenge_markers:
  - incapsula
`
	if err := os.WriteFile(filepath.Join(dir, "greek.yaml"), []byte(pack), 0o644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	// Non-yaml files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	var cfg Config
	if err := cfg.loadPatternPacks(dir); err != nil {
		t.Fatalf("load packs failed: %v", err)
	}

	if len(cfg.Patterns.LandPatterns) != 1 {
		t.Fatalf("expected 1 land pattern, got %d", len(cfg.Patterns.LandPatterns))
	}
	if len(cfg.Patterns.ChallengeMarkers) != 1 || cfg.Patterns.ChallengeMarkers[0] != "incapsula" {
		t.Fatalf("expected incapsula marker, got %v", cfg.Patterns.ChallengeMarkers)
	}
}

func TestLoadPatternPacks_MissingDir(t *testing.T) {
	var cfg Config
	if err := cfg.loadPatternPacks(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Fatalf("missing directory must not fail: %v", err)
	}
}

func TestLoadPatternPacks_BadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(":\n  - ["), 0o644); err != nil {
		t.Fatalf("write pack: %v", err)
	}

	var cfg Config
	if err := cfg.loadPatternPacks(dir); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
