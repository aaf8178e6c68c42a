package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_CreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected api_url %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.SummarizerURL != DefaultSummarizerURL {
		t.Errorf("Expected summarizer_url %s, got %s", DefaultSummarizerURL, cfg.SummarizerURL)
	}
	if cfg.Session != nil {
		t.Errorf("Expected no session in a fresh config, got %+v", cfg.Session)
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", cfg.RequestTimeout())
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected config file to be created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected file mode 0600, got %o", perm)
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("VIKAL_API_URL", "http://localhost:9000")
	t.Setenv("VIKAL_TIPS_ENDPOINT", "/exam-tips")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.APIURL != "http://localhost:9000" {
		t.Errorf("Expected env api_url, got %s", cfg.APIURL)
	}
	if cfg.Tips.Endpoint != "/exam-tips" {
		t.Errorf("Expected env tips endpoint, got %s", cfg.Tips.Endpoint)
	}
	if cfg.IdentityBaseURL() != "http://localhost:9000" {
		t.Errorf("Expected identity URL to fall back to api_url, got %s", cfg.IdentityBaseURL())
	}
}

func TestSaveTo_PersistsSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Session = &SessionConfig{
		UserID:      "uid-42",
		DisplayName: "Asha",
		Email:       "asha@example.com",
		ExpiresAt:   1700000000,
	}
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if loaded.Session == nil {
		t.Fatal("Expected session to be loaded")
	}
	if loaded.Session.UserID != "uid-42" || loaded.Session.DisplayName != "Asha" {
		t.Errorf("Unexpected session: %+v", loaded.Session)
	}

	loaded.Session = nil
	if err := SaveTo(path, loaded); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}
	cleared, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cleared.Session != nil {
		t.Errorf("Expected session to be removed, got %+v", cleared.Session)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty api url", func(c *Config) { c.APIURL = "" }, true},
		{"empty summarizer url", func(c *Config) { c.SummarizerURL = "" }, true},
		{"empty upgrade url", func(c *Config) { c.UpgradeURL = "" }, true},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, true},
		{"zero tips tokens", func(c *Config) { c.Tips.MaxTokens = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCacheFile(t *testing.T) {
	cfg := Default()
	if filepath.Base(cfg.CacheFile()) != "cache.db" {
		t.Errorf("Expected default cache.db, got %s", cfg.CacheFile())
	}

	cfg.CachePath = "/tmp/custom.db"
	if cfg.CacheFile() != "/tmp/custom.db" {
		t.Errorf("Expected custom cache path, got %s", cfg.CacheFile())
	}
}

func TestLoadFile_IgnoresEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := SaveTo(path, Default()); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}
	t.Setenv("VIKAL_API_URL", "http://localhost:9999")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected file api_url %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
}

func TestLoadFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL || cfg.Session != nil {
		t.Errorf("Expected defaults without a session, got %+v", cfg)
	}
}
