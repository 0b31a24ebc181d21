package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	// Unset any env vars that would interfere
	envVars := []string{
		"TICKERLENS_PROVIDERS_FMP_KEY", "TICKERLENS_PROVIDERS_ALPHAVANTAGE_KEY",
		"FMP_API_KEY", "ALPHAVANTAGE_API_KEY",
	}
	for _, e := range envVars {
		os.Unsetenv(e)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Resolver.SimilarityThreshold != 0.60 {
		t.Errorf("Resolver.SimilarityThreshold: got %f, want 0.60", cfg.Resolver.SimilarityThreshold)
	}
	if cfg.News.MaxArticles != 20 {
		t.Errorf("News.MaxArticles: got %d, want 20", cfg.News.MaxArticles)
	}
	if cfg.Fetch.AttemptTimeoutSec != 10 {
		t.Errorf("Fetch.AttemptTimeoutSec: got %d, want 10", cfg.Fetch.AttemptTimeoutSec)
	}
	if cfg.Session.DBPath == "" {
		t.Error("Session.DBPath should default to a non-empty path")
	}
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
	if cfg.Providers.FMPKey != "" || cfg.Providers.AlphaVantageKey != "" {
		t.Error("provider keys should be empty without config or env")
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
providers:
  fmp_key: "test_fmp_key_1234567890"
  alphavantage_key: "test_av_key_1234567890"
  priority:
    quote: ["alphavantage", "fmp"]
resolver:
  similarity_threshold: 0.75
news:
  max_articles: 5
fetch:
  attempt_timeout_sec: 3
session:
  db_path: "/tmp/tickerlens-test/sessions"
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	os.Unsetenv("TICKERLENS_PROVIDERS_FMP_KEY")
	os.Unsetenv("FMP_API_KEY")
	os.Unsetenv("TICKERLENS_PROVIDERS_ALPHAVANTAGE_KEY")
	os.Unsetenv("ALPHAVANTAGE_API_KEY")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Providers.FMPKey != "test_fmp_key_1234567890" {
		t.Errorf("Providers.FMPKey: got %q", cfg.Providers.FMPKey)
	}
	if cfg.Resolver.SimilarityThreshold != 0.75 {
		t.Errorf("Resolver.SimilarityThreshold: got %f, want 0.75", cfg.Resolver.SimilarityThreshold)
	}
	if cfg.News.MaxArticles != 5 {
		t.Errorf("News.MaxArticles: got %d, want 5", cfg.News.MaxArticles)
	}
	if cfg.Fetch.AttemptTimeoutSec != 3 {
		t.Errorf("Fetch.AttemptTimeoutSec: got %d, want 3", cfg.Fetch.AttemptTimeoutSec)
	}
	if cfg.Session.DBPath != "/tmp/tickerlens-test/sessions" {
		t.Errorf("Session.DBPath: got %q", cfg.Session.DBPath)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging: got %q/%q, want debug/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	chain, ok := cfg.Providers.Priority["quote"]
	if !ok || len(chain) != 2 || chain[0] != "alphavantage" {
		t.Errorf("Providers.Priority[quote]: got %v", chain)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	cfg := &Config{}

	os.Setenv("TICKERLENS_PROVIDERS_FMP_KEY", "fmp-key-from-env-123")
	os.Setenv("ALPHAVANTAGE_API_KEY", "av-key-from-env-456")
	defer func() {
		os.Unsetenv("TICKERLENS_PROVIDERS_FMP_KEY")
		os.Unsetenv("ALPHAVANTAGE_API_KEY")
	}()

	overrideFromEnv(cfg)

	if cfg.Providers.FMPKey != "fmp-key-from-env-123" {
		t.Errorf("FMPKey: got %q", cfg.Providers.FMPKey)
	}
	if cfg.Providers.AlphaVantageKey != "av-key-from-env-456" {
		t.Errorf("AlphaVantageKey: got %q", cfg.Providers.AlphaVantageKey)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	os.Unsetenv("TICKERLENS_PROVIDERS_FMP_KEY")
	os.Unsetenv("FMP_API_KEY")

	cfg := &Config{
		Providers: ProvidersConfig{FMPKey: "from-config"},
	}
	overrideFromEnv(cfg)

	// Should retain the original value when env is not set
	if cfg.Providers.FMPKey != "from-config" {
		t.Errorf("FMPKey should stay as 'from-config' when env is unset, got %q", cfg.Providers.FMPKey)
	}
}

// ── maskKey ──

func TestMaskKeyShort(t *testing.T) {
	// Keys with 8 or fewer characters should be fully masked
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"a", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMaskKeyLong(t *testing.T) {
	// Keys with more than 8 characters show first 3 + ... + last 3
	tests := []struct {
		input string
		want  string
	}{
		{"123456789", "123...789"},
		{"sk-abcdef1234567890xyz", "sk-...xyz"},
		{"ABCDEFGHIJKLMNOP", "ABC...NOP"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

// ── CheckAPIKeys / checkKey ──

func TestCheckAPIKeysAllEmpty(t *testing.T) {
	os.Unsetenv("FMP_API_KEY")
	os.Unsetenv("ALPHAVANTAGE_API_KEY")

	cfg := &Config{}
	statuses := CheckAPIKeys(cfg)

	if len(statuses) != 2 {
		t.Fatalf("CheckAPIKeys: got %d statuses, want 2", len(statuses))
	}
	for _, s := range statuses {
		if s.IsSet {
			t.Errorf("Key %q should not be set", s.Name)
		}
		if s.Source != KeySourceNone {
			t.Errorf("Key %q source: got %q, want %q", s.Name, s.Source, KeySourceNone)
		}
	}
}

func TestCheckAPIKeysFromConfig(t *testing.T) {
	os.Unsetenv("FMP_API_KEY")

	cfg := &Config{
		Providers: ProvidersConfig{
			FMPKey: "fmp-test-very-long-key-value",
		},
	}
	statuses := CheckAPIKeys(cfg)

	found := false
	for _, s := range statuses {
		if s.Name == "FMP API Key" {
			found = true
			if !s.IsSet {
				t.Error("FMP key should be set")
			}
			if s.Source != KeySourceConfig {
				t.Errorf("Source: got %q, want %q", s.Source, KeySourceConfig)
			}
			if s.Masked != "fmp...lue" {
				t.Errorf("Masked: got %q, want %q", s.Masked, "fmp...lue")
			}
		}
	}
	if !found {
		t.Error("FMP API Key status not found")
	}
}

func TestCheckAPIKeysFromEnv(t *testing.T) {
	os.Setenv("FMP_API_KEY", "fmp-env-key-for-testing")
	defer os.Unsetenv("FMP_API_KEY")

	cfg := &Config{
		Providers: ProvidersConfig{
			FMPKey: "fmp-env-key-for-testing",
		},
	}
	statuses := CheckAPIKeys(cfg)

	for _, s := range statuses {
		if s.Name == "FMP API Key" {
			if s.Source != KeySourceEnv {
				t.Errorf("Source: got %q, want %q", s.Source, KeySourceEnv)
			}
		}
	}
}

func TestCheckKeySourceDetection(t *testing.T) {
	// No env, no value
	os.Unsetenv("TEST_VAR")
	s := checkKey("Test", "", "TEST_VAR")
	if s.Source != KeySourceNone {
		t.Errorf("empty value: got source %q, want %q", s.Source, KeySourceNone)
	}
	if s.IsSet {
		t.Error("empty value should not be set")
	}

	// Value from config (no env)
	s = checkKey("Test", "config-value-long-enough", "TEST_VAR")
	if s.Source != KeySourceConfig {
		t.Errorf("config value: got source %q, want %q", s.Source, KeySourceConfig)
	}
	if !s.IsSet {
		t.Error("config value should be set")
	}

	// Value from env
	os.Setenv("TEST_VAR", "env-value-long-enough")
	defer os.Unsetenv("TEST_VAR")
	s = checkKey("Test", "env-value-long-enough", "TEST_VAR")
	if s.Source != KeySourceEnv {
		t.Errorf("env value: got source %q, want %q", s.Source, KeySourceEnv)
	}
}

// ── homeDir ──

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	h := homeDir()
	if h == "" {
		t.Error("homeDir() should not return empty string")
	}
}
