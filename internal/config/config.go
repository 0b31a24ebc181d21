// Package config handles configuration loading for TickerLens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Resolver  ResolverConfig  `mapstructure:"resolver"  yaml:"resolver"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	Fetch     FetchConfig     `mapstructure:"fetch"     yaml:"fetch"`
	Session   SessionConfig   `mapstructure:"session"   yaml:"session"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ProvidersConfig holds data provider credentials and chain ordering.
type ProvidersConfig struct {
	FMPKey          string              `mapstructure:"fmp_key"          yaml:"fmp_key"`
	AlphaVantageKey string              `mapstructure:"alphavantage_key" yaml:"alphavantage_key"`
	Priority        map[string][]string `mapstructure:"priority"         yaml:"priority"` // capability → provider names
}

// ResolverConfig holds symbol resolution settings.
type ResolverConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold"`
}

// NewsConfig holds news aggregation settings.
type NewsConfig struct {
	MaxArticles int `mapstructure:"max_articles" yaml:"max_articles"`
}

// FetchConfig holds provider waterfall settings.
type FetchConfig struct {
	AttemptTimeoutSec int `mapstructure:"attempt_timeout_sec" yaml:"attempt_timeout_sec"`
}

// SessionConfig holds durable session store settings.
type SessionConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tickerlens/config.yaml (home directory)
//  3. /etc/tickerlens/config.yaml (system)
//
// Environment variables override config file values.
// Format: TICKERLENS_<SECTION>_<KEY>, e.g., TICKERLENS_PROVIDERS_FMP_KEY
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tickerlens"))
	v.AddConfigPath("/etc/tickerlens")

	v.SetEnvPrefix("TICKERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("TICKERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Resolver defaults
	v.SetDefault("resolver.similarity_threshold", 0.60)

	// News defaults
	v.SetDefault("news.max_articles", 20)

	// Fetch defaults
	v.SetDefault("fetch.attempt_timeout_sec", 10)

	// Session defaults
	v.SetDefault("session.db_path", filepath.Join(homeDir(), ".tickerlens", "sessions"))

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The bare FMP_API_KEY / ALPHAVANTAGE_API_KEY names are honored too, since
// that is what the provider sites document.
func overrideFromEnv(cfg *Config) {
	for _, name := range []string{"TICKERLENS_PROVIDERS_FMP_KEY", "FMP_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			cfg.Providers.FMPKey = key
			break
		}
	}
	for _, name := range []string{"TICKERLENS_PROVIDERS_ALPHAVANTAGE_KEY", "ALPHAVANTAGE_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			cfg.Providers.AlphaVantageKey = key
			break
		}
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
