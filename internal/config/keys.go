package config

import "os"

// APIKeySource identifies where a credential value came from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// APIKeyStatus describes one credential for diagnostics output. The key
// itself is never exposed, only a masked form.
type APIKeyStatus struct {
	Name   string
	IsSet  bool
	Source APIKeySource
	Masked string
}

// CheckAPIKeys reports the status of every provider credential.
func CheckAPIKeys(cfg *Config) []APIKeyStatus {
	return []APIKeyStatus{
		checkKey("FMP API Key", cfg.Providers.FMPKey, "FMP_API_KEY"),
		checkKey("Alpha Vantage API Key", cfg.Providers.AlphaVantageKey, "ALPHAVANTAGE_API_KEY"),
	}
}

// checkKey classifies one credential: unset, from config, or from env.
func checkKey(name, value, envVar string) APIKeyStatus {
	status := APIKeyStatus{Name: name}
	if value == "" {
		status.Source = KeySourceNone
		status.Masked = maskKey(value)
		return status
	}
	status.IsSet = true
	status.Masked = maskKey(value)
	if os.Getenv(envVar) == value {
		status.Source = KeySourceEnv
	} else {
		status.Source = KeySourceConfig
	}
	return status
}

// maskKey hides a credential for display: short keys mask entirely, longer
// ones keep the first and last three characters.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
