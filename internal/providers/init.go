// Package providers initializes and registers all concrete data providers
// with the global provider registry.
package providers

import (
	"os"

	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/internal/providers/alphavantage"
	"github.com/seenimoa/tickerlens/internal/providers/fmp"
	"github.com/seenimoa/tickerlens/internal/providers/websearch"
	"github.com/seenimoa/tickerlens/internal/providers/yahoorss"
)

// Credentials holds the API keys for the key-gated providers. Empty keys
// leave the corresponding provider unregistered.
type Credentials struct {
	FMPKey          string
	AlphaVantageKey string
}

// CredentialsFromEnv reads provider keys from the environment.
func CredentialsFromEnv() Credentials {
	return Credentials{
		FMPKey:          os.Getenv("FMP_API_KEY"),
		AlphaVantageKey: os.Getenv("ALPHAVANTAGE_API_KEY"),
	}
}

// RegisterAll creates and registers all available providers with the
// global registry. Providers that require API keys will only be registered
// if their environment variable is set.
func RegisterAll() error {
	return RegisterTo(provider.Global(), CredentialsFromEnv())
}

// RegisterAllTo registers all available providers to the given registry
// using keys from the environment.
func RegisterAllTo(reg *provider.Registry) error {
	return RegisterTo(reg, CredentialsFromEnv())
}

// RegisterTo registers providers to the given registry with explicit
// credentials. Registration order sets the default fallback priority:
// FMP first, then Alpha Vantage, then the keyless providers.
func RegisterTo(reg *provider.Registry, creds Credentials) error {
	// --- FMP (requires API key, primary) ---
	if creds.FMPKey != "" {
		fp := fmp.New()
		if err := fp.Init(map[string]string{"api_key": creds.FMPKey}); err != nil {
			return err
		}
		if err := reg.Register(fp); err != nil {
			return err
		}
	}

	// --- Alpha Vantage (requires API key, fallback) ---
	if creds.AlphaVantageKey != "" {
		av := alphavantage.New()
		if err := av.Init(map[string]string{"api_key": creds.AlphaVantageKey}); err != nil {
			return err
		}
		if err := reg.Register(av); err != nil {
			return err
		}
	}

	// --- Yahoo RSS (free, no API key) ---
	yr := yahoorss.New()
	if err := yr.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(yr); err != nil {
		return err
	}

	// --- Web search (free, no API key) ---
	ws := websearch.New()
	if err := ws.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(ws); err != nil {
		return err
	}

	return nil
}
