// Package provider implements the provider abstraction layer. It defines a
// Provider interface, a Fetcher interface, and a central registry that routes
// data requests to the appropriate provider based on capability.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderCredential describes a required credential for a provider.
type ProviderCredential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // e.g., "FMP API key from financialmodelingprep.com"
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // environment variable name, e.g., "FMP_API_KEY"
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name         string               `json:"name"`        // e.g., "fmp", "alphavantage"
	Description  string               `json:"description"` // human-readable description
	Website      string               `json:"website"`     // e.g., "https://financialmodelingprep.com"
	Credentials  []ProviderCredential `json:"credentials"`
	Capabilities []Capability         `json:"capabilities"` // supported capabilities
}

// Provider is the interface that all data providers must implement.
// Each provider registers one or more Fetcher implementations for specific
// capabilities (e.g., Quote, BalanceSheet, CompanyNews).
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Init initializes the provider with credentials and configuration.
	// Called once during registration. Returns an error if required credentials
	// are missing or invalid.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for the given capability, or nil if unsupported.
	Fetcher(cap Capability) Fetcher

	// Capabilities returns all capabilities this provider can serve.
	Capabilities() []Capability

	// Ping verifies the provider's connectivity and credentials.
	Ping(ctx context.Context) error
}

// QueryParams is the generic query parameter map passed to fetchers.
// Common keys include:
//   - "symbol"  : ticker symbol (e.g., "AAPL", "SPY")
//   - "query"   : free-text search query
//   - "limit"   : max results
//   - "period"  : reporting period ("annual", "quarterly")
//   - "provider": override provider name
//
// Each fetcher defines which keys it requires/supports.
type QueryParams map[string]string

// QueryParamKey constants for commonly used query parameters.
const (
	ParamSymbol   = "symbol"
	ParamQuery    = "query"
	ParamLimit    = "limit"
	ParamPeriod   = "period"
	ParamFrom     = "from" // YYYY-MM-DD, historical prices
	ParamTo       = "to"   // YYYY-MM-DD, historical prices
	ParamProvider = "provider"
)

// FetchResult wraps a fetcher result with metadata.
type FetchResult struct {
	Provider   string     `json:"provider"`   // which provider returned this data
	Capability Capability `json:"capability"` // the capability that was served
	Data       any        `json:"data"`       // the fetched data (typed per capability)
	FetchedAt  time.Time  `json:"fetched_at"` // when the data was fetched
	Cached     bool       `json:"cached"`     // whether this came from cache
}

// Fetcher is the interface for fetching a specific data type.
// Each Fetcher handles a single capability (e.g., Quote).
type Fetcher interface {
	// Capability returns the capability this fetcher serves.
	Capability() Capability

	// Description returns a human-readable description of what this fetcher does.
	Description() string

	// RequiredParams returns the parameter keys this fetcher requires.
	RequiredParams() []string

	// OptionalParams returns the parameter keys this fetcher optionally accepts.
	OptionalParams() []string

	// Fetch retrieves data for the given query parameters.
	// The returned data type depends on the capability:
	//   - Quote          → *models.Quote
	//   - CompanyProfile → *models.CompanyProfile
	//   - CompanyNews    → []models.Article
	//   - SymbolSearch   → []models.SymbolSearchResult
	//   etc.
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrCapabilityNotSupported is returned when a provider doesn't serve a capability.
type ErrCapabilityNotSupported struct {
	Provider   string
	Capability Capability
}

func (e *ErrCapabilityNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support capability %q", e.Provider, e.Capability)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
