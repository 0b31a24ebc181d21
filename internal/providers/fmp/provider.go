// Package fmp implements the Financial Modeling Prep (FMP) data provider.
// FMP offers comprehensive financial data via a REST API with API key
// authentication. It serves quotes, company profiles, financial statements,
// key metrics, financial ratios, daily price history, symbol search, and
// company news, and is the primary provider in the default fallback chain.
//
// Free tier: 250 requests/day.
// Docs: https://site.financialmodelingprep.com/developer/docs
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/seenimoa/tickerlens/internal/infra"
	"github.com/seenimoa/tickerlens/internal/provider"
)

const (
	providerName = "fmp"
	credAPIKey   = "api_key"
)

// baseURL is a var so tests can point the provider at a local server.
var baseURL = "https://financialmodelingprep.com/stable"

// Provider implements provider.Provider for FMP.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

// New creates a new FMP provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Financial Modeling Prep - comprehensive financial data",
			"https://financialmodelingprep.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "FMP API key from financialmodelingprep.com",
					Required:    true,
					EnvVar:      "FMP_API_KEY",
				},
			},
		),
	}

	// --- Quotes / Profile / Search ---
	p.RegisterFetcher(newQuoteFetcher())
	p.RegisterFetcher(newProfileFetcher())
	p.RegisterFetcher(newSymbolSearchFetcher())

	// --- Fundamentals ---
	p.RegisterFetcher(newIncomeStatementFetcher())
	p.RegisterFetcher(newBalanceSheetFetcher())
	p.RegisterFetcher(newCashFlowFetcher())
	p.RegisterFetcher(newKeyMetricsFetcher())
	p.RegisterFetcher(newRatiosFetcher())

	// --- Market data ---
	p.RegisterFetcher(newHistoricalPricesFetcher())

	// --- News ---
	p.RegisterFetcher(newCompanyNewsFetcher())

	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// Ping checks connectivity to FMP.
func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/quote?symbol=AAPL&apikey=%s", baseURL, p.apiKey)
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return fmt.Errorf("fmp ping: %w", err)
	}
	body.Close()
	return nil
}

// APIKey returns the stored API key (used by fetchers).
func (p *Provider) APIKey() string {
	return p.apiKey
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// auto-injects the FMP API key into query params before delegating.
func (p *Provider) Fetcher(cap provider.Capability) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(cap)
	if inner == nil {
		return nil
	}
	return &apiKeyInjector{inner: inner, apiKey: &p.apiKey}
}

// apiKeyInjector wraps a Fetcher and injects the FMP API key.
type apiKeyInjector struct {
	inner  provider.Fetcher
	apiKey *string
}

func (w *apiKeyInjector) Capability() provider.Capability { return w.inner.Capability() }
func (w *apiKeyInjector) Description() string             { return w.inner.Description() }
func (w *apiKeyInjector) RequiredParams() []string        { return w.inner.RequiredParams() }
func (w *apiKeyInjector) OptionalParams() []string        { return w.inner.OptionalParams() }

func (w *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	// Inject API key so fetchers don't need to know about credential management.
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched["_fmp_api_key"] = *w.apiKey
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fmpURL builds a full FMP API URL with the API key appended.
func fmpURL(path, apiKey string) string {
	sep := "?"
	if containsQuery(path) {
		sep = "&"
	}
	return baseURL + path + sep + "apikey=" + apiKey
}

func containsQuery(s string) bool {
	for _, c := range s {
		if c == '?' {
			return true
		}
	}
	return false
}

// fetchFMPJSON performs a GET request to FMP and decodes the response.
func fetchFMPJSON(ctx context.Context, path, apiKey string, dest any) error {
	url := fmpURL(path, apiKey)
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return provider.MalformedError(providerName, "", "parse FMP JSON: "+err.Error())
	}
	return nil
}

// newResult creates a FetchResult.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// newCachedResult creates a cached FetchResult.
func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    true,
	}
}
