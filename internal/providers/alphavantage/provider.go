// Package alphavantage implements the Alpha Vantage data provider. It serves
// quotes, company overviews, financial statements, daily price history,
// symbol search, and news, and acts as the fallback behind FMP in the
// default chain.
//
// Alpha Vantage returns quota errors with HTTP 200 and a "Note" or
// "Information" field in the JSON body, so every fetch checks for those
// before decoding the payload.
//
// Free tier: 25 requests/day.
// Docs: https://www.alphavantage.co/documentation/
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/tickerlens/internal/infra"
	"github.com/seenimoa/tickerlens/internal/provider"
)

const (
	providerName = "alphavantage"
	credAPIKey   = "api_key"
)

// baseURL is a var so tests can point the provider at a local server.
var baseURL = "https://www.alphavantage.co"

// Provider implements provider.Provider for Alpha Vantage.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

// New creates a new Alpha Vantage provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Alpha Vantage - fallback market data and news",
			"https://www.alphavantage.co",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Alpha Vantage API key from alphavantage.co",
					Required:    true,
					EnvVar:      "ALPHAVANTAGE_API_KEY",
				},
			},
		),
	}

	p.RegisterFetcher(newGlobalQuoteFetcher())
	p.RegisterFetcher(newOverviewFetcher())
	p.RegisterFetcher(newSymbolSearchFetcher())
	p.RegisterFetcher(newIncomeStatementFetcher())
	p.RegisterFetcher(newBalanceSheetFetcher())
	p.RegisterFetcher(newCashFlowFetcher())
	p.RegisterFetcher(newTimeSeriesFetcher())
	p.RegisterFetcher(newNewsSentimentFetcher())

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

// Ping checks connectivity to Alpha Vantage.
func (p *Provider) Ping(ctx context.Context) error {
	u := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=AAPL&apikey=%s", baseURL, p.apiKey)
	body, _, err := infra.DoGet(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("alphavantage ping: %w", err)
	}
	body.Close()
	return nil
}

// APIKey returns the stored API key (used by fetchers).
func (p *Provider) APIKey() string {
	return p.apiKey
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// auto-injects the API key into query params before delegating.
func (p *Provider) Fetcher(cap provider.Capability) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(cap)
	if inner == nil {
		return nil
	}
	return &apiKeyInjector{inner: inner, apiKey: &p.apiKey}
}

// apiKeyInjector wraps a Fetcher and injects the Alpha Vantage API key.
type apiKeyInjector struct {
	inner  provider.Fetcher
	apiKey *string
}

func (w *apiKeyInjector) Capability() provider.Capability { return w.inner.Capability() }
func (w *apiKeyInjector) Description() string             { return w.inner.Description() }
func (w *apiKeyInjector) RequiredParams() []string        { return w.inner.RequiredParams() }
func (w *apiKeyInjector) OptionalParams() []string        { return w.inner.OptionalParams() }

func (w *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched["_av_api_key"] = *w.apiKey
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

// avQuery builds a /query URL for the given function and extra params.
func avQuery(function, apiKey string, extra url.Values) string {
	q := url.Values{}
	q.Set("function", function)
	q.Set("apikey", apiKey)
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return baseURL + "/query?" + q.Encode()
}

// avEnvelope catches Alpha Vantage's soft errors, which arrive with HTTP 200.
type avEnvelope struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// fetchAVJSON performs a GET request, surfaces soft errors, and decodes into dest.
func fetchAVJSON(ctx context.Context, cap provider.Capability, u string, dest any) error {
	body, _, err := infra.DoGet(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env avEnvelope
	if err := json.Unmarshal(data, &env); err == nil {
		if env.Note != "" {
			return provider.RateLimitedError(providerName, cap, env.Note)
		}
		if env.Information != "" {
			return provider.RateLimitedError(providerName, cap, env.Information)
		}
		if env.ErrorMessage != "" {
			return provider.NotFoundError(providerName, cap, env.ErrorMessage)
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return provider.MalformedError(providerName, cap, "parse Alpha Vantage JSON: "+err.Error())
	}
	return nil
}

// parseFloat converts Alpha Vantage's stringly-typed numbers. "None" and
// empty strings come back as zero.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
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
