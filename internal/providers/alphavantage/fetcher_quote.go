package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// --- Quote fetcher (GLOBAL_QUOTE) ---

type globalQuoteFetcher struct {
	provider.BaseFetcher
}

func newGlobalQuoteFetcher() *globalQuoteFetcher {
	return &globalQuoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapQuote,
			"Global quote from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Minute, 5, time.Second,
		),
	}
}

func (f *globalQuoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_av_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	u := avQuery("GLOBAL_QUOTE", apiKey, url.Values{"symbol": {symbol}})
	var resp avGlobalQuote
	if err := fetchAVJSON(ctx, provider.CapQuote, u, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: %w", symbol, err)
	}

	q := resp.GlobalQuote
	if q.Symbol == "" {
		return nil, provider.NotFoundError(providerName, provider.CapQuote, "no quote for "+symbol)
	}

	tradingDay, _ := time.Parse("2006-01-02", q.LatestTradingDay)
	quote := &models.Quote{
		Ticker:    q.Symbol,
		LastPrice: parseFloat(q.Price),
		Change:    parseFloat(q.Change),
		ChangePct: parseFloat(strings.TrimSuffix(q.ChangePercent, "%")),
		Open:      parseFloat(q.Open),
		High:      parseFloat(q.High),
		Low:       parseFloat(q.Low),
		PrevClose: parseFloat(q.PreviousClose),
		Volume:    parseInt(q.Volume),
		Timestamp: tradingDay,
	}

	f.CacheSet(cacheKey, quote)
	return newResult(quote), nil
}

// --- CompanyProfile fetcher (OVERVIEW) ---

type overviewFetcher struct {
	provider.BaseFetcher
}

func newOverviewFetcher() *overviewFetcher {
	return &overviewFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapCompanyProfile,
			"Company overview from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 5, time.Second,
		),
	}
}

func (f *overviewFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_av_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	u := avQuery("OVERVIEW", apiKey, url.Values{"symbol": {symbol}})
	var resp avOverview
	if err := fetchAVJSON(ctx, provider.CapCompanyProfile, u, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage overview %s: %w", symbol, err)
	}

	// OVERVIEW returns an empty object for unknown symbols.
	if resp.Symbol == "" {
		return nil, provider.NotFoundError(providerName, provider.CapCompanyProfile, "no overview for "+symbol)
	}

	profile := &models.CompanyProfile{
		Ticker:      resp.Symbol,
		Name:        resp.Name,
		Exchange:    resp.Exchange,
		Sector:      resp.Sector,
		Industry:    resp.Industry,
		Description: resp.Description,
		Currency:    resp.Currency,
		Country:     resp.Country,
		Website:     resp.OfficialSite,
		MarketCap:   parseFloat(resp.MarketCapitalization),
		Beta:        parseFloat(resp.Beta),
		IsETF:       strings.EqualFold(resp.AssetType, "ETF"),
	}

	f.CacheSetTTL(cacheKey, profile, 1*time.Hour)
	return newResult(profile), nil
}

// --- SymbolSearch fetcher (SYMBOL_SEARCH) ---

type symbolSearchFetcher struct {
	provider.BaseFetcher
}

func newSymbolSearchFetcher() *symbolSearchFetcher {
	return &symbolSearchFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapSymbolSearch,
			"Symbol search from Alpha Vantage",
			[]string{provider.ParamQuery},
			[]string{provider.ParamLimit},
			30*time.Minute, 5, time.Second,
		),
	}
}

func (f *symbolSearchFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	query := params[provider.ParamQuery]
	apiKey := params["_av_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	u := avQuery("SYMBOL_SEARCH", apiKey, url.Values{"keywords": {query}})
	var resp avSearch
	if err := fetchAVJSON(ctx, provider.CapSymbolSearch, u, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage search %q: %w", query, err)
	}

	hits := make([]models.SymbolSearchResult, 0, len(resp.BestMatches))
	for _, m := range resp.BestMatches {
		hits = append(hits, models.SymbolSearchResult{
			Symbol:   m.Symbol,
			Name:     m.Name,
			Exchange: m.Region,
			Type:     m.Type,
		})
	}

	f.CacheSetTTL(cacheKey, hits, 30*time.Minute)
	return newResult(hits), nil
}
