package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// --- Quote fetcher ---

type quoteFetcher struct {
	provider.BaseFetcher
}

func newQuoteFetcher() *quoteFetcher {
	return &quoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapQuote,
			"Real-time quote from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Minute, 5, time.Second,
		),
	}
}

func (f *quoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/quote?symbol=%s", url.QueryEscape(symbol))
	var results []fmpQuote
	if err := fetchFMPJSON(ctx, path, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp quote %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, provider.NotFoundError(providerName, provider.CapQuote, "no quote for "+symbol)
	}

	q := results[0]
	quote := &models.Quote{
		Ticker:    q.Symbol,
		Name:      q.Name,
		LastPrice: q.Price,
		Change:    q.Change,
		ChangePct: q.ChangePercentage,
		Open:      q.Open,
		High:      q.DayHigh,
		Low:       q.DayLow,
		PrevClose: q.PreviousClose,
		Volume:    q.Volume,
		YearHigh:  q.YearHigh,
		YearLow:   q.YearLow,
		MarketCap: q.MarketCap,
		PE:        q.PE,
		Timestamp: time.Unix(q.Timestamp, 0),
	}

	f.CacheSet(cacheKey, quote)
	return newResult(quote), nil
}

// --- CompanyProfile fetcher ---

type profileFetcher struct {
	provider.BaseFetcher
}

func newProfileFetcher() *profileFetcher {
	return &profileFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapCompanyProfile,
			"Company profile from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 5, time.Second,
		),
	}
}

func (f *profileFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/profile?symbol=%s", url.QueryEscape(symbol))
	var results []fmpProfile
	if err := fetchFMPJSON(ctx, path, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp profile %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, provider.NotFoundError(providerName, provider.CapCompanyProfile, "no profile for "+symbol)
	}

	p := results[0]
	profile := &models.CompanyProfile{
		Ticker:      p.Symbol,
		Name:        p.CompanyName,
		Exchange:    p.ExchangeShortName,
		Sector:      p.Sector,
		Industry:    p.Industry,
		Description: p.Description,
		ISIN:        p.ISIN,
		Currency:    p.Currency,
		Country:     p.Country,
		Website:     p.Website,
		MarketCap:   p.MarketCap,
		Beta:        p.Beta,
		IsETF:       p.IsETF || p.IsFund,
	}

	f.CacheSetTTL(cacheKey, profile, 1*time.Hour)
	return newResult(profile), nil
}

// --- SymbolSearch fetcher ---

type symbolSearchFetcher struct {
	provider.BaseFetcher
}

func newSymbolSearchFetcher() *symbolSearchFetcher {
	return &symbolSearchFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapSymbolSearch,
			"Symbol search by company name from Financial Modeling Prep",
			[]string{provider.ParamQuery},
			[]string{provider.ParamLimit},
			30*time.Minute, 5, time.Second,
		),
	}
}

func (f *symbolSearchFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	query := params[provider.ParamQuery]
	apiKey := params["_fmp_api_key"]

	limit := params[provider.ParamLimit]
	if limit == "" {
		limit = "10"
	}

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/search-name?query=%s&limit=%s", url.QueryEscape(query), limit)
	var results []fmpSearchResult
	if err := fetchFMPJSON(ctx, path, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp search %q: %w", query, err)
	}

	hits := make([]models.SymbolSearchResult, 0, len(results))
	for _, r := range results {
		hits = append(hits, models.SymbolSearchResult{
			Symbol:   r.Symbol,
			Name:     r.Name,
			Exchange: r.ExchangeShort,
		})
	}

	f.CacheSetTTL(cacheKey, hits, 30*time.Minute)
	return newResult(hits), nil
}

// --- CompanyNews fetcher ---

type companyNewsFetcher struct {
	provider.BaseFetcher
}

func newCompanyNewsFetcher() *companyNewsFetcher {
	return &companyNewsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapCompanyNews,
			"Stock news articles from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			10*time.Minute, 5, time.Second,
		),
	}
}

func (f *companyNewsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	limit := params[provider.ParamLimit]
	if limit == "" {
		limit = "20"
	}

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/news/stock?symbols=%s&limit=%s", url.QueryEscape(symbol), limit)
	var results []fmpArticle
	if err := fetchFMPJSON(ctx, path, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp news %s: %w", symbol, err)
	}

	articles := make([]models.Article, 0, len(results))
	for _, a := range results {
		published, _ := time.Parse("2006-01-02 15:04:05", a.PublishedDate)
		source := a.Publisher
		if source == "" {
			source = a.Site
		}
		articles = append(articles, models.Article{
			Title:       a.Title,
			URL:         a.URL,
			Source:      source,
			Summary:     a.Text,
			PublishedAt: published,
		})
	}

	f.CacheSetTTL(cacheKey, articles, 10*time.Minute)
	return newResult(articles), nil
}

// --- HistoricalPrices fetcher ---

type historicalPricesFetcher struct {
	provider.BaseFetcher
}

func newHistoricalPricesFetcher() *historicalPricesFetcher {
	return &historicalPricesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapHistoricalPrices,
			"Daily price history from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamFrom, provider.ParamTo},
			1*time.Hour, 5, time.Second,
		),
	}
}

func (f *historicalPricesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	// Default window: the trailing year.
	from := params[provider.ParamFrom]
	if from == "" {
		from = time.Now().AddDate(-1, 0, 0).Format("2006-01-02")
	}
	to := params[provider.ParamTo]
	if to == "" {
		to = time.Now().Format("2006-01-02")
	}

	path := fmt.Sprintf("/historical-price-full/%s?from=%s&to=%s",
		url.PathEscape(symbol), url.QueryEscape(from), url.QueryEscape(to))
	var resp fmpHistorical
	if err := fetchFMPJSON(ctx, path, apiKey, &resp); err != nil {
		return nil, fmt.Errorf("fmp historical prices %s: %w", symbol, err)
	}
	if len(resp.Historical) == 0 {
		return nil, provider.NotFoundError(providerName, provider.CapHistoricalPrices, "no price history for "+symbol)
	}

	bars := make([]models.PriceBar, 0, len(resp.Historical))
	for _, b := range resp.Historical {
		bars = append(bars, models.PriceBar{
			Date:     b.Date,
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: b.AdjClose,
			Volume:   b.Volume,
		})
	}
	series := &models.PriceSeries{Ticker: symbol, Bars: bars}

	f.CacheSetTTL(cacheKey, series, 1*time.Hour)
	return newResult(series), nil
}
