package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// --- CompanyNews fetcher (NEWS_SENTIMENT) ---

type newsSentimentFetcher struct {
	provider.BaseFetcher
}

func newNewsSentimentFetcher() *newsSentimentFetcher {
	return &newsSentimentFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapCompanyNews,
			"Ticker news from Alpha Vantage",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			10*time.Minute, 5, time.Second,
		),
	}
}

func (f *newsSentimentFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_av_api_key"]

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

	u := avQuery("NEWS_SENTIMENT", apiKey, url.Values{
		"tickers": {symbol},
		"limit":   {limit},
	})
	var resp avNewsFeed
	if err := fetchAVJSON(ctx, provider.CapCompanyNews, u, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage news %s: %w", symbol, err)
	}

	articles := make([]models.Article, 0, len(resp.Feed))
	for _, item := range resp.Feed {
		published, _ := time.Parse("20060102T150405", item.TimePublished)
		articles = append(articles, models.Article{
			Title:       item.Title,
			URL:         item.URL,
			Source:      item.Source,
			Summary:     item.Summary,
			PublishedAt: published,
		})
	}

	f.CacheSetTTL(cacheKey, articles, 10*time.Minute)
	return newResult(articles), nil
}
