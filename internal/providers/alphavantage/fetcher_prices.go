package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// --- HistoricalPrices fetcher (TIME_SERIES_DAILY_ADJUSTED) ---

type timeSeriesFetcher struct {
	provider.BaseFetcher
}

func newTimeSeriesFetcher() *timeSeriesFetcher {
	return &timeSeriesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapHistoricalPrices,
			"Daily adjusted time series from Alpha Vantage",
			[]string{provider.ParamSymbol},
			nil,
			1*time.Hour, 5, time.Second,
		),
	}
}

func (f *timeSeriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_av_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	u := avQuery("TIME_SERIES_DAILY_ADJUSTED", apiKey, url.Values{
		"symbol":     {symbol},
		"outputsize": {"compact"},
	})
	var resp avTimeSeries
	if err := fetchAVJSON(ctx, provider.CapHistoricalPrices, u, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage time series %s: %w", symbol, err)
	}
	if len(resp.Daily) == 0 {
		return nil, provider.NotFoundError(providerName, provider.CapHistoricalPrices, "no time series for "+symbol)
	}

	// The series arrives keyed by date; order most recent first.
	dates := make([]string, 0, len(resp.Daily))
	for d := range resp.Daily {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	bars := make([]models.PriceBar, 0, len(dates))
	for _, d := range dates {
		bar := resp.Daily[d]
		bars = append(bars, models.PriceBar{
			Date:     d,
			Open:     parseFloat(bar.Open),
			High:     parseFloat(bar.High),
			Low:      parseFloat(bar.Low),
			Close:    parseFloat(bar.Close),
			AdjClose: parseFloat(bar.AdjustedClose),
			Volume:   parseInt(bar.Volume),
		})
	}
	series := &models.PriceSeries{Ticker: symbol, Bars: bars}

	f.CacheSetTTL(cacheKey, series, 1*time.Hour)
	return newResult(series), nil
}
