// Package yahoorss implements a keyless news provider backed by the Yahoo
// Finance per-symbol RSS feed. It serves only the CompanyNews capability and
// sits last in the default news fallback chain, so symbol coverage survives
// even when both API-key providers are exhausted.
package yahoorss

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

const providerName = "yahoorss"

// feedURL is a var so tests can point the provider at a local server.
var feedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline"

// Provider implements provider.Provider for the Yahoo Finance RSS feed.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Yahoo RSS provider. No credentials are needed.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance RSS - keyless per-symbol news headlines",
			"https://finance.yahoo.com",
			nil,
		),
	}
	p.RegisterFetcher(newNewsFetcher())
	return p
}

// Ping checks that the feed endpoint answers.
func (p *Provider) Ping(ctx context.Context) error {
	parser := gofeed.NewParser()
	_, err := parser.ParseURLWithContext(feedURL+"?s=AAPL&region=US&lang=en-US", ctx)
	if err != nil {
		return fmt.Errorf("yahoorss ping: %w", err)
	}
	return nil
}

// --- CompanyNews fetcher ---

type newsFetcher struct {
	provider.BaseFetcher
	parser *gofeed.Parser
}

func newNewsFetcher() *newsFetcher {
	return &newsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapCompanyNews,
			"Symbol news headlines from the Yahoo Finance RSS feed",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			10*time.Minute, 2, time.Second,
		),
		parser: gofeed.NewParser(),
	}
}

func (f *newsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return &provider.FetchResult{Data: cached, FetchedAt: time.Now(), Cached: true}, nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s?s=%s&region=US&lang=en-US", feedURL, url.QueryEscape(symbol))
	feed, err := f.parser.ParseURLWithContext(u, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse yahoo RSS %s: %w", symbol, err)
	}
	if len(feed.Items) == 0 {
		return nil, provider.NotFoundError(providerName, provider.CapCompanyNews, "no feed items for "+symbol)
	}

	limit := 20
	if l := params[provider.ParamLimit]; l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(articles) >= limit {
			break
		}
		a := models.Article{
			Title:   item.Title,
			URL:     item.Link,
			Source:  "Yahoo Finance",
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	f.CacheSetTTL(cacheKey, articles, 10*time.Minute)
	return &provider.FetchResult{Data: articles, FetchedAt: time.Now()}, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
