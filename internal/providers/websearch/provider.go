// Package websearch implements a keyless general web search provider backed
// by the DuckDuckGo HTML endpoint. It serves only the WebSearch capability,
// which the resolver uses as its last-resort stage for queries no financial
// provider recognizes.
package websearch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/tickerlens/internal/infra"
	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

const providerName = "websearch"

// searchURL is a var so tests can point the provider at a local server.
var searchURL = "https://html.duckduckgo.com/html/"

// Provider implements provider.Provider for DuckDuckGo HTML search.
type Provider struct {
	provider.BaseProvider
}

// New creates a new web search provider. No credentials are needed.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"DuckDuckGo HTML - keyless general web search",
			"https://duckduckgo.com",
			nil,
		),
	}
	p.RegisterFetcher(newSearchFetcher())
	return p
}

// Ping checks that the search endpoint answers.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, searchURL+"?q=ping", nil)
	if err != nil {
		return fmt.Errorf("websearch ping: %w", err)
	}
	body.Close()
	return nil
}

// --- WebSearch fetcher ---

type searchFetcher struct {
	provider.BaseFetcher
}

func newSearchFetcher() *searchFetcher {
	return &searchFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapWebSearch,
			"General web search via the DuckDuckGo HTML endpoint",
			[]string{provider.ParamQuery},
			[]string{provider.ParamLimit},
			15*time.Minute, 1, time.Second,
		),
	}
}

func (f *searchFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	query := params[provider.ParamQuery]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return &provider.FetchResult{Data: cached, FetchedAt: time.Now(), Cached: true}, nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	u := searchURL + "?q=" + url.QueryEscape(query)
	body, _, err := infra.DoGet(ctx, u, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("websearch %q: %w", query, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, provider.MalformedError(providerName, provider.CapWebSearch, "parse search HTML: "+err.Error())
	}

	limit := 10
	if l := params[provider.ParamLimit]; l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	var hits []models.WebSearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find(".result__a").First()
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		if title == "" || href == "" {
			return true
		}
		hits = append(hits, models.WebSearchResult{
			Title:   title,
			URL:     unwrapRedirect(href),
			Snippet: snippet,
		})
		return len(hits) < limit
	})

	f.CacheSetTTL(cacheKey, hits, 15*time.Minute)
	return &provider.FetchResult{Data: hits, FetchedAt: time.Now()}, nil
}

// unwrapRedirect decodes DuckDuckGo's /l/?uddg=... redirect links back to the
// target URL. Direct links pass through unchanged.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
