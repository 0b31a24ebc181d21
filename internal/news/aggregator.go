// Package news gathers company news from every news-capable provider at
// once, merges the streams, and returns a deduplicated, recency-sorted feed.
// Unlike quote fetching, news is additive: more sources mean better coverage,
// so all providers are queried concurrently rather than walked as a fallback
// chain.
package news

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/tickerlens/internal/fetch"
	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// DefaultMaxArticles caps the merged feed.
const DefaultMaxArticles = 20

// Aggregator fans a news request out to all providers serving company news.
type Aggregator struct {
	registry    *provider.Registry
	coordinator *fetch.Coordinator
	logger      *slog.Logger
	maxArticles int
}

// NewAggregator creates an aggregator. A non-positive maxArticles falls back
// to DefaultMaxArticles.
func NewAggregator(reg *provider.Registry, coordinator *fetch.Coordinator, logger *slog.Logger, maxArticles int) *Aggregator {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	return &Aggregator{
		registry:    reg,
		coordinator: coordinator,
		logger:      logger,
		maxArticles: maxArticles,
	}
}

// Aggregate queries every company-news provider concurrently and merges the
// results, capped at maxArticles (non-positive means the aggregator's
// default). A provider failure is logged and skipped, never fatal: the feed
// from the remaining sources is still returned. With no news providers
// registered the feed is simply empty.
//
// Duplicates are dropped on normalized title or exact URL. When the same
// story arrives from several providers, the copy from the higher-priority
// provider wins.
func (a *Aggregator) Aggregate(ctx context.Context, ticker string, maxArticles int) ([]models.Article, error) {
	if maxArticles <= 0 {
		maxArticles = a.maxArticles
	}
	chain := a.registry.ProvidersFor(provider.CapCompanyNews)
	if len(chain) == 0 {
		a.logger.Debug("no news providers registered")
		return []models.Article{}, nil
	}

	// Branch results stay indexed by chain position so the merge below can
	// honor provider priority regardless of completion order.
	branches := make([][]models.Article, len(chain))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range chain {
		g.Go(func() error {
			result, err := a.coordinator.FetchFrom(gctx, name, provider.CapCompanyNews,
				provider.QueryParams{provider.ParamSymbol: ticker})
			if err != nil {
				a.logger.Warn("news source failed",
					"provider", name,
					"symbol", ticker,
					"error", err)
				return nil
			}
			articles, ok := result.Data.([]models.Article)
			if !ok {
				a.logger.Warn("news source returned unexpected payload",
					"provider", name,
					"symbol", ticker)
				return nil
			}
			branches[i] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := a.merge(branches, maxArticles)
	a.logger.Debug("news aggregated",
		"symbol", ticker,
		"sources", len(chain),
		"articles", len(merged))
	return merged, nil
}

// merge deduplicates the branch results in priority order, sorts by recency,
// and applies the article cap.
func (a *Aggregator) merge(branches [][]models.Article, maxArticles int) []models.Article {
	seenTitle := make(map[string]bool)
	seenURL := make(map[string]bool)
	merged := make([]models.Article, 0)

	for _, branch := range branches {
		for _, art := range branch {
			key := art.DedupeKey()
			if key != "" && seenTitle[key] {
				continue
			}
			if art.URL != "" && seenURL[art.URL] {
				continue
			}
			if key != "" {
				seenTitle[key] = true
			}
			if art.URL != "" {
				seenURL[art.URL] = true
			}
			merged = append(merged, art)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	if len(merged) > maxArticles {
		merged = merged[:maxArticles]
	}
	return merged
}
