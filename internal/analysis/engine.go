// Package analysis runs the full pipeline for one query: resolve the symbol,
// fetch every financial dataset through the provider waterfall, aggregate
// news, classify sentiment, and persist everything into a durable session.
// The pipeline degrades gracefully: a dataset that no provider could serve
// becomes a per-kind failure marker, never a failed report.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/tickerlens/internal/fetch"
	"github.com/seenimoa/tickerlens/internal/news"
	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/internal/resolve"
	"github.com/seenimoa/tickerlens/internal/sentiment"
	"github.com/seenimoa/tickerlens/internal/session"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// datasetCaps maps each financial dataset slot to the capability that
// fills it. News and sentiment are handled separately.
var datasetCaps = []struct {
	kind models.DatasetKind
	cap  provider.Capability
}{
	{models.DatasetQuote, provider.CapQuote},
	{models.DatasetProfile, provider.CapCompanyProfile},
	{models.DatasetIncome, provider.CapIncomeStatement},
	{models.DatasetBalance, provider.CapBalanceSheet},
	{models.DatasetCashFlow, provider.CapCashFlowStatement},
	{models.DatasetMetrics, provider.CapKeyMetrics},
	{models.DatasetRatios, provider.CapFinancialRatios},
	{models.DatasetPrices, provider.CapHistoricalPrices},
}

// Report is the structured outcome of one analysis run.
type Report struct {
	SessionID string                                      `json:"session_id"`
	Symbol    *models.Symbol                              `json:"symbol"`
	Trail     []string                                    `json:"resolution_trail,omitempty"`
	Datasets  map[models.DatasetKind]models.DatasetResult `json:"datasets"`
	Articles  []models.Article                            `json:"articles"`
	Sentiment *models.SentimentVerdict                    `json:"sentiment"`
	Partial   bool                                        `json:"partial"` // at least one dataset failed
}

// Engine wires the pipeline stages together.
type Engine struct {
	store       *session.Store
	resolver    *resolve.Resolver
	coordinator *fetch.Coordinator
	aggregator  *news.Aggregator
	classifier  *sentiment.Classifier
	logger      *slog.Logger
	maxArticles int
}

// NewEngine creates the pipeline engine.
func NewEngine(
	store *session.Store,
	resolver *resolve.Resolver,
	coordinator *fetch.Coordinator,
	aggregator *news.Aggregator,
	classifier *sentiment.Classifier,
	logger *slog.Logger,
	maxArticles int,
) *Engine {
	if maxArticles <= 0 {
		maxArticles = news.DefaultMaxArticles
	}
	return &Engine{
		store:       store,
		resolver:    resolver,
		coordinator: coordinator,
		aggregator:  aggregator,
		classifier:  classifier,
		logger:      logger,
		maxArticles: maxArticles,
	}
}

// Resolve resolves a query without running the rest of the pipeline.
func (e *Engine) Resolve(ctx context.Context, query string) (*resolve.Resolution, error) {
	return e.resolver.Resolve(ctx, query)
}

// Analyze runs the full pipeline. With an empty sessionID a new session is
// created; an existing session reuses its already-resolved symbol without
// touching the network resolution stages. A cancelled context abandons the
// run before anything new is persisted.
func (e *Engine) Analyze(ctx context.Context, sessionID, query string) (*Report, error) {
	record, err := e.session(ctx, sessionID, query)
	if err != nil {
		return nil, err
	}

	sym := record.Symbol
	if sym == nil {
		resolution, err := e.resolver.Resolve(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", query, err)
		}
		sym = resolution.Symbol
		if err := e.store.SetSymbol(ctx, record.ID, sym, resolution.TrailStrings()); err != nil {
			return nil, err
		}
	} else {
		e.logger.Debug("reusing resolved symbol", "session", record.ID, "ticker", sym.Ticker)
	}

	results := e.fetchDatasets(ctx, sym.Ticker)

	articles, verdict := e.newsAndSentiment(ctx, sym.Ticker)
	results = append(results, datasetFromValue(models.DatasetNews, "aggregate", articles))
	results = append(results, datasetFromValue(models.DatasetSentiment, "classifier", verdict))

	// Results from a cancelled run must not reach the store.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	partial := false
	for _, ds := range results {
		if !ds.OK() {
			partial = true
		}
		if err := e.store.PutDataset(ctx, record.ID, ds); err != nil {
			return nil, err
		}
	}

	stored, err := e.store.Get(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	e.logger.Info("analysis complete",
		"session", stored.ID,
		"ticker", sym.Ticker,
		"datasets", len(results),
		"articles", len(articles),
		"sentiment", verdict.Label,
		"partial", partial)

	return &Report{
		SessionID: stored.ID,
		Symbol:    sym,
		Trail:     stored.ResolutionTrail,
		Datasets:  stored.Datasets,
		Articles:  articles,
		Sentiment: verdict,
		Partial:   partial,
	}, nil
}

// session loads the existing session or creates a fresh one.
func (e *Engine) session(ctx context.Context, sessionID, query string) (*models.SessionRecord, error) {
	if sessionID == "" {
		return e.store.Create(ctx, query)
	}
	return e.store.Get(ctx, sessionID)
}

// fetchDatasets runs every financial capability concurrently. Each dataset
// is its own sequential provider waterfall; the capabilities are independent
// of each other and fan out.
func (e *Engine) fetchDatasets(ctx context.Context, ticker string) []models.DatasetResult {
	results := make([]models.DatasetResult, len(datasetCaps))
	g, gctx := errgroup.WithContext(ctx)
	for i, dc := range datasetCaps {
		g.Go(func() error {
			result, err := e.coordinator.Fetch(gctx, dc.cap, provider.QueryParams{
				provider.ParamSymbol: ticker,
			})
			if err != nil {
				results[i] = models.DatasetResult{
					Kind:      dc.kind,
					Err:       failureInfo(err),
					FetchedAt: time.Now().UTC(),
				}
				return nil
			}
			results[i] = datasetFromValue(dc.kind, result.Provider, result.Data)
			return nil
		})
	}
	// Branches never return errors; Wait only propagates context teardown.
	_ = g.Wait()
	return results
}

// newsAndSentiment aggregates the feed and classifies it. Both are always
// produced: an empty feed classifies to a neutral verdict.
func (e *Engine) newsAndSentiment(ctx context.Context, ticker string) ([]models.Article, *models.SentimentVerdict) {
	articles, err := e.aggregator.Aggregate(ctx, ticker, e.maxArticles)
	if err != nil {
		e.logger.Warn("news aggregation failed", "ticker", ticker, "error", err)
		articles = []models.Article{}
	}
	verdict := e.classifier.Classify(articles)
	return articles, &verdict
}

// datasetFromValue marshals a fetched value into a stored dataset. The
// payload is canonical JSON so the record survives gob encoding without
// interface registration.
func datasetFromValue(kind models.DatasetKind, source string, value any) models.DatasetResult {
	payload, err := json.Marshal(value)
	if err != nil {
		return models.DatasetResult{
			Kind: kind,
			Err: &models.FailureInfo{
				Reason:  string(provider.ReasonMalformedResponse),
				Message: fmt.Sprintf("encode %s payload: %v", kind, err),
			},
			FetchedAt: time.Now().UTC(),
		}
	}
	return models.DatasetResult{
		Kind:      kind,
		Source:    source,
		Payload:   payload,
		FetchedAt: time.Now().UTC(),
	}
}

// failureInfo converts a coordinator error into the stored failure record.
func failureInfo(err error) *models.FailureInfo {
	var agg *fetch.AggregateFailure
	if errors.As(err, &agg) {
		return agg.Info()
	}
	return &models.FailureInfo{
		Reason:  string(provider.ReasonNetworkError),
		Message: err.Error(),
	}
}
