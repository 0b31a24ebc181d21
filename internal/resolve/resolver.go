// Package resolve turns free-form user input ("apple", "the S&P 500",
// "NVDA") into a canonical trading symbol. Resolution runs a four-stage
// waterfall, cheapest first:
//
//  1. ticker shape: input that already looks like an exchange ticker
//     ("NVDA", "$TSLA", "(TSLA)", "^GSPC") is accepted with no provider calls
//  2. shorthand table: colloquial index and sector names map to their
//     tracking ETFs
//  3. provider symbol search: candidates are scored against the query and
//     accepted above a similarity threshold
//  4. web search: result titles and snippets are scanned for ticker mentions
//     such as "(NASDAQ: TSLA)" or "$TSLA"
//
// Every resolution, successful or not, carries a per-stage trail.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/seenimoa/tickerlens/internal/fetch"
	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// DefaultSimilarityThreshold is the minimum score a symbol-search candidate
// needs in stage 3. Chosen so one-word queries against "Word Inc." names
// clear it while unrelated names do not.
const DefaultSimilarityThreshold = 0.60

// tickerShape matches a bare exchange ticker: 1-5 capital letters with an
// optional class/venue suffix ("BRK.B") or a leading caret for raw index
// symbols ("^GSPC"). Lowercase input never matches; a company name typed in
// lowercase must go through search.
var tickerShape = regexp.MustCompile(`^\^?[A-Z]{1,5}(?:[.\-][A-Z]{1,2})?$`)

// Mention patterns for web search text, tried in order: an exchange prefix
// is the strongest signal, a cashtag the weakest.
var (
	exchangeMention = regexp.MustCompile(`\b(?:NYSE|NASDAQ|AMEX|NYSEARCA|OTC)\s*[:\s]\s*([A-Z]{1,5})\b`)
	cashtagMention  = regexp.MustCompile(`\$([A-Z]{1,5})\b`)
)

// StageOutcome records what one waterfall stage concluded.
type StageOutcome struct {
	Stage  string `json:"stage"`
	Detail string `json:"detail"`
}

func (s StageOutcome) String() string { return s.Stage + ": " + s.Detail }

// Resolution is a successful result together with the trail of stages that
// led to it.
type Resolution struct {
	Symbol *models.Symbol
	Trail  []StageOutcome
}

// TrailStrings flattens the trail for persistence.
func (r *Resolution) TrailStrings() []string {
	out := make([]string, 0, len(r.Trail))
	for _, s := range r.Trail {
		out = append(out, s.String())
	}
	return out
}

// ResolutionFailure is returned when no stage produced a symbol. The trail
// lists every stage tried with its outcome, in order.
type ResolutionFailure struct {
	Query string
	Trail []StageOutcome
}

func (e *ResolutionFailure) Error() string {
	parts := make([]string, 0, len(e.Trail))
	for _, s := range e.Trail {
		parts = append(parts, s.String())
	}
	return fmt.Sprintf("could not resolve %q (%s)", e.Query, strings.Join(parts, "; "))
}

// Resolver runs the resolution waterfall.
type Resolver struct {
	coordinator *fetch.Coordinator
	logger      *slog.Logger
	threshold   float64
}

// NewResolver creates a resolver. A non-positive threshold falls back to
// DefaultSimilarityThreshold.
func NewResolver(coordinator *fetch.Coordinator, logger *slog.Logger, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Resolver{
		coordinator: coordinator,
		logger:      logger,
		threshold:   threshold,
	}
}

// Resolve turns query into a canonical symbol, or a *ResolutionFailure
// describing why every stage came up empty.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Resolution, error) {
	trimmed := strings.TrimSpace(query)
	var trail []StageOutcome
	if trimmed == "" {
		trail = append(trail, StageOutcome{Stage: "input", Detail: "empty query"})
		return nil, &ResolutionFailure{Query: query, Trail: trail}
	}

	// Stage 1: already a ticker.
	if sym, ok := matchTickerShape(trimmed); ok {
		trail = append(trail, StageOutcome{Stage: "ticker-shape", Detail: "accepted " + sym.Ticker})
		r.logger.Debug("resolved by ticker shape", "query", query, "ticker", sym.Ticker)
		return &Resolution{Symbol: sym, Trail: trail}, nil
	}
	trail = append(trail, StageOutcome{Stage: "ticker-shape", Detail: "input is not ticker-shaped"})

	// Stage 2: shorthand table.
	if sym, ok := lookupShorthand(trimmed); ok {
		trail = append(trail, StageOutcome{Stage: "shorthand", Detail: "matched " + sym.Ticker})
		r.logger.Debug("resolved by shorthand", "query", query, "ticker", sym.Ticker)
		return &Resolution{Symbol: &sym, Trail: trail}, nil
	}
	trail = append(trail, StageOutcome{Stage: "shorthand", Detail: "no shorthand entry"})

	// Stage 3: provider symbol search.
	sym, outcome := r.resolveBySearch(ctx, trimmed)
	trail = append(trail, outcome)
	if sym != nil {
		r.logger.Debug("resolved by symbol search", "query", query, "ticker", sym.Ticker)
		return &Resolution{Symbol: sym, Trail: trail}, nil
	}

	// Stage 4: web search extraction.
	sym, outcome = r.resolveByWebSearch(ctx, trimmed)
	trail = append(trail, outcome)
	if sym != nil {
		r.logger.Debug("resolved by web search", "query", query, "ticker", sym.Ticker)
		return &Resolution{Symbol: sym, Trail: trail}, nil
	}

	r.logger.Warn("resolution failed", "query", query)
	return nil, &ResolutionFailure{Query: query, Trail: trail}
}

// matchTickerShape accepts input that is unambiguously a ticker already:
// bare ("NVDA"), cashtag ("$TSLA"), parenthesized ("(TSLA)"), or a caret
// index symbol ("^GSPC").
func matchTickerShape(input string) (*models.Symbol, bool) {
	s := input
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.TrimPrefix(s, "$")

	if !tickerShape.MatchString(s) {
		return nil, false
	}
	sym := &models.Symbol{Ticker: s, AssetClass: models.AssetEquity}
	if strings.HasPrefix(s, "^") {
		sym.AssetClass = models.AssetIndex
	}
	return sym, true
}

// resolveBySearch runs the provider symbol search and scores candidates.
func (r *Resolver) resolveBySearch(ctx context.Context, query string) (*models.Symbol, StageOutcome) {
	result, err := r.coordinator.Fetch(ctx, provider.CapSymbolSearch, provider.QueryParams{
		provider.ParamQuery: query,
	})
	if err != nil {
		return nil, StageOutcome{Stage: "symbol-search", Detail: err.Error()}
	}

	hits, ok := result.Data.([]models.SymbolSearchResult)
	if !ok || len(hits) == 0 {
		return nil, StageOutcome{Stage: "symbol-search", Detail: "no candidates"}
	}

	var best *models.SymbolSearchResult
	var bestScore float64
	for i := range hits {
		score := similarity(query, hits[i].Name)
		// An exact ticker match beats any name score.
		if strings.EqualFold(query, hits[i].Symbol) {
			score = 1
		}
		if score > bestScore {
			bestScore = score
			best = &hits[i]
		}
	}

	if best == nil || bestScore < r.threshold {
		return nil, StageOutcome{
			Stage:  "symbol-search",
			Detail: fmt.Sprintf("best score %.2f below threshold %.2f", bestScore, r.threshold),
		}
	}

	return &models.Symbol{
		Ticker:     best.Symbol,
		AssetClass: assetClassFromType(best.Type),
		Name:       best.Name,
	}, StageOutcome{Stage: "symbol-search", Detail: fmt.Sprintf("matched %s (score %.2f)", best.Symbol, bestScore)}
}

// resolveByWebSearch scans web results for ticker mentions.
func (r *Resolver) resolveByWebSearch(ctx context.Context, query string) (*models.Symbol, StageOutcome) {
	result, err := r.coordinator.Fetch(ctx, provider.CapWebSearch, provider.QueryParams{
		provider.ParamQuery: query + " stock ticker symbol",
	})
	if err != nil {
		return nil, StageOutcome{Stage: "web-search", Detail: err.Error()}
	}

	hits, ok := result.Data.([]models.WebSearchResult)
	if !ok || len(hits) == 0 {
		return nil, StageOutcome{Stage: "web-search", Detail: "no results"}
	}

	for _, pattern := range []*regexp.Regexp{exchangeMention, cashtagMention} {
		for _, h := range hits {
			text := h.Title + " " + h.Snippet
			if m := pattern.FindStringSubmatch(text); m != nil {
				return &models.Symbol{
					Ticker:     m[1],
					AssetClass: models.AssetEquity,
				}, StageOutcome{Stage: "web-search", Detail: "extracted " + m[1]}
			}
		}
	}

	return nil, StageOutcome{Stage: "web-search", Detail: "no ticker mention in results"}
}

// assetClassFromType maps a provider-reported instrument type onto the
// closed asset class set. Unknown types default to equity.
func assetClassFromType(t string) models.AssetClass {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "etf", "fund", "mutual fund":
		return models.AssetETF
	case "index":
		return models.AssetIndex
	default:
		return models.AssetEquity
	}
}
