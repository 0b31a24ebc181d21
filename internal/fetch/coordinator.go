// Package fetch implements the hybrid fetch coordinator. For each requested
// capability it walks the registry's provider chain in priority order, gives
// every attempt its own timeout, stops at the first success, and reports an
// aggregate failure carrying every attempt's classified reason when the whole
// chain is exhausted.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// DefaultAttemptTimeout bounds a single provider attempt. A hung provider
// must never stall the whole chain.
const DefaultAttemptTimeout = 10 * time.Second

// Attempt records one provider try in the waterfall.
type Attempt struct {
	Provider string                 `json:"provider"`
	Reason   provider.FailureReason `json:"reason"`
	Detail   string                 `json:"detail"`
	Elapsed  time.Duration          `json:"elapsed"`
}

// AggregateFailure is returned when every provider in the chain failed.
// It preserves the classified reason of each attempt, in the order tried.
type AggregateFailure struct {
	Capability provider.Capability
	Attempts   []Attempt
}

func (e *AggregateFailure) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("no providers available for %s", e.Capability)
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, a.Reason))
	}
	return fmt.Sprintf("all providers failed for %s (%s)", e.Capability, strings.Join(parts, "; "))
}

// Info converts the aggregate into the session-level failure record. The
// headline reason is the primary provider's, since that is the one callers
// configured to trust first.
func (e *AggregateFailure) Info() *models.FailureInfo {
	info := &models.FailureInfo{
		Reason:  string(provider.ReasonNetworkError),
		Message: e.Error(),
	}
	for i, a := range e.Attempts {
		if i == 0 {
			info.Reason = string(a.Reason)
		}
		info.Attempts = append(info.Attempts, fmt.Sprintf("%s: %s", a.Provider, a.Reason))
	}
	return info
}

// journalCap bounds the in-memory attempt journal. Old entries are dropped.
const journalCap = 256

// JournalEntry is one recorded provider attempt, success or failure.
type JournalEntry struct {
	Time       time.Time              `json:"time"`
	Capability provider.Capability    `json:"capability"`
	Provider   string                 `json:"provider"`
	OK         bool                   `json:"ok"`
	Cached     bool                   `json:"cached,omitempty"`
	Reason     provider.FailureReason `json:"reason,omitempty"`
	Elapsed    time.Duration          `json:"elapsed"`
}

// Coordinator routes capability fetches through the provider chain.
type Coordinator struct {
	registry       *provider.Registry
	logger         *slog.Logger
	attemptTimeout time.Duration

	mu      sync.Mutex
	journal []JournalEntry
}

// NewCoordinator creates a coordinator over the given registry. A zero
// attemptTimeout falls back to DefaultAttemptTimeout.
func NewCoordinator(reg *provider.Registry, logger *slog.Logger, attemptTimeout time.Duration) *Coordinator {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	return &Coordinator{
		registry:       reg,
		logger:         logger,
		attemptTimeout: attemptTimeout,
	}
}

// Fetch walks the provider chain for cap in priority order and returns the
// first successful result. Attempts run strictly sequentially: the fallback
// only fires after the preferred provider has definitively failed. When no
// provider succeeds the returned error is an *AggregateFailure listing every
// attempt with its classified reason.
func (c *Coordinator) Fetch(ctx context.Context, cap provider.Capability, params provider.QueryParams) (*provider.FetchResult, error) {
	chain := c.registry.ProvidersFor(cap)
	agg := &AggregateFailure{Capability: cap}
	if len(chain) == 0 {
		return nil, agg
	}

	for _, name := range chain {
		attemptParams := make(provider.QueryParams, len(params)+1)
		for k, v := range params {
			attemptParams[k] = v
		}
		attemptParams[provider.ParamProvider] = name

		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		start := time.Now()
		result, err := c.registry.Fetch(attemptCtx, cap, attemptParams)
		elapsed := time.Since(start)
		cancel()

		if err == nil {
			c.record(JournalEntry{
				Time:       start,
				Capability: cap,
				Provider:   name,
				OK:         true,
				Cached:     result.Cached,
				Elapsed:    elapsed,
			})
			c.logger.Debug("fetch succeeded",
				"capability", cap,
				"provider", name,
				"cached", result.Cached,
				"elapsed", elapsed,
				"attempt", len(agg.Attempts)+1)
			return result, nil
		}

		failure := provider.NewFailure(name, cap, err)
		agg.Attempts = append(agg.Attempts, Attempt{
			Provider: name,
			Reason:   failure.Reason,
			Detail:   failure.Err.Error(),
			Elapsed:  elapsed,
		})
		c.record(JournalEntry{
			Time:       start,
			Capability: cap,
			Provider:   name,
			Reason:     failure.Reason,
			Elapsed:    elapsed,
		})
		c.logger.Warn("fetch attempt failed",
			"capability", cap,
			"provider", name,
			"reason", failure.Reason,
			"elapsed", elapsed)

		// A cancelled parent means the caller is gone; further attempts
		// would all fail the same way.
		if ctx.Err() != nil {
			break
		}
	}

	c.logger.Error("all providers failed",
		"capability", cap,
		"attempts", len(agg.Attempts))
	return nil, agg
}

// FetchFrom fetches from one named provider only, without fallback. The news
// aggregator uses it to fan out to every source in parallel.
func (c *Coordinator) FetchFrom(ctx context.Context, providerName string, cap provider.Capability, params provider.QueryParams) (*provider.FetchResult, error) {
	attemptParams := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		attemptParams[k] = v
	}
	attemptParams[provider.ParamProvider] = providerName

	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	start := time.Now()
	result, err := c.registry.Fetch(attemptCtx, cap, attemptParams)
	elapsed := time.Since(start)
	if err != nil {
		c.record(JournalEntry{
			Time:       start,
			Capability: cap,
			Provider:   providerName,
			Reason:     provider.NewFailure(providerName, cap, err).Reason,
			Elapsed:    elapsed,
		})
		return nil, err
	}
	c.record(JournalEntry{
		Time:       start,
		Capability: cap,
		Provider:   providerName,
		OK:         true,
		Cached:     result.Cached,
		Elapsed:    elapsed,
	})
	return result, nil
}

// record appends to the attempt journal, dropping the oldest entries past
// the cap. It never blocks the response path beyond the mutex.
func (c *Coordinator) record(e JournalEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.journal = append(c.journal, e)
	if len(c.journal) > journalCap {
		c.journal = c.journal[len(c.journal)-journalCap:]
	}
}

// Attempts returns a snapshot of the recent attempt journal, oldest first.
func (c *Coordinator) Attempts() []JournalEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]JournalEntry, len(c.journal))
	copy(snapshot, c.journal)
	return snapshot
}
