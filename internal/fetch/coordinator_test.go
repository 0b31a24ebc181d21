package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seenimoa/tickerlens/internal/infra"
	"github.com/seenimoa/tickerlens/internal/logger"
	"github.com/seenimoa/tickerlens/internal/provider"
)

// scriptedFetcher fails or succeeds according to its script.
type scriptedFetcher struct {
	provider.BaseFetcher
	fetchFn func(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error)
	calls   int
}

func (f *scriptedFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	f.calls++
	return f.fetchFn(ctx, params)
}

type scriptedProvider struct {
	provider.BaseProvider
}

func newScriptedProvider(name string, cap provider.Capability, fn func(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error)) (*scriptedProvider, *scriptedFetcher) {
	p := &scriptedProvider{
		BaseProvider: provider.NewBaseProvider(name, "scripted "+name, "https://example.com", nil),
	}
	f := &scriptedFetcher{
		BaseFetcher: provider.NewBaseFetcher(cap, "scripted", []string{provider.ParamSymbol}, nil),
		fetchFn:     fn,
	}
	p.RegisterFetcher(f)
	return p, f
}

func succeedWith(data any) func(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return func(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
		return &provider.FetchResult{Data: data, FetchedAt: time.Now()}, nil
	}
}

func failWith(err error) func(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return func(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
		return nil, err
	}
}

func testCoordinator(reg *provider.Registry) *Coordinator {
	return NewCoordinator(reg, logger.Default("fetch-test"), 2*time.Second)
}

func TestFetchFirstProviderWins(t *testing.T) {
	reg := provider.NewRegistry()
	p1, f1 := newScriptedProvider("primary", provider.CapQuote, succeedWith("primary-data"))
	p2, f2 := newScriptedProvider("fallback", provider.CapQuote, succeedWith("fallback-data"))
	_ = reg.Register(p1)
	_ = reg.Register(p2)

	c := testCoordinator(reg)
	result, err := c.Fetch(context.Background(), provider.CapQuote, provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Data != "primary-data" {
		t.Errorf("expected primary data, got %v", result.Data)
	}
	if result.Provider != "primary" {
		t.Errorf("expected provider primary, got %s", result.Provider)
	}
	// The fallback must not be touched when the primary succeeds.
	if f2.calls != 0 {
		t.Errorf("fallback called %d times, want 0", f2.calls)
	}
	if f1.calls != 1 {
		t.Errorf("primary called %d times, want 1", f1.calls)
	}
}

func TestFetchFallsBackOnFailure(t *testing.T) {
	reg := provider.NewRegistry()
	p1, f1 := newScriptedProvider("primary", provider.CapQuote,
		failWith(&infra.ErrHTTP{StatusCode: 429, Status: "429 Too Many Requests"}))
	p2, _ := newScriptedProvider("fallback", provider.CapQuote, succeedWith("fallback-data"))
	_ = reg.Register(p1)
	_ = reg.Register(p2)

	c := testCoordinator(reg)
	result, err := c.Fetch(context.Background(), provider.CapQuote, provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Data != "fallback-data" || result.Provider != "fallback" {
		t.Errorf("expected fallback result, got %v from %s", result.Data, result.Provider)
	}
	if f1.calls != 1 {
		t.Errorf("primary called %d times, want 1", f1.calls)
	}
}

func TestFetchAggregatesAllFailures(t *testing.T) {
	reg := provider.NewRegistry()
	p1, _ := newScriptedProvider("primary", provider.CapQuote,
		failWith(&infra.ErrHTTP{StatusCode: 429, Status: "429 Too Many Requests"}))
	p2, _ := newScriptedProvider("fallback", provider.CapQuote,
		failWith(&infra.ErrHTTP{StatusCode: 404, Status: "404 Not Found"}))
	_ = reg.Register(p1)
	_ = reg.Register(p2)

	c := testCoordinator(reg)
	_, err := c.Fetch(context.Background(), provider.CapQuote, provider.QueryParams{provider.ParamSymbol: "ZZZZ"})
	if err == nil {
		t.Fatal("expected error when all providers fail")
	}

	var agg *AggregateFailure
	if !errors.As(err, &agg) {
		t.Fatalf("expected *AggregateFailure, got %T: %v", err, err)
	}
	if len(agg.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(agg.Attempts))
	}
	if agg.Attempts[0].Provider != "primary" || agg.Attempts[0].Reason != provider.ReasonRateLimited {
		t.Errorf("unexpected first attempt: %+v", agg.Attempts[0])
	}
	if agg.Attempts[1].Provider != "fallback" || agg.Attempts[1].Reason != provider.ReasonNotFound {
		t.Errorf("unexpected second attempt: %+v", agg.Attempts[1])
	}

	// FailureInfo keeps the primary's reason as the headline.
	info := agg.Info()
	if info.Reason != string(provider.ReasonRateLimited) {
		t.Errorf("expected headline reason rate-limited, got %s", info.Reason)
	}
	if len(info.Attempts) != 2 {
		t.Errorf("expected 2 journal entries, got %d", len(info.Attempts))
	}
}

func TestFetchNoProviders(t *testing.T) {
	reg := provider.NewRegistry()
	c := testCoordinator(reg)

	_, err := c.Fetch(context.Background(), provider.CapQuote, provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err == nil {
		t.Fatal("expected error with empty registry")
	}
	var agg *AggregateFailure
	if !errors.As(err, &agg) {
		t.Fatalf("expected *AggregateFailure, got %T", err)
	}
	if len(agg.Attempts) != 0 {
		t.Errorf("expected 0 attempts, got %d", len(agg.Attempts))
	}
}

func TestFetchAttemptTimeout(t *testing.T) {
	reg := provider.NewRegistry()
	slow, _ := newScriptedProvider("slow", provider.CapQuote,
		func(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
			<-ctx.Done() // hang until the per-attempt deadline fires
			return nil, ctx.Err()
		})
	fast, _ := newScriptedProvider("fast", provider.CapQuote, succeedWith("fast-data"))
	_ = reg.Register(slow)
	_ = reg.Register(fast)

	c := NewCoordinator(reg, logger.Default("fetch-test"), 50*time.Millisecond)
	result, err := c.Fetch(context.Background(), provider.CapQuote, provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Provider != "fast" {
		t.Errorf("expected fast provider to serve after slow timed out, got %s", result.Provider)
	}
}

func TestFetchStopsWhenParentCancelled(t *testing.T) {
	reg := provider.NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())

	p1, _ := newScriptedProvider("first", provider.CapQuote,
		func(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
			cancel() // parent dies during the first attempt
			return nil, errors.New("boom")
		})
	p2, f2 := newScriptedProvider("second", provider.CapQuote, succeedWith("never"))
	_ = reg.Register(p1)
	_ = reg.Register(p2)

	c := testCoordinator(reg)
	_, err := c.Fetch(ctx, provider.CapQuote, provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err == nil {
		t.Fatal("expected error")
	}
	if f2.calls != 0 {
		t.Errorf("second provider called %d times after parent cancel, want 0", f2.calls)
	}
}

func TestAttemptJournal(t *testing.T) {
	reg := provider.NewRegistry()
	p1, _ := newScriptedProvider("primary", provider.CapQuote,
		failWith(&infra.ErrHTTP{StatusCode: 429, Status: "429 Too Many Requests"}))
	p2, _ := newScriptedProvider("fallback", provider.CapQuote, succeedWith("fallback-data"))
	_ = reg.Register(p1)
	_ = reg.Register(p2)

	c := testCoordinator(reg)
	if _, err := c.Fetch(context.Background(), provider.CapQuote, provider.QueryParams{provider.ParamSymbol: "AAPL"}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	journal := c.Attempts()
	if len(journal) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(journal))
	}
	if journal[0].Provider != "primary" || journal[0].OK || journal[0].Reason != provider.ReasonRateLimited {
		t.Errorf("unexpected first entry: %+v", journal[0])
	}
	if journal[1].Provider != "fallback" || !journal[1].OK {
		t.Errorf("unexpected second entry: %+v", journal[1])
	}

	// The snapshot is a copy; mutating it must not affect the journal.
	journal[0].Provider = "mutated"
	if c.Attempts()[0].Provider != "primary" {
		t.Error("snapshot mutation leaked into the journal")
	}
}

func TestFetchFrom(t *testing.T) {
	reg := provider.NewRegistry()
	p1, f1 := newScriptedProvider("primary", provider.CapSymbolSearch, succeedWith("primary"))
	p2, f2 := newScriptedProvider("secondary", provider.CapSymbolSearch, succeedWith("secondary"))
	_ = reg.Register(p1)
	_ = reg.Register(p2)

	// Symbol search fetchers in this test require the symbol param.
	c := testCoordinator(reg)
	result, err := c.FetchFrom(context.Background(), "secondary", provider.CapSymbolSearch,
		provider.QueryParams{provider.ParamSymbol: "apple"})
	if err != nil {
		t.Fatalf("FetchFrom: %v", err)
	}
	if result.Data != "secondary" {
		t.Errorf("expected secondary data, got %v", result.Data)
	}
	if f1.calls != 0 || f2.calls != 1 {
		t.Errorf("unexpected call counts: primary=%d secondary=%d", f1.calls, f2.calls)
	}
}
