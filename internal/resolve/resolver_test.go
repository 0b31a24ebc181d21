package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seenimoa/tickerlens/internal/fetch"
	"github.com/seenimoa/tickerlens/internal/logger"
	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

type stubFetcher struct {
	provider.BaseFetcher
	data  any
	err   error
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &provider.FetchResult{Data: f.data, FetchedAt: time.Now()}, nil
}

type stubProvider struct {
	provider.BaseProvider
}

func newStubProvider(name string, cap provider.Capability, data any, err error) (*stubProvider, *stubFetcher) {
	p := &stubProvider{
		BaseProvider: provider.NewBaseProvider(name, "stub "+name, "https://example.com", nil),
	}
	f := &stubFetcher{
		BaseFetcher: provider.NewBaseFetcher(cap, "stub", []string{provider.ParamQuery}, nil),
		data:        data,
		err:         err,
	}
	p.RegisterFetcher(f)
	return p, f
}

// testResolver wires a resolver over stubbed search and web providers and
// returns the fetchers so call counts can be asserted.
func testResolver(t *testing.T, searchData any, searchErr error, webData any, webErr error) (*Resolver, *stubFetcher, *stubFetcher) {
	t.Helper()
	reg := provider.NewRegistry()
	sp, sf := newStubProvider("search", provider.CapSymbolSearch, searchData, searchErr)
	wp, wf := newStubProvider("web", provider.CapWebSearch, webData, webErr)
	if err := reg.Register(sp); err != nil {
		t.Fatalf("register search provider: %v", err)
	}
	if err := reg.Register(wp); err != nil {
		t.Fatalf("register web provider: %v", err)
	}
	c := fetch.NewCoordinator(reg, logger.Default("resolve-test"), 2*time.Second)
	return NewResolver(c, logger.Default("resolve-test"), 0), sf, wf
}

func TestResolveTickerShape(t *testing.T) {
	r, sf, wf := testResolver(t, nil, errors.New("must not be called"), nil, errors.New("must not be called"))

	cases := []struct {
		query  string
		ticker string
		class  models.AssetClass
	}{
		{"NVDA", "NVDA", models.AssetEquity},
		{"$TSLA", "TSLA", models.AssetEquity},
		{"(TSLA)", "TSLA", models.AssetEquity},
		{"BRK.B", "BRK.B", models.AssetEquity},
		{"^GSPC", "^GSPC", models.AssetIndex},
	}
	for _, tc := range cases {
		res, err := r.Resolve(context.Background(), tc.query)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tc.query, err)
		}
		if res.Symbol.Ticker != tc.ticker {
			t.Errorf("Resolve(%q) ticker = %s, want %s", tc.query, res.Symbol.Ticker, tc.ticker)
		}
		if res.Symbol.AssetClass != tc.class {
			t.Errorf("Resolve(%q) class = %s, want %s", tc.query, res.Symbol.AssetClass, tc.class)
		}
		if len(res.Trail) != 1 || res.Trail[0].Stage != "ticker-shape" {
			t.Errorf("Resolve(%q) trail = %v", tc.query, res.Trail)
		}
	}
	// Ticker-shaped input must never reach a provider.
	if sf.calls != 0 || wf.calls != 0 {
		t.Errorf("provider calls for ticker-shaped input: search=%d web=%d, want 0", sf.calls, wf.calls)
	}
}

func TestResolveShorthand(t *testing.T) {
	r, sf, wf := testResolver(t, nil, errors.New("must not be called"), nil, errors.New("must not be called"))

	res, err := r.Resolve(context.Background(), "the S&P 500 index")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Symbol.Ticker != "SPY" {
		t.Errorf("expected SPY, got %s", res.Symbol.Ticker)
	}
	if res.Symbol.AssetClass != models.AssetETF {
		t.Errorf("expected ETF class, got %s", res.Symbol.AssetClass)
	}
	if sf.calls != 0 || wf.calls != 0 {
		t.Errorf("provider calls for shorthand input: search=%d web=%d, want 0", sf.calls, wf.calls)
	}
}

func TestResolveSymbolSearch(t *testing.T) {
	hits := []models.SymbolSearchResult{
		{Symbol: "AAPL", Name: "Apple Inc.", Type: "stock"},
		{Symbol: "APLE", Name: "Apple Hospitality REIT Inc", Type: "stock"},
	}
	r, sf, wf := testResolver(t, hits, nil, nil, errors.New("must not be called"))

	res, err := r.Resolve(context.Background(), "apple")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Symbol.Ticker != "AAPL" {
		t.Errorf("expected AAPL, got %s", res.Symbol.Ticker)
	}
	if res.Symbol.Name != "Apple Inc." {
		t.Errorf("expected candidate name carried over, got %q", res.Symbol.Name)
	}
	if sf.calls != 1 {
		t.Errorf("search called %d times, want 1", sf.calls)
	}
	if wf.calls != 0 {
		t.Errorf("web search called %d times after search hit, want 0", wf.calls)
	}
	// Trail covers the two skipped stages plus the deciding one.
	if len(res.Trail) != 3 || res.Trail[2].Stage != "symbol-search" {
		t.Errorf("unexpected trail: %v", res.Trail)
	}
}

func TestResolveExactTickerMatch(t *testing.T) {
	// A lowercase query that equals a candidate's ticker is accepted even
	// when the name itself scores poorly.
	hits := []models.SymbolSearchResult{
		{Symbol: "MSFT", Name: "Microsoft Corporation", Type: "stock"},
	}
	r, _, _ := testResolver(t, hits, nil, nil, errors.New("must not be called"))

	res, err := r.Resolve(context.Background(), "msft")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Symbol.Ticker != "MSFT" {
		t.Errorf("expected MSFT, got %s", res.Symbol.Ticker)
	}
}

func TestResolveEtfTypeCarried(t *testing.T) {
	hits := []models.SymbolSearchResult{
		{Symbol: "VOO", Name: "Vanguard S&P 500 ETF", Type: "ETF"},
	}
	r, _, _ := testResolver(t, hits, nil, nil, errors.New("must not be called"))

	res, err := r.Resolve(context.Background(), "vanguard s&p 500 etf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Symbol.AssetClass != models.AssetETF {
		t.Errorf("expected ETF class, got %s", res.Symbol.AssetClass)
	}
}

func TestResolveWebSearchFallback(t *testing.T) {
	// No usable search candidate, so stage 4 extracts the ticker from an
	// exchange-prefixed mention in the result text.
	web := []models.WebSearchResult{
		{Title: "Electric car maker stock surges", Snippet: "Shares of Tesla Inc (NASDAQ: TSLA) rose on Friday."},
	}
	r, sf, wf := testResolver(t, []models.SymbolSearchResult{}, nil, web, nil)

	res, err := r.Resolve(context.Background(), "elon musk car company")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Symbol.Ticker != "TSLA" {
		t.Errorf("expected TSLA, got %s", res.Symbol.Ticker)
	}
	if sf.calls != 1 || wf.calls != 1 {
		t.Errorf("unexpected call counts: search=%d web=%d", sf.calls, wf.calls)
	}
}

func TestResolveWebSearchCashtag(t *testing.T) {
	web := []models.WebSearchResult{
		{Title: "Why $PLTR keeps climbing", Snippet: "Retail interest in the stock remains high."},
	}
	r, _, _ := testResolver(t, []models.SymbolSearchResult{}, nil, web, nil)

	res, err := r.Resolve(context.Background(), "palantir the data company")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Symbol.Ticker != "PLTR" {
		t.Errorf("expected PLTR, got %s", res.Symbol.Ticker)
	}
}

func TestResolveBelowThresholdFallsThrough(t *testing.T) {
	// A candidate far from the query must not be accepted on stage 3.
	hits := []models.SymbolSearchResult{
		{Symbol: "XOM", Name: "Exxon Mobil Corporation", Type: "stock"},
	}
	web := []models.WebSearchResult{
		{Title: "What is the stock symbol for SpaceX?", Snippet: "Rocket Lab (NASDAQ: RKLB) is the closest public peer."},
	}
	r, _, wf := testResolver(t, hits, nil, web, nil)

	res, err := r.Resolve(context.Background(), "spacex")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Symbol.Ticker != "RKLB" {
		t.Errorf("expected stage 4 result RKLB, got %s", res.Symbol.Ticker)
	}
	if wf.calls != 1 {
		t.Errorf("web search called %d times, want 1", wf.calls)
	}
}

func TestResolveFailureTrail(t *testing.T) {
	r, _, _ := testResolver(t, []models.SymbolSearchResult{}, nil, []models.WebSearchResult{}, nil)

	_, err := r.Resolve(context.Background(), "completely unknown gibberish entity")
	if err == nil {
		t.Fatal("expected resolution failure")
	}
	var rf *ResolutionFailure
	if !errors.As(err, &rf) {
		t.Fatalf("expected *ResolutionFailure, got %T: %v", err, err)
	}
	stages := make([]string, 0, len(rf.Trail))
	for _, s := range rf.Trail {
		stages = append(stages, s.Stage)
	}
	want := []string{"ticker-shape", "shorthand", "symbol-search", "web-search"}
	if len(stages) != len(want) {
		t.Fatalf("trail stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("trail[%d] = %s, want %s", i, stages[i], want[i])
		}
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	r, sf, wf := testResolver(t, nil, errors.New("must not be called"), nil, errors.New("must not be called"))

	_, err := r.Resolve(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected error for empty query")
	}
	if sf.calls != 0 || wf.calls != 0 {
		t.Errorf("provider calls for empty query: search=%d web=%d, want 0", sf.calls, wf.calls)
	}
}

func TestLookupShorthand(t *testing.T) {
	cases := []struct {
		query  string
		ticker string
		found  bool
	}{
		{"s&p 500", "SPY", true},
		{"The S&P 500", "SPY", true},
		{"S&P 500 Index", "SPY", true},
		{"nasdaq", "QQQ", true},
		{"NASDAQ-100", "QQQ", true},
		{"dow jones", "DIA", true},
		{"the Dow", "DIA", true},
		{"russell 2000", "IWM", true},
		{"energy sector", "XLE", true},
		{"tech sector etf", "XLK", true},
		{"apple", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		sym, ok := lookupShorthand(tc.query)
		if ok != tc.found {
			t.Errorf("lookupShorthand(%q) found = %v, want %v", tc.query, ok, tc.found)
			continue
		}
		if ok && sym.Ticker != tc.ticker {
			t.Errorf("lookupShorthand(%q) = %s, want %s", tc.query, sym.Ticker, tc.ticker)
		}
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		query, name string
		min, max    float64
	}{
		{"apple", "apple", 1, 1},
		{"Apple", "APPLE", 1, 1},
		{"apple", "Apple Inc.", 0.95, 0.95},
		{"microsoft", "Microsoft Corporation", 0.95, 0.95},
		{"tesla motors", "Tesla, Inc.", 0.3, 0.9},
		{"spacex", "Exxon Mobil Corporation", 0, 0.3},
		{"", "Apple Inc.", 0, 0},
	}
	for _, tc := range cases {
		got := similarity(tc.query, tc.name)
		if got < tc.min || got > tc.max {
			t.Errorf("similarity(%q, %q) = %.3f, want in [%.2f, %.2f]",
				tc.query, tc.name, got, tc.min, tc.max)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Apple Inc.", "apple inc"},
		{"  S&P   500 ", "s p 500"},
		{"Tesla, Inc.", "tesla inc"},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := normalizeText(tc.in); got != tc.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
