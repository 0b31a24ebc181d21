package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/seenimoa/tickerlens/internal/logger"
	"github.com/seenimoa/tickerlens/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), logger.Default("session-test"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func quotePayload(t *testing.T, price float64) []byte {
	t.Helper()
	return tickerPayload(t, "AAPL", price)
}

func tickerPayload(t *testing.T, ticker string, price float64) []byte {
	t.Helper()
	payload, err := json.Marshal(models.Quote{Ticker: ticker, LastPrice: price})
	if err != nil {
		t.Fatalf("marshal quote: %v", err)
	}
	return payload
}

func TestCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "apple")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated session ID")
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Query != "apple" {
		t.Errorf("query = %q, want apple", got.Query)
	}
	if got.Symbol != nil {
		t.Errorf("fresh session should have no symbol, got %+v", got.Symbol)
	}
}

func TestGetUnknownSession(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "no-such-id")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSetSymbolOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec, _ := s.Create(ctx, "apple")

	aapl := &models.Symbol{Ticker: "AAPL", AssetClass: models.AssetEquity, Name: "Apple Inc."}
	trail := []string{"ticker-shape: input is not ticker-shaped", "symbol-search: matched AAPL (score 0.95)"}
	if err := s.SetSymbol(ctx, rec.ID, aapl, trail); err != nil {
		t.Fatalf("SetSymbol: %v", err)
	}

	// Same ticker again is a no-op.
	if err := s.SetSymbol(ctx, rec.ID, aapl, nil); err != nil {
		t.Fatalf("SetSymbol repeat: %v", err)
	}

	// A different ticker is a conflict.
	err := s.SetSymbol(ctx, rec.ID, &models.Symbol{Ticker: "MSFT"}, nil)
	if !errors.Is(err, ErrSymbolConflict) {
		t.Fatalf("expected ErrSymbolConflict, got %v", err)
	}

	got, _ := s.Get(ctx, rec.ID)
	if got.Symbol == nil || got.Symbol.Ticker != "AAPL" {
		t.Errorf("symbol after conflict = %+v, want AAPL", got.Symbol)
	}
	if len(got.ResolutionTrail) != 2 {
		t.Errorf("trail = %v, want the original 2 entries", got.ResolutionTrail)
	}
}

func TestPutDatasetReadAfterWrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec, _ := s.Create(ctx, "apple")

	payload := quotePayload(t, 231.5)
	err := s.PutDataset(ctx, rec.ID, models.DatasetResult{
		Kind:    models.DatasetQuote,
		Source:  "fmp",
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("PutDataset: %v", err)
	}

	got, _ := s.Get(ctx, rec.ID)
	ds, ok := got.Dataset(models.DatasetQuote)
	if !ok {
		t.Fatal("quote dataset missing after write")
	}
	if !ds.OK() {
		t.Fatalf("dataset not OK: %+v", ds)
	}
	var q models.Quote
	if err := json.Unmarshal(ds.Payload, &q); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if q.LastPrice != 231.5 {
		t.Errorf("price = %v, want 231.5", q.LastPrice)
	}
	if ds.FetchedAt.IsZero() {
		t.Error("FetchedAt not stamped")
	}
}

func TestFailureNeverOverwritesSuccess(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec, _ := s.Create(ctx, "apple")

	good := models.DatasetResult{
		Kind:      models.DatasetQuote,
		Source:    "fmp",
		Payload:   quotePayload(t, 231.5),
		FetchedAt: time.Now().UTC(),
	}
	if err := s.PutDataset(ctx, rec.ID, good); err != nil {
		t.Fatalf("PutDataset good: %v", err)
	}

	bad := models.DatasetResult{
		Kind: models.DatasetQuote,
		Err:  &models.FailureInfo{Reason: "rate-limited", Message: "all providers failed"},
	}
	if err := s.PutDataset(ctx, rec.ID, bad); err != nil {
		t.Fatalf("PutDataset bad: %v", err)
	}

	got, _ := s.Get(ctx, rec.ID)
	ds, _ := got.Dataset(models.DatasetQuote)
	if !ds.OK() {
		t.Fatalf("stored success was overwritten by a failure: %+v", ds)
	}
	if ds.Source != "fmp" {
		t.Errorf("source = %s, want fmp", ds.Source)
	}
}

func TestSuccessOverwritesFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec, _ := s.Create(ctx, "apple")

	bad := models.DatasetResult{
		Kind: models.DatasetQuote,
		Err:  &models.FailureInfo{Reason: "network-error", Message: "dial timeout"},
	}
	if err := s.PutDataset(ctx, rec.ID, bad); err != nil {
		t.Fatalf("PutDataset bad: %v", err)
	}

	good := models.DatasetResult{
		Kind:    models.DatasetQuote,
		Source:  "alphavantage",
		Payload: quotePayload(t, 230.1),
	}
	if err := s.PutDataset(ctx, rec.ID, good); err != nil {
		t.Fatalf("PutDataset good: %v", err)
	}

	got, _ := s.Get(ctx, rec.ID)
	ds, _ := got.Dataset(models.DatasetQuote)
	if !ds.OK() || ds.Source != "alphavantage" {
		t.Errorf("expected the successful refetch to win, got %+v", ds)
	}
}

func TestSessionIsolation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a, _ := s.Create(ctx, "apple")
	b, _ := s.Create(ctx, "tesla")

	if err := s.PutDataset(ctx, a.ID, models.DatasetResult{
		Kind:    models.DatasetQuote,
		Payload: quotePayload(t, 231.5),
	}); err != nil {
		t.Fatalf("PutDataset: %v", err)
	}

	gotB, _ := s.Get(ctx, b.ID)
	if _, ok := gotB.Dataset(models.DatasetQuote); ok {
		t.Error("dataset written to session A leaked into session B")
	}
}

func TestConcurrentSessionsStayIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a, _ := s.Create(ctx, "apple")
	b, _ := s.Create(ctx, "tesla")

	kinds := []models.DatasetKind{
		models.DatasetQuote, models.DatasetProfile, models.DatasetIncome,
		models.DatasetBalance, models.DatasetCashFlow, models.DatasetMetrics,
		models.DatasetRatios, models.DatasetPrices,
	}
	sessions := []struct {
		id      string
		ticker  string
		payload []byte
	}{
		{a.ID, "AAPL", tickerPayload(t, "AAPL", 231.5)},
		{b.ID, "TSLA", tickerPayload(t, "TSLA", 330.2)},
	}

	var wg sync.WaitGroup
	for _, sess := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sym := &models.Symbol{Ticker: sess.ticker, AssetClass: models.AssetEquity}
			if err := s.SetSymbol(ctx, sess.id, sym, nil); err != nil {
				t.Errorf("SetSymbol %s: %v", sess.ticker, err)
			}
			for _, kind := range kinds {
				err := s.PutDataset(ctx, sess.id, models.DatasetResult{
					Kind:    kind,
					Source:  "fmp",
					Payload: sess.payload,
				})
				if err != nil {
					t.Errorf("PutDataset %s/%s: %v", sess.ticker, kind, err)
				}
			}
		}()
	}
	wg.Wait()

	for _, sess := range sessions {
		got, err := s.Get(ctx, sess.id)
		if err != nil {
			t.Fatalf("Get %s: %v", sess.ticker, err)
		}
		if got.Symbol == nil || got.Symbol.Ticker != sess.ticker {
			t.Errorf("session %s symbol = %+v, want %s", sess.id, got.Symbol, sess.ticker)
		}
		for _, kind := range kinds {
			ds, ok := got.Dataset(kind)
			if !ok {
				t.Errorf("session %s missing dataset %s", sess.ticker, kind)
				continue
			}
			var q models.Quote
			if err := json.Unmarshal(ds.Payload, &q); err != nil {
				t.Fatalf("unmarshal %s/%s: %v", sess.ticker, kind, err)
			}
			if q.Ticker != sess.ticker {
				t.Errorf("dataset %s in session %s carries ticker %s", kind, sess.ticker, q.Ticker)
			}
		}
	}
}

func TestConcurrentWritesToOneSessionSerialize(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec, _ := s.Create(ctx, "apple")

	// Half the writers store a success, half a failure, all racing on the
	// same dataset kind. Once any success lands it must survive every
	// later failure, and the stored payload must be one complete write.
	const writers = 8
	payloads := make([][]byte, writers)
	prices := make(map[float64]bool, writers)
	for i := range payloads {
		price := 100 + float64(i)
		payloads[i] = tickerPayload(t, "AAPL", price)
		prices[price] = true
	}

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var ds models.DatasetResult
			if i%2 == 0 {
				ds = models.DatasetResult{
					Kind:    models.DatasetQuote,
					Source:  "fmp",
					Payload: payloads[i],
				}
			} else {
				ds = models.DatasetResult{
					Kind: models.DatasetQuote,
					Err:  &models.FailureInfo{Reason: "rate-limited", Message: "all providers failed"},
				}
			}
			if err := s.PutDataset(ctx, rec.ID, ds); err != nil {
				t.Errorf("PutDataset: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	ds, ok := got.Dataset(models.DatasetQuote)
	if !ok {
		t.Fatal("quote dataset missing after racing writes")
	}
	if !ds.OK() {
		t.Fatalf("a failure overwrote a stored success: %+v", ds)
	}
	var q models.Quote
	if err := json.Unmarshal(ds.Payload, &q); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if q.Ticker != "AAPL" || !prices[q.LastPrice] {
		t.Errorf("stored payload is not one of the written quotes: %+v", q)
	}
}

func TestConcurrentSetSymbolSameTicker(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec, _ := s.Create(ctx, "apple")

	// Racing writers resolving the same ticker must all succeed; the
	// repeat writes are no-ops, never conflicts.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sym := &models.Symbol{Ticker: "AAPL", AssetClass: models.AssetEquity}
			if err := s.SetSymbol(ctx, rec.ID, sym, nil); err != nil {
				t.Errorf("SetSymbol: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx, rec.ID)
	if got.Symbol == nil || got.Symbol.Ticker != "AAPL" {
		t.Errorf("symbol = %+v, want AAPL", got.Symbol)
	}
}

func TestListOrdersByActivity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	first, _ := s.Create(ctx, "first")
	second, _ := s.Create(ctx, "second")

	// Touching the first session makes it the most recent.
	time.Sleep(5 * time.Millisecond)
	if err := s.PutDataset(ctx, first.ID, models.DatasetResult{
		Kind:    models.DatasetQuote,
		Payload: quotePayload(t, 1),
	}); err != nil {
		t.Fatalf("PutDataset: %v", err)
	}

	records, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(records))
	}
	if records[0].ID != first.ID {
		t.Errorf("expected most recently updated session first, got %s", records[0].Query)
	}
	_ = second
}
