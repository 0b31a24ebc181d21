package yahoorss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Yahoo! Finance: AAPL News</title>
<item>
<title>Apple unveils new chip</title>
<link>https://finance.yahoo.com/news/apple-chip</link>
<description>&lt;p&gt;Apple announced its &lt;b&gt;next-generation&lt;/b&gt; silicon.&lt;/p&gt;</description>
<pubDate>Thu, 21 Aug 2025 14:00:00 +0000</pubDate>
</item>
<item>
<title>Apple supplier update</title>
<link>https://finance.yahoo.com/news/apple-supplier</link>
<description>Supply chain news.</description>
<pubDate>Wed, 20 Aug 2025 09:30:00 +0000</pubDate>
</item>
</channel>
</rss>`

func withTestFeed(t *testing.T, body string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s") == "" {
			t.Error("missing symbol query param")
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	old := feedURL
	feedURL = srv.URL
	t.Cleanup(func() {
		feedURL = old
		srv.Close()
	})
}

func TestProviderInfo(t *testing.T) {
	p := New()
	info := p.Info()
	if info.Name != "yahoorss" {
		t.Errorf("expected name yahoorss, got %s", info.Name)
	}
	if len(info.Credentials) != 0 {
		t.Error("yahoorss should not require credentials")
	}
	if err := p.Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
}

func TestProviderCapabilities(t *testing.T) {
	p := New()
	caps := p.Capabilities()
	if len(caps) != 1 || caps[0] != provider.CapCompanyNews {
		t.Errorf("expected only CompanyNews, got %v", caps)
	}
}

func TestNewsFetch(t *testing.T) {
	withTestFeed(t, sampleFeed)

	p := New()
	result, err := p.Fetcher(provider.CapCompanyNews).Fetch(context.Background(),
		provider.QueryParams{provider.ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	articles, ok := result.Data.([]models.Article)
	if !ok {
		t.Fatalf("expected []models.Article, got %T", result.Data)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Apple unveils new chip" {
		t.Errorf("unexpected title: %s", articles[0].Title)
	}
	if articles[0].Source != "Yahoo Finance" {
		t.Errorf("unexpected source: %s", articles[0].Source)
	}
	// HTML in the description should be stripped.
	if articles[0].Summary != "Apple announced its next-generation silicon." {
		t.Errorf("HTML not stripped: %q", articles[0].Summary)
	}
	if articles[0].PublishedAt.IsZero() {
		t.Error("pubDate not parsed")
	}
}

func TestNewsFetchLimit(t *testing.T) {
	withTestFeed(t, sampleFeed)

	p := New()
	result, err := p.Fetcher(provider.CapCompanyNews).Fetch(context.Background(),
		provider.QueryParams{provider.ParamSymbol: "AAPL", provider.ParamLimit: "1"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	articles := result.Data.([]models.Article)
	if len(articles) != 1 {
		t.Errorf("expected limit to cap at 1 article, got %d", len(articles))
	}
}

func TestCleanHTML(t *testing.T) {
	got := cleanHTML("<p>Hello <b>world</b></p>")
	if got != "Hello world" {
		t.Errorf("expected 'Hello world', got %q", got)
	}
	if cleanHTML("") != "" {
		t.Error("empty input should stay empty")
	}
	if cleanHTML("plain text") != "plain text" {
		t.Error("plain text should pass through")
	}
}
