// Package models defines the shared data structures exchanged between the
// resolver, fetch coordinator, news aggregator, sentiment classifier, and
// session store. All types are plain data with JSON tags; behavior lives in
// the internal packages.
package models

// AssetClass categorizes a resolved trading symbol.
type AssetClass string

const (
	AssetEquity AssetClass = "equity"
	AssetETF    AssetClass = "etf"
	AssetIndex  AssetClass = "index"
)

// Symbol is a canonical exchange ticker plus its inferred asset class.
// Once resolved for a session it is immutable; re-analysis of a different
// company requires a new session.
type Symbol struct {
	Ticker     string     `json:"ticker"`
	AssetClass AssetClass `json:"asset_class"`
	Name       string     `json:"name,omitempty"` // company or fund name when known
}

// SymbolSearchResult is one hit from a provider's symbol-search capability.
type SymbolSearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"` // provider-reported instrument type
}

// WebSearchResult is one hit from the general web-search capability used by
// the resolver's final fallback stage.
type WebSearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
