package models

import "time"

// DatasetKind names one slot of fetched data inside a session. Each kind
// maps to a fetch capability; the session keeps at most one result per kind.
type DatasetKind string

const (
	DatasetQuote     DatasetKind = "quote"
	DatasetProfile   DatasetKind = "profile"
	DatasetIncome    DatasetKind = "income_statement"
	DatasetBalance   DatasetKind = "balance_sheet"
	DatasetCashFlow  DatasetKind = "cash_flow"
	DatasetMetrics   DatasetKind = "key_metrics"
	DatasetRatios    DatasetKind = "ratios"
	DatasetPrices    DatasetKind = "historical_prices"
	DatasetNews      DatasetKind = "news"
	DatasetSentiment DatasetKind = "sentiment"
)

// FailureInfo records why a dataset could not be fetched. Reason uses the
// provider failure taxonomy; Attempts lists each provider tried in order.
type FailureInfo struct {
	Reason   string   `json:"reason"`
	Message  string   `json:"message"`
	Attempts []string `json:"attempts,omitempty"` // "provider: reason" per attempt
}

// DatasetResult is the outcome of fetching one dataset kind. Exactly one of
// Payload and Err is meaningful. Payload is canonical JSON so the record
// survives gob encoding in the store without interface registration.
type DatasetResult struct {
	Kind      DatasetKind  `json:"kind"`
	Source    string       `json:"source,omitempty"` // provider that served the data
	Payload   []byte       `json:"payload,omitempty"`
	Err       *FailureInfo `json:"error,omitempty"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// OK reports whether the dataset was fetched successfully.
func (d DatasetResult) OK() bool { return d.Err == nil && len(d.Payload) > 0 }

// SessionRecord is the durable state of one analysis session. The symbol is
// set exactly once; datasets accumulate across calls, and a failed fetch
// never overwrites previously stored data for the same kind.
type SessionRecord struct {
	ID              string                        `json:"id" badgerhold:"key"`
	Query           string                        `json:"query,omitempty"` // raw user input that resolved the symbol
	Symbol          *Symbol                       `json:"symbol,omitempty"`
	ResolutionTrail []string                      `json:"resolution_trail,omitempty"` // "stage: detail" per stage tried
	Datasets        map[DatasetKind]DatasetResult `json:"datasets,omitempty"`
	CreatedAt       time.Time                     `json:"created_at"`
	UpdatedAt       time.Time                     `json:"updated_at"`
}

// Dataset returns the stored result for kind, if any.
func (s *SessionRecord) Dataset(kind DatasetKind) (DatasetResult, bool) {
	d, ok := s.Datasets[kind]
	return d, ok
}
