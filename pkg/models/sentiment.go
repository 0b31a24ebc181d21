package models

// SentimentLabel is the overall verdict over a batch of articles.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// ArticleLean is the per-article score produced by the keyword classifier.
type ArticleLean struct {
	Title     string         `json:"title"`
	URL       string         `json:"url,omitempty"`
	Positive  int            `json:"positive"` // positive keyword hits
	Negative  int            `json:"negative"` // negative keyword hits
	Lean      SentimentLabel `json:"lean"`
	Evidence  []string       `json:"evidence,omitempty"` // matched keywords
}

// Excerpt is a matched keyword with its surrounding text, kept as evidence
// for how the verdict was reached.
type Excerpt struct {
	Keyword string `json:"keyword"`
	Context string `json:"context"`
	Title   string `json:"title"`
}

// SentimentVerdict aggregates per-article leans into an overall label. The
// shares are computed over decided articles only; articles with no keyword
// hits (or a tie) count as neutral and are excluded from the denominator.
type SentimentVerdict struct {
	Label         SentimentLabel `json:"label"`
	PositiveShare float64        `json:"positive_share"`
	NegativeShare float64        `json:"negative_share"`
	Scored        int            `json:"scored"`  // articles with a non-neutral lean
	Total         int            `json:"total"`   // all articles examined
	Neutral       int            `json:"neutral"` // zero-hit or tied articles
	TableVersion  string         `json:"table_version"`
	Excerpts      []Excerpt      `json:"excerpts,omitempty"` // from the most recent decided articles
	Articles      []ArticleLean  `json:"articles,omitempty"`
}
