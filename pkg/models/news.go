package models

import (
	"strings"
	"time"
	"unicode"
)

// Article is a normalized news article from any news-capable provider.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// DedupeKey returns the identity used to merge equivalent articles from
// different sources: the title lowercased with punctuation and whitespace
// stripped. URL equality is checked separately by the aggregator.
func (a Article) DedupeKey() string {
	var b strings.Builder
	for _, r := range strings.ToLower(a.Title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
