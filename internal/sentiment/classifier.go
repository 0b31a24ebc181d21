// Package sentiment scores news headlines with a fixed keyword lexicon. The
// classifier is fully deterministic: the same articles and the same table
// version always produce the same verdict, which keeps stored session results
// reproducible. It is a coarse signal, not a model.
package sentiment

import (
	"sort"
	"strings"
	"unicode"

	"github.com/seenimoa/tickerlens/pkg/models"
)

// DefaultShareThreshold is the share of decided articles one side needs to
// carry the overall verdict.
const DefaultShareThreshold = 0.60

// Classifier scores article batches against a keyword table.
type Classifier struct {
	table     KeywordTable
	threshold float64
}

// NewClassifier creates a classifier over TableV1. A non-positive threshold
// falls back to DefaultShareThreshold.
func NewClassifier(threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultShareThreshold
	}
	return &Classifier{table: TableV1, threshold: threshold}
}

// Score classifies a single article from its title and summary. Articles
// with no keyword hits, or an equal number on both sides, lean neutral.
func (c *Classifier) Score(article models.Article) models.ArticleLean {
	lean := models.ArticleLean{
		Title: article.Title,
		URL:   article.URL,
		Lean:  models.SentimentNeutral,
	}

	for _, word := range tokenize(article.Title + " " + article.Summary) {
		switch {
		case c.table.Positive[word]:
			lean.Positive++
			lean.Evidence = append(lean.Evidence, "+"+word)
		case c.table.Negative[word]:
			lean.Negative++
			lean.Evidence = append(lean.Evidence, "-"+word)
		}
	}
	sort.Strings(lean.Evidence)

	switch {
	case lean.Positive > lean.Negative:
		lean.Lean = models.SentimentPositive
	case lean.Negative > lean.Positive:
		lean.Lean = models.SentimentNegative
	}
	return lean
}

// Classify scores every article and aggregates the leans into a verdict.
// Shares are computed over decided articles only, so a batch padded with
// neutral wire noise still reflects the articles that actually said
// something. A side must reach the threshold to win; otherwise the verdict
// is neutral. An empty batch is neutral with zero shares.
func (c *Classifier) Classify(articles []models.Article) models.SentimentVerdict {
	verdict := models.SentimentVerdict{
		Label:        models.SentimentNeutral,
		Total:        len(articles),
		TableVersion: c.table.Version,
	}

	var positive, negative int
	for _, a := range articles {
		lean := c.Score(a)
		verdict.Articles = append(verdict.Articles, lean)
		switch lean.Lean {
		case models.SentimentPositive:
			positive++
		case models.SentimentNegative:
			negative++
		default:
			verdict.Neutral++
		}
	}

	verdict.Excerpts = c.excerpts(articles, verdict.Articles)

	verdict.Scored = positive + negative
	if verdict.Scored == 0 {
		return verdict
	}

	verdict.PositiveShare = float64(positive) / float64(verdict.Scored)
	verdict.NegativeShare = float64(negative) / float64(verdict.Scored)
	switch {
	case verdict.PositiveShare >= c.threshold:
		verdict.Label = models.SentimentPositive
	case verdict.NegativeShare >= c.threshold:
		verdict.Label = models.SentimentNegative
	}
	return verdict
}

// maxExcerpts bounds the evidence carried in a verdict.
const maxExcerpts = 3

// excerpts pulls a keyword-in-context snippet from the most recent decided
// articles. Articles arrive recency-sorted, so the first decided ones win.
func (c *Classifier) excerpts(articles []models.Article, leans []models.ArticleLean) []models.Excerpt {
	var out []models.Excerpt
	for i, lean := range leans {
		if len(out) == maxExcerpts {
			break
		}
		if lean.Lean == models.SentimentNeutral || len(lean.Evidence) == 0 {
			continue
		}
		keyword := leanKeyword(lean)
		if keyword == "" {
			continue
		}
		out = append(out, models.Excerpt{
			Keyword: keyword,
			Context: contextWindow(articles[i].Title+" "+articles[i].Summary, keyword),
			Title:   articles[i].Title,
		})
	}
	return out
}

// leanKeyword picks the first evidence entry on the same side as the
// article's lean. Evidence is sorted with "+" entries first, so a negative
// article with a stray positive hit must not showcase the positive word.
func leanKeyword(lean models.ArticleLean) string {
	prefix := "+"
	if lean.Lean == models.SentimentNegative {
		prefix = "-"
	}
	for _, ev := range lean.Evidence {
		if strings.HasPrefix(ev, prefix) {
			return strings.TrimPrefix(ev, prefix)
		}
	}
	return ""
}

// contextWindow returns up to four words either side of the first occurrence
// of keyword in text.
func contextWindow(text, keyword string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if strings.EqualFold(strings.Trim(w, ".,;:!?'\"()"), keyword) {
			lo := i - 4
			if lo < 0 {
				lo = 0
			}
			hi := i + 5
			if hi > len(words) {
				hi = len(words)
			}
			return strings.Join(words[lo:hi], " ")
		}
	}
	return keyword
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
