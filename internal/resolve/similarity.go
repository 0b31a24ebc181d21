package resolve

import "strings"

// similarity scores how well a candidate company name matches the query,
// in [0, 1]. It combines containment checks with the Sorensen-Dice
// coefficient over character bigrams, which tolerates suffix noise like
// "Inc." or "Corporation" without any stop-word list.
func similarity(query, name string) float64 {
	q := normalizeText(query)
	n := normalizeText(name)
	if q == "" || n == "" {
		return 0
	}
	if q == n {
		return 1
	}
	// A query that is a whole-word prefix of the name is a strong match:
	// "apple" vs "apple inc".
	if strings.HasPrefix(n, q+" ") || strings.HasPrefix(q, n+" ") {
		return 0.95
	}

	return diceCoefficient(bigrams(q), bigrams(n))
}

// normalizeText lowercases and keeps only letters, digits, and single spaces.
func normalizeText(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// bigrams returns the multiset of character bigrams of s, spaces included.
func bigrams(s string) map[string]int {
	grams := make(map[string]int)
	runes := []rune(s)
	for i := 0; i+1 < len(runes); i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

// diceCoefficient computes 2*|A∩B| / (|A|+|B|) over bigram multisets.
func diceCoefficient(a, b map[string]int) float64 {
	var sizeA, sizeB, overlap int
	for g, ca := range a {
		sizeA += ca
		if cb, ok := b[g]; ok {
			if ca < cb {
				overlap += ca
			} else {
				overlap += cb
			}
		}
	}
	for _, cb := range b {
		sizeB += cb
	}
	if sizeA+sizeB == 0 {
		return 0
	}
	return 2 * float64(overlap) / float64(sizeA+sizeB)
}
