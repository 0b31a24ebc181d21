package sentiment

// KeywordTable is a versioned lexicon for headline scoring. The version is
// stamped into every verdict so stored results can be traced back to the
// table that produced them.
type KeywordTable struct {
	Version  string
	Positive map[string]bool
	Negative map[string]bool
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// TableV1 is the initial lexicon, tuned for financial headlines. Words are
// matched whole after normalization, so "beat" does not fire on "heartbeat".
var TableV1 = KeywordTable{
	Version: "v1",
	Positive: wordSet(
		"beat", "beats", "tops", "exceeds", "exceeded",
		"surge", "surges", "surged", "soar", "soars", "soared",
		"rally", "rallies", "rallied", "jump", "jumps", "jumped",
		"rise", "rises", "rose", "gain", "gains", "gained",
		"record", "upgrade", "upgraded", "outperform", "outperforms",
		"growth", "profit", "profitable", "strong", "bullish",
		"buyback", "dividend", "breakthrough", "wins", "won",
		"expands", "expansion", "milestone", "momentum",
	),
	Negative: wordSet(
		"miss", "misses", "missed", "plunge", "plunges", "plunged",
		"drop", "drops", "dropped", "fall", "falls", "fell",
		"slump", "slumps", "slumped", "sink", "sinks", "sank",
		"tumble", "tumbles", "tumbled", "decline", "declines", "declined",
		"downgrade", "downgraded", "underperform", "underperforms",
		"loss", "losses", "weak", "bearish", "warning", "warns",
		"lawsuit", "sued", "probe", "investigation", "fraud",
		"layoff", "layoffs", "recall", "recalls", "bankruptcy",
		"cut", "cuts", "halt", "halts", "delay", "delays",
	),
}
