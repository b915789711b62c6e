package lexicon

import (
	"regexp"
	"strings"

	"github.com/ricardo-wurzmann/healthtech/internal/normalize"
)

// Entry is a normalized lexicon term with its token decomposition.
// Entries are immutable once the index is built.
type Entry struct {
	OriginalTerm   string
	NormalizedTerm string
	Tokens         []string
	EntityType     string
}

// MatchType describes how a candidate was retrieved from the index.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchToken MatchType = "token"
	MatchFuzzy MatchType = "fuzzy"
)

// Candidate is a transient per-sentence candidate produced by the index.
type Candidate struct {
	Term           string
	EntityType     string
	NormalizedTerm string
	Tokens         []string
	MatchType      MatchType
}

// Index is a read-only token index over a lexicon. It is safe to share
// across concurrent document workers once built.
type Index struct {
	entries        []Entry
	tokenToEntries map[string][]int
	singleToken    []int
	multiToken     []int

	// word-boundary confirmation patterns, one per single-token entry,
	// compiled once at build time
	singleTokenRe []*regexp.Regexp
}

// NewIndex builds the index from an ordered term list. The caller is
// responsible for priority ordering and duplicate suppression (LoadAll
// already does both). An empty lexicon yields an empty, queryable index.
func NewIndex(terms []Term) *Index {
	ix := &Index{
		tokenToEntries: make(map[string][]int),
	}

	for _, t := range terms {
		normalized := normalize.ForMatch(t.Text)
		tokens := normalize.Tokenize(normalized)

		entry := Entry{
			OriginalTerm:   t.Text,
			NormalizedTerm: normalized,
			Tokens:         tokens,
			EntityType:     t.EntityType,
		}

		idx := len(ix.entries)
		ix.entries = append(ix.entries, entry)

		for _, token := range tokens {
			ix.tokenToEntries[token] = append(ix.tokenToEntries[token], idx)
		}

		if len(tokens) == 1 {
			ix.singleToken = append(ix.singleToken, idx)
			ix.singleTokenRe = append(ix.singleTokenRe,
				regexp.MustCompile(`\b`+regexp.QuoteMeta(tokens[0])+`\b`))
		} else if len(tokens) > 1 {
			ix.multiToken = append(ix.multiToken, idx)
		}
	}

	return ix
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Entries returns the indexed entries in load order.
func (ix *Index) Entries() []Entry {
	return ix.entries
}

// FindCandidates generates exact and token candidates for a normalized
// sentence. Multi-token terms match by substring containment (exact);
// single-token terms require token membership plus a word boundary check
// (token). Multi-token terms whose tokens are all present get a second
// substring confirmation so an entry never appears as both exact and token.
func (ix *Index) FindCandidates(sentenceNorm string, sentenceTokens []string) []Candidate {
	var candidates []Candidate

	// 1) exact phrase containment for multi-word terms
	exactTerms := make(map[string]struct{})
	for _, idx := range ix.multiToken {
		entry := ix.entries[idx]
		if containsSubstring(sentenceNorm, entry.NormalizedTerm) {
			candidates = append(candidates, candidateFrom(entry, MatchExact))
			exactTerms[entry.NormalizedTerm] = struct{}{}
		}
	}

	tokenSet := make(map[string]struct{}, len(sentenceTokens))
	for _, tok := range sentenceTokens {
		tokenSet[tok] = struct{}{}
	}

	// 2) single-token terms: token membership plus whole-word confirmation
	for i, idx := range ix.singleToken {
		entry := ix.entries[idx]
		if _, ok := tokenSet[entry.Tokens[0]]; !ok {
			continue
		}
		if ix.singleTokenRe[i].MatchString(sentenceNorm) {
			candidates = append(candidates, candidateFrom(entry, MatchToken))
		}
	}

	// 3) multi-token terms with all tokens present, confirmed by substring
	for _, idx := range ix.multiToken {
		entry := ix.entries[idx]
		if !allTokensPresent(entry.Tokens, tokenSet) {
			continue
		}
		if !containsSubstring(sentenceNorm, entry.NormalizedTerm) {
			continue
		}
		if _, dup := exactTerms[entry.NormalizedTerm]; dup {
			continue
		}
		candidates = append(candidates, candidateFrom(entry, MatchToken))
	}

	return candidates
}

// FindFuzzyCandidates returns fuzzy seeds: entries sharing at least one
// token with the sentence. It only applies when no exact/token candidates
// exist; scoring is left to the caller.
func (ix *Index) FindFuzzyCandidates(sentenceNorm string, sentenceTokens []string, existing []Candidate) []Candidate {
	if len(existing) > 0 {
		return nil
	}

	var fuzzy []Candidate
	checked := make(map[int]struct{})

	for _, token := range sentenceTokens {
		for _, idx := range ix.tokenToEntries[token] {
			if _, done := checked[idx]; done {
				continue
			}
			checked[idx] = struct{}{}
			entry := ix.entries[idx]

			// already matchable exactly; not a fuzzy case
			if containsSubstring(sentenceNorm, entry.NormalizedTerm) {
				continue
			}

			fuzzy = append(fuzzy, candidateFrom(entry, MatchFuzzy))
		}
	}

	return fuzzy
}

func candidateFrom(entry Entry, mt MatchType) Candidate {
	return Candidate{
		Term:           entry.OriginalTerm,
		EntityType:     entry.EntityType,
		NormalizedTerm: entry.NormalizedTerm,
		Tokens:         entry.Tokens,
		MatchType:      mt,
	}
}

func allTokensPresent(tokens []string, set map[string]struct{}) bool {
	for _, tok := range tokens {
		if _, ok := set[tok]; !ok {
			return false
		}
	}
	return true
}

func containsSubstring(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}
