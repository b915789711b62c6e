// Package ner implements the baseline span matcher: layered retrieval of
// clinical entity mentions (regex patterns, lexicon lookup, fuzzy fallback)
// followed by overlap resolution.
package ner

import (
	"sort"
	"strings"
	"unicode/utf8"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/ricardo-wurzmann/healthtech/internal/debug"
	"github.com/ricardo-wurzmann/healthtech/internal/lexicon"
	"github.com/ricardo-wurzmann/healthtech/internal/normalize"
	"github.com/ricardo-wurzmann/healthtech/internal/segment"
)

// Scores assigned per retrieval layer. Regex patterns carry their own.
const (
	scoreExact = 0.99
	scoreToken = 0.95

	// DefaultMinFuzzy is the minimum partial-ratio similarity (0-100)
	// accepted by the fuzzy fallback layer.
	DefaultMinFuzzy = 90
)

// EntitySpan is one extracted entity occurrence. Start/End are half-open
// rune offsets into the original (accented) document text; Span always
// equals text[Start:End] after offset normalization.
type EntitySpan struct {
	Span          string  `json:"span"`
	Start         int     `json:"start"`
	End           int     `json:"end"`
	Type          string  `json:"type"`
	Score         float64 `json:"score"`
	SentenceStart int     `json:"sentence_start"`
	SentenceEnd   int     `json:"sentence_end"`
	Evidence      string  `json:"evidence"`
}

// Config tunes the matcher layers.
type Config struct {
	MinFuzzy    int  // minimum fuzzy similarity 0-100
	EnableFuzzy bool // fuzzy fallback on/off
}

// DefaultConfig returns the standard layer configuration.
func DefaultConfig() Config {
	return Config{MinFuzzy: DefaultMinFuzzy, EnableFuzzy: true}
}

// Matcher produces candidate entity spans for a document using three
// retrieval layers in strict precedence: regex patterns, lexicon
// exact/token matches, and a fuzzy fallback that only runs for sentences
// where the first two layers found nothing. The index is read-only and the
// matcher is safe for concurrent use.
type Matcher struct {
	index    *lexicon.Index
	patterns []Pattern
	config   Config
	resolver OverlapStrategy
}

// NewMatcher creates a matcher over a built lexicon index.
func NewMatcher(index *lexicon.Index, patterns []Pattern, config Config) *Matcher {
	if patterns == nil {
		patterns = DefaultPatterns
	}
	return &Matcher{
		index:    index,
		patterns: patterns,
		config:   config,
		resolver: LongestSpanResolver{},
	}
}

// Extract returns the resolved, non-overlapping entity spans for a
// document. text is the normalized document (accents preserved);
// sentences must cover it with rune offsets.
func (m *Matcher) Extract(localDebug bool, text string, sents []segment.Sentence) []EntitySpan {
	defer debug.Timing(localDebug, "span extraction")()

	textRunes := []rune(text)
	var results []EntitySpan

	// Layer 1: high-precision regex patterns over raw sentence text
	for _, sent := range sents {
		results = append(results, m.matchPatterns(textRunes, sent)...)
	}
	debug.Output(localDebug, "pattern layer: %d candidates", len(results))

	// Layers 2 and 3: lexicon retrieval per sentence, fuzzy fallback only
	// when a sentence produced no exact/token candidates
	for _, sent := range sents {
		sentNorm := normalize.ForMatch(sent.Text)
		sentTokens := normalize.Tokenize(sentNorm)
		sentRunes := []rune(sent.Text)

		candidates := m.index.FindCandidates(sentNorm, sentTokens)

		hasLexical := false
		for _, cand := range candidates {
			if cand.MatchType != lexicon.MatchExact && cand.MatchType != lexicon.MatchToken {
				continue
			}
			hasLexical = true
			if span, ok := m.lexiconSpan(textRunes, sentRunes, sentNorm, sent, cand); ok {
				results = append(results, span)
			}
		}

		if m.config.EnableFuzzy && !hasLexical {
			seeds := m.index.FindFuzzyCandidates(sentNorm, sentTokens, candidates)
			for _, cand := range seeds {
				if span, ok := m.fuzzySpan(textRunes, sentRunes, sentNorm, sentTokens, sent, cand); ok {
					results = append(results, span)
				}
			}
		}
	}
	debug.Output(localDebug, "all layers: %d candidates", len(results))

	resolved := m.resolver.Resolve(dedupe(results))
	debug.Output(localDebug, "resolved: %d spans", len(resolved))

	sort.SliceStable(resolved, func(i, j int) bool {
		if resolved[i].Start != resolved[j].Start {
			return resolved[i].Start < resolved[j].Start
		}
		return resolved[i].Score > resolved[j].Score
	})
	return resolved
}

// matchPatterns runs the regex layer over one sentence.
func (m *Matcher) matchPatterns(textRunes []rune, sent segment.Sentence) []EntitySpan {
	var spans []EntitySpan

	for _, pat := range m.patterns {
		for _, loc := range pat.Re.FindAllStringIndex(sent.Text, -1) {
			start := sent.Start + utf8.RuneCountInString(sent.Text[:loc[0]])
			end := sent.Start + utf8.RuneCountInString(sent.Text[:loc[1]])

			nStart, nEnd, ok := NormalizeSpan(textRunes, start, end)
			if !ok {
				continue
			}
			spans = append(spans, EntitySpan{
				Span:          string(textRunes[nStart:nEnd]),
				Start:         nStart,
				End:           nEnd,
				Type:          pat.EntityType,
				Score:         pat.Score,
				SentenceStart: sent.Start,
				SentenceEnd:   sent.End,
				Evidence:      strings.TrimSpace(sent.Text),
			})
		}
	}
	return spans
}

// lexiconSpan maps one exact/token lexicon candidate back into original
// text coordinates.
func (m *Matcher) lexiconSpan(textRunes, sentRunes []rune, sentNorm string, sent segment.Sentence, cand lexicon.Candidate) (EntitySpan, bool) {
	loc := FindSpanInOriginal(sentRunes, sentNorm, cand.NormalizedTerm, sent.Start)
	if loc.Kind == LocateNotFound {
		return EntitySpan{}, false
	}

	// clamp to sentence bounds; approximate locations can spill over
	start := max(sent.Start, loc.Start)
	end := min(sent.End, loc.End)

	nStart, nEnd, ok := NormalizeSpan(textRunes, start, end)
	if !ok || nStart >= nEnd {
		return EntitySpan{}, false
	}

	score := scoreToken
	if cand.MatchType == lexicon.MatchExact {
		score = scoreExact
	}
	return EntitySpan{
		Span:          string(textRunes[nStart:nEnd]),
		Start:         nStart,
		End:           nEnd,
		Type:          cand.EntityType,
		Score:         score,
		SentenceStart: sent.Start,
		SentenceEnd:   sent.End,
		Evidence:      strings.TrimSpace(sent.Text),
	}, true
}

// fuzzySpan scores a fuzzy seed against token windows of the sentence and
// keeps the best window meeting the similarity threshold.
func (m *Matcher) fuzzySpan(textRunes, sentRunes []rune, sentNorm string, sentTokens []string, sent segment.Sentence, cand lexicon.Candidate) (EntitySpan, bool) {
	bestScore := 0
	bestStart, bestEnd := -1, -1

	// slide an n-token window across the sentence
	n := len(cand.Tokens)
	if n > 0 && len(sentTokens) >= n {
		for i := 0; i+n <= len(sentTokens); i++ {
			window := strings.Join(sentTokens[i:i+n], " ")
			score := fuzzy.PartialRatio(cand.NormalizedTerm, window)
			if score <= bestScore {
				continue
			}
			pos := strings.Index(sentNorm, window)
			if pos == -1 {
				continue
			}
			bestScore = score
			bestStart = sent.Start + pos
			bestEnd = min(sent.End, bestStart+len([]rune(window)))
		}
	}

	// whole-sentence comparison can beat every window
	if whole := fuzzy.PartialRatio(cand.NormalizedTerm, sentNorm); whole > bestScore {
		if loc := FindSpanInOriginal(sentRunes, sentNorm, cand.NormalizedTerm, sent.Start); loc.Kind != LocateNotFound {
			bestScore = whole
			bestStart = loc.Start
			bestEnd = loc.End
		}
	}

	if bestScore < m.config.MinFuzzy || bestStart < 0 || bestEnd < 0 {
		return EntitySpan{}, false
	}

	nStart, nEnd, ok := NormalizeSpan(textRunes, bestStart, bestEnd)
	if !ok {
		return EntitySpan{}, false
	}
	return EntitySpan{
		Span:          string(textRunes[nStart:nEnd]),
		Start:         nStart,
		End:           nEnd,
		Type:          cand.EntityType,
		Score:         float64(bestScore) / 100.0,
		SentenceStart: sent.Start,
		SentenceEnd:   sent.End,
		Evidence:      strings.TrimSpace(sent.Text),
	}, true
}

// dedupe removes exact (start,end,type) duplicates keeping the max score,
// preserving first-seen ordering.
func dedupe(spans []EntitySpan) []EntitySpan {
	type key struct {
		start, end int
		entityType string
	}

	pos := make(map[key]int)
	var out []EntitySpan

	for _, s := range spans {
		k := key{s.Start, s.End, s.Type}
		if i, seen := pos[k]; seen {
			if s.Score > out[i].Score {
				out[i] = s
			}
			continue
		}
		pos[k] = len(out)
		out = append(out, s)
	}
	return out
}
