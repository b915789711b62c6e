package canonical

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/ricardo-wurzmann/healthtech/internal/ner"
	"github.com/ricardo-wurzmann/healthtech/internal/segment"
)

// portugueseStopwords are surface forms never matched as medical terms,
// regardless of what the vocabulary says.
var portugueseStopwords = map[string]struct{}{
	"a": {}, "o": {}, "e": {}, "de": {}, "da": {}, "do": {}, "em": {},
	"na": {}, "no": {}, "para": {}, "por": {}, "com": {}, "sem": {},
	"sob": {}, "sobre": {}, "ou": {}, "mas": {}, "se": {}, "ao": {},
	"aos": {}, "as": {}, "os": {}, "um": {}, "uma": {}, "uns": {},
	"umas": {}, "que": {}, "qual": {},
}

// MatchText scans a document for vocabulary hits. entityTypes optionally
// restricts the result ("PROBLEM", "DRUG", ...); nil means all types. The
// result is non-overlapping, resolved by a confidence-first left-to-right
// sweep, and sorted by start offset.
func (v *Vocabulary) MatchText(text string, entityTypes []string) []Match {
	typeFilter := make(map[string]struct{}, len(entityTypes))
	for _, t := range entityTypes {
		typeFilter[t] = struct{}{}
	}

	textRunes := []rune(text)
	upper := foldCase(textRunes, unicode.ToUpper)

	var matches []Match

	for _, entryText := range v.entryTexts {
		for _, loc := range findWholeTerm(upper, []rune(entryText)) {
			start, end := loc[0], loc[1]
			original := string(textRunes[start:end])

			for _, entry := range v.entryIndex[entryText] {
				if v.shouldSkipMatch(entryText, entry, original) {
					continue
				}
				concept, ok := v.concepts[entry.ConceptID]
				if !ok {
					continue
				}
				if len(typeFilter) > 0 {
					if _, want := typeFilter[concept.EntityType]; !want {
						continue
					}
				}
				matches = append(matches, Match{
					Text:        original,
					ConceptID:   concept.ConceptID,
					ConceptName: concept.ConceptName,
					EntityType:  concept.EntityType,
					Vocabulary:  concept.Vocabulary,
					MatchType:   "exact",
					MatchPolicy: entry.MatchPolicy,
					EntryType:   entry.EntryType,
					Confidence:  confidence(entry),
					Start:       start,
					End:         end,
				})
			}
		}
	}

	if _, wantDrugs := typeFilter["DRUG"]; wantDrugs || len(typeFilter) == 0 {
		matches = append(matches, v.matchDrugs(textRunes)...)
	}

	return resolveMatches(matches)
}

// matchDrugs is the second pass over the normalized drug index. The scan
// tolerates a trailing dosage so "paracetamol 500mg" matches as one span.
func (v *Vocabulary) matchDrugs(textRunes []rune) []Match {
	lower := foldCase(textRunes, unicode.ToLower)

	var matches []Match
	for _, name := range v.drugNames {
		if _, stop := portugueseStopwords[name]; stop {
			continue
		}
		for _, loc := range findDrugTerm(lower, []rune(name)) {
			start, end := loc[0], loc[1]

			for _, conceptID := range v.drugIndex[name] {
				concept, ok := v.concepts[conceptID]
				if !ok {
					continue
				}
				matches = append(matches, Match{
					Text:        string(textRunes[start:end]),
					ConceptID:   concept.ConceptID,
					ConceptName: concept.ConceptName,
					EntityType:  "DRUG",
					Vocabulary:  "TUSS_DRUG",
					MatchType:   "normalized",
					MatchPolicy: PolicySafeExact,
					EntryType:   EntryDrugNormalized,
					Confidence:  0.85,
					Start:       start,
					End:         end,
				})
			}
		}
	}
	return matches
}

// shouldSkipMatch applies the short-form policy. Codes always pass;
// one-letter entries and stopwords never do; two-letter entries pass only
// as declared abbreviations written fully uppercase in the source text.
func (v *Vocabulary) shouldSkipMatch(entryText string, entry Entry, original string) bool {
	if entry.EntryType == EntryCode {
		return false
	}

	length := len([]rune(entryText))
	if length == 1 {
		return true
	}
	if _, stop := portugueseStopwords[strings.ToLower(entryText)]; stop {
		return true
	}
	if length == 2 {
		if entry.EntryType == EntryAbbr && isUpper(original) {
			return false
		}
		return true
	}
	return false
}

// confidence maps an entry to its match confidence.
func confidence(entry Entry) float64 {
	if entry.MatchPolicy == PolicyContextRequired {
		return 0.50
	}
	switch entry.EntryType {
	case EntryOfficial:
		return 0.95
	case EntryCode:
		return 0.90
	case EntryAbbr:
		return 0.85
	default:
		return 0.80
	}
}

// resolveMatches sorts by (start, confidence descending) and keeps the
// first match whose start is at or past the last accepted end. This is a
// confidence-first sweep, deliberately different from the length-first
// resolver used by the lexicon matcher.
func resolveMatches(matches []Match) []Match {
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].Confidence > matches[j].Confidence
	})

	var filtered []Match
	lastEnd := -1
	for _, m := range matches {
		if m.Start >= lastEnd {
			filtered = append(filtered, m)
			lastEnd = m.End
		}
	}
	return filtered
}

// ExtractEntities converts vocabulary matches into the pipeline's entity
// span representation, attributing each match to its containing sentence.
func (v *Vocabulary) ExtractEntities(text string, sents []segment.Sentence, entityTypes []string) []ner.EntitySpan {
	matches := v.MatchText(text, entityTypes)

	textLen := len([]rune(text))
	spans := make([]ner.EntitySpan, 0, len(matches))

	for _, m := range matches {
		sentStart, sentEnd := 0, textLen
		sentText := text
		for _, s := range sents {
			if s.Start <= m.Start && m.Start < s.End {
				sentStart, sentEnd = s.Start, s.End
				sentText = s.Text
				break
			}
		}

		spans = append(spans, ner.EntitySpan{
			Span:          m.Text,
			Start:         m.Start,
			End:           m.End,
			Type:          m.EntityType,
			Score:         m.Confidence,
			SentenceStart: sentStart,
			SentenceEnd:   sentEnd,
			Evidence: fmt.Sprintf("concept_id=%s concept=%s vocabulary=%s entry_type=%s policy=%s sentence=%s",
				m.ConceptID, m.ConceptName, m.Vocabulary, m.EntryType, m.MatchPolicy,
				strings.TrimSpace(sentText)),
		})
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].Score > spans[j].Score
	})
	return spans
}

// foldCase maps runes one-to-one so offsets in the folded text line up
// with the original rune positions.
func foldCase(runes []rune, fold func(rune) rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = fold(r)
	}
	return out
}

// dosageSuffixRe extends a drug-name hit over a trailing dosage. It only
// matches ASCII, so its byte length equals its rune length.
var dosageSuffixRe = regexp.MustCompile(`^\s+\d+\s*(?:mcg|mg|ml|g|ui)`)

// isWordRune matches the word class used for term boundaries: letters,
// digits and underscore, Unicode-aware. regexp's \b is ASCII-only and
// treats accented letters as boundaries, which drops vocabulary entries
// like "ÚLCERA GÁSTRICA".
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func hasRunePrefix(text, prefix []rune) bool {
	if len(text) < len(prefix) {
		return false
	}
	for i, r := range prefix {
		if text[i] != r {
			return false
		}
	}
	return true
}

// findWholeTerm returns the rune ranges where term occurs in text with a
// non-word rune (or the text edge) on both sides. Occurrences do not
// overlap; scanning resumes at the end of each hit.
func findWholeTerm(text, term []rune) [][2]int {
	k := len(term)
	if k == 0 {
		return nil
	}

	var out [][2]int
	for i := 0; i+k <= len(text); i++ {
		if !hasRunePrefix(text[i:], term) {
			continue
		}
		if i > 0 && isWordRune(text[i-1]) {
			continue
		}
		if i+k < len(text) && isWordRune(text[i+k]) {
			continue
		}
		out = append(out, [2]int{i, i + k})
		i += k - 1
	}
	return out
}

// findDrugTerm locates name like findWholeTerm but extends each hit over
// an optional trailing dosage. If the extended span does not end at a
// boundary the bare name is kept instead.
func findDrugTerm(text, name []rune) [][2]int {
	k := len(name)
	if k == 0 {
		return nil
	}

	var out [][2]int
	for i := 0; i+k <= len(text); i++ {
		if !hasRunePrefix(text[i:], name) {
			continue
		}
		if i > 0 && isWordRune(text[i-1]) {
			continue
		}
		end := i + k
		if m := dosageSuffixRe.FindString(string(text[end:])); m != "" {
			ext := end + len(m)
			if ext >= len(text) || !isWordRune(text[ext]) {
				out = append(out, [2]int{i, ext})
				i = ext - 1
				continue
			}
		}
		if end < len(text) && isWordRune(text[end]) {
			continue
		}
		out = append(out, [2]int{i, end})
		i = end - 1
	}
	return out
}

// isUpper reports whether s is fully uppercase and actually cased.
func isUpper(s string) bool {
	return strings.ToUpper(s) == s && strings.ToLower(s) != s
}
