package ner

import (
	"strings"
	"unicode"

	"github.com/ricardo-wurzmann/healthtech/internal/normalize"
)

// LocateKind tags how a normalized-text match was mapped back into the
// original (accented) text.
type LocateKind int

const (
	LocateNotFound LocateKind = iota
	LocateExact
	LocateApproximate
)

// Location is the result of mapping a normalized pattern into original
// text coordinates. Offsets are rune offsets.
type Location struct {
	Start int
	End   int
	Kind  LocateKind
}

// NormalizeSpan trims whitespace/punctuation at the span edges and expands
// both ends to full alphanumeric token boundaries. It returns ok=false if
// the span collapses to nothing. The operation is idempotent.
func NormalizeSpan(text []rune, start, end int) (int, int, bool) {
	n := len(text)

	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if end < 0 {
		end = 0
	}
	if end > n {
		end = n
	}
	if start >= end {
		return 0, 0, false
	}

	// trim punctuation at both ends
	for start < end && !normalize.IsAlnum(text[start]) && !unicode.IsSpace(text[start]) {
		start++
	}
	for end > start && !normalize.IsAlnum(text[end-1]) && !unicode.IsSpace(text[end-1]) {
		end--
	}

	// trim whitespace
	for start < end && unicode.IsSpace(text[start]) {
		start++
	}
	for end > start && unicode.IsSpace(text[end-1]) {
		end--
	}

	if start >= end {
		return 0, 0, false
	}

	// expand to token boundaries
	for start > 0 && normalize.IsAlnum(text[start-1]) {
		start--
	}
	for end < n && normalize.IsAlnum(text[end]) {
		end++
	}

	if start >= end {
		return 0, 0, false
	}

	return start, end, true
}

// FindSpanInOriginal locates a normalized pattern inside the original
// (accented) sentence text. It slides a window around the pattern's
// approximate position in the normalized text and validates candidate
// windows by re-normalizing them. When validation fails the approximate
// position is still returned, tagged LocateApproximate, so that callers
// can decide whether to accept it.
//
// original is the sentence as runes; normalized is normalize.ForMatch of
// the same sentence; startOffset shifts results into document coordinates.
func FindSpanInOriginal(original []rune, normalized, pattern string, startOffset int) Location {
	normIdx := strings.Index(normalized, pattern)
	if normIdx == -1 {
		return Location{Kind: LocateNotFound}
	}

	patternLen := len([]rune(pattern))
	searchStart := normIdx - 10
	if searchStart < 0 {
		searchStart = 0
	}
	searchEnd := normIdx + patternLen + 20
	if searchEnd > len(original) {
		searchEnd = len(original)
	}

	var best *Location
	bestScore := 0.0

	for i := searchStart; i < searchEnd; i++ {
		for windowSize := patternLen - 2; windowSize <= patternLen+4; windowSize++ {
			if windowSize < 0 || i+windowSize > len(original) {
				continue
			}
			window := string(original[i : i+windowSize])
			windowNorm := normalize.ForMatch(window)

			if !strings.Contains(windowNorm, pattern) && !strings.Contains(pattern, windowNorm) {
				continue
			}

			// prefer windows whose raw length matches the pattern
			score := 0.8
			if windowSize == patternLen {
				score = 1.0
			}
			if score <= bestScore {
				continue
			}

			windowIdx := strings.Index(windowNorm, pattern)
			if windowIdx == -1 && strings.Contains(pattern, windowNorm) {
				windowIdx = 0
			}
			if windowIdx == -1 {
				continue
			}

			bestScore = score
			best = &Location{
				Start: startOffset + i + windowIdx,
				End:   startOffset + i + windowIdx + patternLen,
				Kind:  LocateExact,
			}
		}
	}

	if best != nil {
		return *best
	}

	// fallback: assume the normalized index holds in the original text
	return Location{
		Start: startOffset + normIdx,
		End:   startOffset + normIdx + patternLen,
		Kind:  LocateApproximate,
	}
}
