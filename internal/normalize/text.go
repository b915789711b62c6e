// Package normalize provides the text canonicalization used across the
// matching pipeline: diacritic folding, match normalization and clinical
// note pre-normalization.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes characters and strips combining marks, so
// "vômito" folds to "vomito" while keeping offsets 1:1 per letter.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	reMultiSpace = regexp.MustCompile(`\s+`)
	reMatchPunct = regexp.MustCompile(`[^\w\s-]`)

	reSpaceTab      = regexp.MustCompile(`[ \t]+`)
	reMultiNewline  = regexp.MustCompile(`\n{3,}`)
	rePressurePair  = regexp.MustCompile(`(\d{2,3})\s*[xX/]\s*(\d{2,3})`)
	reSpaceThenPunc = regexp.MustCompile(`\s+([,;:.])`)
	rePuncThenGlued = regexp.MustCompile(`([,;:])(\S)`)
)

// Fold strips diacritical marks from text ("cefaléia" -> "cefaleia").
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// ForMatch normalizes text for lexical matching: lowercase, diacritics
// folded, whitespace collapsed, punctuation stripped except hyphens.
func ForMatch(s string) string {
	s = Fold(strings.ToLower(s))
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMatchPunct.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Tokenize splits normalized text into whitespace-delimited tokens.
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// ClinicalText normalizes a raw clinical note before segmentation.
// Accents are preserved; only whitespace and a few emergency-room
// shorthand formats (blood pressure pairs, glued punctuation) change.
func ClinicalText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = reMultiNewline.ReplaceAllString(text, "\n\n")
	text = reSpaceTab.ReplaceAllString(text, " ")

	// 120x70 / 120/70 -> 120 x 70, but only when it looks like a PA reading
	text = rePressurePair.ReplaceAllString(text, "${1} x ${2}")

	text = reSpaceThenPunc.ReplaceAllString(text, "${1}")
	text = rePuncThenGlued.ReplaceAllString(text, "${1} ${2}")

	return strings.TrimSpace(text)
}

// IsAlnum reports whether r counts as a word character for span expansion.
func IsAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
