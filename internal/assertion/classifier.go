// Package assertion classifies entity mentions as present, negated,
// possible or historical using rule-based left-context triggers for PT-BR
// clinical text.
package assertion

import (
	"regexp"
	"strings"
)

// Assertion labels.
const (
	Present    = "PRESENT"
	Negated    = "NEGATED"
	Possible   = "POSSIBLE"
	Historical = "HISTORICAL"
)

// leftWindowChars bounds how far back the classifier looks for triggers.
const leftWindowChars = 60

// breakers end a trigger's scope: strong punctuation and contrastive
// connectives ("sem X, porém Y" must not negate Y).
var breakersRe = regexp.MustCompile(
	`(?i)(\.|;|:|\n|\bmas\b|\bpor[eé]m\b|\bcontudo\b|\bentretanto\b|\bno entanto\b|\btodavia\b|\bpor outro lado\b)`)

var whitespaceRe = regexp.MustCompile(`\s+`)

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

var negTriggers = compileAll([]string{
	// direct negation verbs
	`\bnega(?:ndo|do|)\b`,
	`\bnegou\b`,
	`\bnegava\b`,
	`\bnega\s+queix(?:a|as)\b`,
	`\bnega\s+sintomas?\b`,
	`\bnega\s+(?:dor|febre|dispneia|vomitos?|n[aã]useas?)\b`,

	// "sem" patterns
	`\bsem\b`,
	`\bsem\s+sinais?\s+de\b`,
	`\bsem\s+evid[eê]ncia\s+de\b`,
	`\bsem\s+queixas?\s+de\b`,

	// "não" patterns
	`\bn[aã]o\b`,
	`\bn[aã]o\s+(apresenta|refere|relata|tem|possui|evidencia)\b`,
	`\bn[aã]o\s+houve\b`,
	`\bn[aã]o\s+nega\b`,

	// absence words
	`\bausent[ea]s?\b`,
	`\binexistente\b`,
	`\bnega(?:tivo|tiva|)\b`,
})

var possibleTriggers = compileAll([]string{
	`\bsuspeit[ae]\b`,
	`\bhip[oó]teses?\b`,
	`\bprov[aá]vel\b`,
	`\bposs[ií]vel\b`,
	`\bcompat[ií]vel\s+com\b`,
	`\ba\s+esclarecer\b`,
	`\ba\s+confirmar\b`,
	`\bdiferencial\b`,
	`\bddx\b`,
	`\?\s*$`,
})

var histTriggers = compileAll([]string{
	`\bhist[oó]ria\s+de\b`,
	`\bantecedentes?\b`,
	`\bantecedentes?\s+pessoais\b`,
	`\bhpp\b`,
	`\bap\s*:\b`,
	`\baf\s*:\b`,
	`\bpreviamente\b`,
	`\banteriormente\b`,
	`\bpr[eé]vio\b`,
})

// Classify decides the assertion for an entity inside its sentence.
// entStart/entEnd are rune offsets relative to the sentence. Only the left
// context is inspected, cut at the last scope breaker, and trigger
// categories resolve by precedence NEGATED > POSSIBLE > HISTORICAL.
// Anatomy mentions are never negated.
func Classify(sentence string, entStart, entEnd int, entType string) string {
	if strings.ToUpper(strings.TrimSpace(entType)) == "ANATOMY" {
		return Present
	}
	if sentence == "" {
		return Present
	}

	norm := []rune(normSentence(sentence))
	if entStart < 0 {
		entStart = 0
	}
	if entStart > len(norm) {
		entStart = len(norm)
	}

	windowStart := entStart - leftWindowChars
	if windowStart < 0 {
		windowStart = 0
	}
	left := cutAfterLastBreaker(string(norm[windowStart:entStart]))

	if anyMatch(left, negTriggers) {
		return Negated
	}
	if anyMatch(left, possibleTriggers) {
		return Possible
	}
	if anyMatch(left, histTriggers) {
		return Historical
	}
	return Present
}

// normSentence lowercases and collapses whitespace. Entity offsets are
// applied to this collapsed form, so the window can shift slightly when the
// sentence carries runs of whitespace; acceptable for a 60-char window.
func normSentence(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ToLower(s), " "))
}

// cutAfterLastBreaker drops everything up to and including the last scope
// breaker in the left context.
func cutAfterLastBreaker(left string) string {
	locs := breakersRe.FindAllStringIndex(left, -1)
	if len(locs) == 0 {
		return left
	}
	last := locs[len(locs)-1]
	return strings.TrimSpace(left[last[1]:])
}

func anyMatch(left string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(left) {
			return true
		}
	}
	return false
}
