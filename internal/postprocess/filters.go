// Package postprocess removes junk predictions before output: spans with
// broken offsets, too-short or stopword-only mentions, and symptom spans
// lacking a clinical nucleus token.
package postprocess

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ricardo-wurzmann/healthtech/internal/ner"
	"github.com/ricardo-wurzmann/healthtech/internal/normalize"
)

// defaultStopwords are common PT function words and note boilerplate.
var defaultStopwords = []string{
	"a", "o", "os", "as", "de", "da", "do", "das", "dos", "e", "em", "no", "na",
	"nos", "nas", "com", "sem", "por", "para", "ao", "aos", "à", "às", "um", "uma",
	"uns", "umas", "que", "se", "foi", "está", "esta", "relatando", "refere",
	"nega", "apresenta", "paciente", "pela", "pelo", "pelas", "pelos",
}

// defaultSymptomNucleus lists tokens a SYMPTOM span must contain to count
// as a real complaint.
var defaultSymptomNucleus = []string{
	"dor", "cefaleia", "febre", "vomito", "vômito", "náusea", "nausea", "dispneia",
	"tosse", "diarreia", "disúria", "disuria", "prostração", "astenia", "tontura",
	"sangramento", "prurido", "edema", "cansaço", "fadiga", "palpitação", "palpitacao",
	"mal", "estar", "desconforto", "ardor", "queimação", "queimacao", "ardência",
	"ardencia", "formigamento", "parestesia", "anorexia", "perda", "ganho", "peso",
	"sede", "poliúria", "poliuria", "oligúria", "oliguria", "incontinência", "incontinencia",
	"constipação", "constipacao", "obstipação", "obstipacao", "flatulência", "flatulencia",
	"hemorragia", "hematúria", "hematuria", "melena", "hematêmese", "hematemese",
	"hemoptise", "epistaxe", "síncope", "sincope", "convulsão", "convulsao",
	"tremor", "rigidez", "espasmo", "câimbra", "caimbra", "fraqueza", "debilidade",
	"mialgia", "artralgia", "cervicalgia", "lombalgia", "dorsalgia", "cefalgia",
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Config tunes the entity filter.
type Config struct {
	MinChars       int
	ApplyToTypes   map[string]struct{} // stopword/nucleus rules apply to these types only
	Stopwords      map[string]struct{} // normalized
	SymptomNucleus map[string]struct{} // normalized
	TrimPunct      bool
}

// DefaultConfig filters SYMPTOM spans with the standard word lists.
func DefaultConfig() Config {
	return Config{
		MinChars:       4,
		ApplyToTypes:   map[string]struct{}{"SYMPTOM": {}},
		Stopwords:      normalizeSet(defaultStopwords),
		SymptomNucleus: normalizeSet(defaultSymptomNucleus),
		TrimPunct:      true,
	}
}

func normalizeSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[normalizeToken(w)] = struct{}{}
	}
	return set
}

// normalizeToken lowercases and strips accents for set membership.
func normalizeToken(tok string) string {
	return normalize.Fold(strings.ToLower(strings.TrimSpace(tok)))
}

func tokenizeSpan(span string) []string {
	return wordRe.FindAllString(strings.ToLower(span), -1)
}

// Result carries kept and removed entities so callers can expose the
// filter decision (the debug endpoint shows both sides).
type Result struct {
	Kept    []ner.EntitySpan
	Removed []ner.EntitySpan
}

// Filter applies the configured rules against the original text. Offsets
// are rune offsets. Punctuation trimming rewrites span/start/end in place
// on the returned copies; nothing in the input slice is mutated.
func Filter(entities []ner.EntitySpan, rawText string, cfg Config) Result {
	textRunes := []rune(rawText)
	n := len(textRunes)

	var res Result
	for _, ent := range entities {
		kept, ok := filterOne(ent, textRunes, n, cfg)
		if ok {
			res.Kept = append(res.Kept, kept)
		} else {
			res.Removed = append(res.Removed, ent)
		}
	}
	return res
}

func filterOne(ent ner.EntitySpan, textRunes []rune, n int, cfg Config) (ner.EntitySpan, bool) {
	if ent.Start < 0 || ent.End > n || ent.End <= ent.Start {
		return ent, false
	}

	extracted := strings.TrimSpace(string(textRunes[ent.Start:ent.End]))
	if extracted == "" {
		return ent, false
	}
	if len([]rune(extracted)) < cfg.MinChars {
		return ent, false
	}
	if !hasLetter(extracted) {
		return ent, false
	}

	if cfg.TrimPunct {
		start, end := trimPunctuation(textRunes, ent.Start, ent.End)
		if start < end {
			ent.Start, ent.End = start, end
			ent.Span = string(textRunes[start:end])
			extracted = ent.Span
		}
	}

	if len(cfg.ApplyToTypes) > 0 {
		if _, apply := cfg.ApplyToTypes[ent.Type]; !apply {
			return ent, true
		}
	}

	tokens := tokenizeSpan(extracted)
	if len(tokens) == 0 {
		return ent, false
	}

	allStop := true
	for _, tok := range tokens {
		if _, stop := cfg.Stopwords[normalizeToken(tok)]; !stop {
			allStop = false
			break
		}
	}
	if allStop {
		return ent, false
	}

	if ent.Type == "SYMPTOM" {
		hasNucleus := false
		for _, tok := range tokens {
			if _, ok := cfg.SymptomNucleus[normalizeToken(tok)]; ok {
				hasNucleus = true
				break
			}
		}
		if !hasNucleus {
			return ent, false
		}
	}

	return ent, true
}

// trimPunctuation shrinks the span past leading/trailing punctuation,
// leaving whitespace and alphanumerics alone.
func trimPunctuation(textRunes []rune, start, end int) (int, int) {
	if start >= end || start < 0 || end > len(textRunes) {
		return start, end
	}
	for start < end && !isAlnumRune(textRunes[start]) && !unicode.IsSpace(textRunes[start]) {
		start++
	}
	for end > start && !isAlnumRune(textRunes[end-1]) && !unicode.IsSpace(textRunes[end-1]) {
		end--
	}
	return start, end
}

func isAlnumRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
