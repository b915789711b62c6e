package canonical

import (
	"regexp"
	"strings"
)

var (
	dosageRe = regexp.MustCompile(`\d+\s*(mg|g|ml|mcg|ui)`)
	formRe   = regexp.MustCompile(`(comprimido|capsula|solucao|ampola|frasco|suspensao|creme|pomada|dragea|xarope|solução|cápsula|drágea)`)

	drugStopwords = map[string]struct{}{
		"de": {}, "da": {}, "do": {}, "com": {}, "em": {},
		"a": {}, "o": {}, "e": {}, "para": {}, "por": {},
	}
)

// NormalizeDrugName reduces a full drug product name to its active
// ingredient: "PARACETAMOL 500MG COMPRIMIDO" yields "paracetamol".
// It returns "" when nothing usable remains or when the first remaining
// token is shorter than 4 runes.
func NormalizeDrugName(name string) string {
	normalized := strings.ToLower(name)
	normalized = dosageRe.ReplaceAllString(normalized, "")
	normalized = formRe.ReplaceAllString(normalized, "")

	var words []string
	for _, w := range strings.Fields(normalized) {
		if _, stop := drugStopwords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return ""
	}

	first := words[0]
	if len([]rune(first)) < 4 {
		return ""
	}
	return strings.TrimSpace(first)
}
