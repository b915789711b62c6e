package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ricardo-wurzmann/healthtech/internal/normalize"
)

func testTerms() []Term {
	return []Term{
		{Text: "febre", EntityType: TypeSymptom},
		{Text: "cefaleia", EntityType: TypeSymptom},
		{Text: "dor abdominal", EntityType: TypeSymptom},
		{Text: "cultura de urina", EntityType: TypeTest},
		{Text: "dipirona", EntityType: TypeDrug},
	}
}

func query(ix *Index, sentence string) []Candidate {
	norm := normalize.ForMatch(sentence)
	return ix.FindCandidates(norm, normalize.Tokenize(norm))
}

func TestFindCandidatesExactAndToken(t *testing.T) {
	ix := NewIndex(testTerms())

	cands := query(ix, "Paciente apresenta febre alta e dor abdominal difusa.")

	var gotExact, gotToken []string
	for _, c := range cands {
		switch c.MatchType {
		case MatchExact:
			gotExact = append(gotExact, c.NormalizedTerm)
		case MatchToken:
			gotToken = append(gotToken, c.NormalizedTerm)
		}
	}

	if len(gotExact) != 1 || gotExact[0] != "dor abdominal" {
		t.Errorf("exact candidates = %v, want [dor abdominal]", gotExact)
	}
	if len(gotToken) != 1 || gotToken[0] != "febre" {
		t.Errorf("token candidates = %v, want [febre]", gotToken)
	}
}

func TestFindCandidatesNoDuplicateExactToken(t *testing.T) {
	ix := NewIndex(testTerms())

	cands := query(ix, "dor abdominal")

	count := 0
	for _, c := range cands {
		if c.NormalizedTerm == "dor abdominal" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("got %d candidates for the same normalized term, want 1", count)
	}
}

func TestFindCandidatesWordBoundary(t *testing.T) {
	ix := NewIndex(testTerms())

	// "febril" contains "febre"? It does not, but "cefaleia" inside a
	// longer token must not match as a whole word.
	cands := query(ix, "quadro cefaleiforme")
	for _, c := range cands {
		if c.NormalizedTerm == "cefaleia" {
			t.Errorf("matched %q inside a longer token", c.NormalizedTerm)
		}
	}
}

func TestFindFuzzyCandidates(t *testing.T) {
	ix := NewIndex(testTerms())

	norm := normalize.ForMatch("relata dor nas costas")
	tokens := normalize.Tokenize(norm)

	existing := ix.FindCandidates(norm, tokens)
	fuzzy := ix.FindFuzzyCandidates(norm, tokens, existing)

	// "dor abdominal" shares the token "dor" but is not a substring
	found := false
	for _, c := range fuzzy {
		if c.NormalizedTerm == "dor abdominal" && c.MatchType == MatchFuzzy {
			found = true
		}
	}
	if !found {
		t.Errorf("fuzzy candidates = %v, want seed for 'dor abdominal'", fuzzy)
	}

	// fuzzy is suppressed when exact/token candidates exist
	if got := ix.FindFuzzyCandidates(norm, tokens, []Candidate{{}}); got != nil {
		t.Errorf("fuzzy candidates with existing matches = %v, want nil", got)
	}
}

func TestEmptyIndex(t *testing.T) {
	ix := NewIndex(nil)
	if ix.Len() != 0 {
		t.Fatalf("empty index Len = %d", ix.Len())
	}
	if got := query(ix, "febre alta"); len(got) != 0 {
		t.Errorf("empty index candidates = %v, want none", got)
	}
}

func TestLoadAllPriorityAndDedup(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	// "Febré" normalizes to the same form as "febre": first priority wins.
	write("core.txt", "febre\ncefaleia\n")
	write("expanded.txt", "Febré\ntosse\n\n")

	files := []FileSpec{
		{Filename: "core.txt", EntityType: TypeSymptom, Priority: 1},
		{Filename: "expanded.txt", EntityType: TypeSymptom, Priority: 2},
		{Filename: "missing.txt", EntityType: TypeDrug, Priority: 1},
	}

	terms, err := LoadAll(dir, files)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	got := make(map[string]int)
	for _, term := range terms {
		got[normalize.ForMatch(term.Text)]++
	}

	if got["febre"] != 1 {
		t.Errorf("normalized 'febre' appears %d times, want 1", got["febre"])
	}
	if len(terms) != 3 {
		t.Errorf("loaded %d terms, want 3 (febre, cefaleia, tosse)", len(terms))
	}
	if terms[0].Text != "febre" {
		t.Errorf("first term = %q, want the priority-1 'febre'", terms[0].Text)
	}
}
