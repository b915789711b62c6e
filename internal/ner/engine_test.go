package ner

import (
	"testing"

	"github.com/ricardo-wurzmann/healthtech/internal/lexicon"
	"github.com/ricardo-wurzmann/healthtech/internal/segment"
)

func testIndex(terms ...lexicon.Term) *lexicon.Index {
	return lexicon.NewIndex(terms)
}

func wholeSentence(text string) []segment.Sentence {
	return []segment.Sentence{{Text: text, Start: 0, End: len([]rune(text))}}
}

func TestExtractLexiconSymptoms(t *testing.T) {
	ix := testIndex(
		lexicon.Term{Text: "febre", EntityType: lexicon.TypeSymptom},
		lexicon.Term{Text: "cefaleia", EntityType: lexicon.TypeSymptom},
	)
	m := NewMatcher(ix, DefaultPatterns, DefaultConfig())

	text := "Paciente apresenta febre alta e cefaleia intensa."
	spans := m.Extract(false, text, wholeSentence(text))

	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(spans), spans)
	}

	runes := []rune(text)
	want := []string{"febre", "cefaleia"}
	for i, s := range spans {
		if s.Type != lexicon.TypeSymptom {
			t.Errorf("span %d type = %q, want SYMPTOM", i, s.Type)
		}
		if s.Span != want[i] {
			t.Errorf("span %d = %q, want %q", i, s.Span, want[i])
		}
		if got := string(runes[s.Start:s.End]); got != s.Span {
			t.Errorf("span %d offsets (%d,%d) select %q, not %q", i, s.Start, s.End, got, s.Span)
		}
		if s.Score < 0.95 {
			t.Errorf("span %d score = %v, want >= 0.95", i, s.Score)
		}
	}
}

func TestExtractMultiWordExact(t *testing.T) {
	ix := testIndex(
		lexicon.Term{Text: "dor abdominal", EntityType: lexicon.TypeSymptom},
		lexicon.Term{Text: "dor", EntityType: lexicon.TypeSymptom},
	)
	m := NewMatcher(ix, nil, DefaultConfig())

	text := "Refere dor abdominal difusa."
	spans := m.Extract(false, text, wholeSentence(text))

	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(spans), spans)
	}
	if spans[0].Span != "dor abdominal" {
		t.Errorf("span = %q, want %q", spans[0].Span, "dor abdominal")
	}
	if spans[0].Score != 0.99 {
		t.Errorf("score = %v, want 0.99 for exact phrase", spans[0].Score)
	}
}

func TestExtractRegexLayer(t *testing.T) {
	m := NewMatcher(testIndex(), DefaultPatterns, DefaultConfig())

	text := "Glasgow 15, PA 120x80."
	spans := m.Extract(false, text, wholeSentence(text))

	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(spans), spans)
	}
	for _, s := range spans {
		if s.Type != "TEST" {
			t.Errorf("span %q type = %q, want TEST", s.Span, s.Type)
		}
	}
}

func TestExtractFuzzyFallback(t *testing.T) {
	ix := testIndex(
		lexicon.Term{Text: "cefaleia intensa", EntityType: lexicon.TypeSymptom},
	)
	m := NewMatcher(ix, nil, DefaultConfig())

	// "cefaleia" alone shares a token but the full phrase never appears,
	// so only the fuzzy layer can reach it
	text := "Queixa de cefaleia persistente."
	spans := m.Extract(false, text, wholeSentence(text))

	for _, s := range spans {
		if s.Score >= 0.99 {
			t.Errorf("fuzzy layer produced exact-level score: %+v", s)
		}
		if s.Score < 0.90 {
			t.Errorf("span below fuzzy gate survived: %+v", s)
		}
	}
}

func TestExtractFuzzyDisabled(t *testing.T) {
	ix := testIndex(
		lexicon.Term{Text: "cefaleia intensa", EntityType: lexicon.TypeSymptom},
	)
	m := NewMatcher(ix, nil, Config{MinFuzzy: DefaultMinFuzzy, EnableFuzzy: false})

	text := "Queixa de cefaleia persistente."
	if spans := m.Extract(false, text, wholeSentence(text)); len(spans) != 0 {
		t.Errorf("got %d spans with fuzzy disabled, want 0: %+v", len(spans), spans)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	// same term loaded twice still yields a single span
	ix := testIndex(
		lexicon.Term{Text: "febre", EntityType: lexicon.TypeSymptom},
		lexicon.Term{Text: "Febre", EntityType: lexicon.TypeSymptom},
	)
	m := NewMatcher(ix, nil, DefaultConfig())

	text := "Apresenta febre."
	spans := m.Extract(false, text, wholeSentence(text))

	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(spans), spans)
	}
}

func TestExtractEmptyText(t *testing.T) {
	m := NewMatcher(testIndex(), nil, DefaultConfig())
	if spans := m.Extract(false, "", nil); len(spans) != 0 {
		t.Errorf("got %+v, want none", spans)
	}
}
