package postprocess

import (
	"testing"

	"github.com/ricardo-wurzmann/healthtech/internal/ner"
)

func ent(text string, start, end int, typ string) ner.EntitySpan {
	return ner.EntitySpan{
		Span:  string([]rune(text)[start:end]),
		Start: start,
		End:   end,
		Type:  typ,
		Score: 0.95,
	}
}

func TestFilterDropsStopwordOnlySpan(t *testing.T) {
	text := "Paciente com febre alta."
	entities := []ner.EntitySpan{
		ent(text, 9, 12, "SYMPTOM"),  // "com"
		ent(text, 13, 18, "SYMPTOM"), // "febre"
	}

	res := Filter(entities, text, DefaultConfig())
	if len(res.Kept) != 1 || res.Kept[0].Span != "febre" {
		t.Fatalf("kept = %+v, want only febre", res.Kept)
	}
	if len(res.Removed) != 1 || res.Removed[0].Span != "com" {
		t.Errorf("removed = %+v, want only com", res.Removed)
	}
}

func TestFilterMinLength(t *testing.T) {
	text := "refere dor no peito"
	// "dor" alone is under the 4-char minimum even though it is a nucleus
	entities := []ner.EntitySpan{ent(text, 7, 10, "SYMPTOM")}

	res := Filter(entities, text, DefaultConfig())
	if len(res.Kept) != 0 {
		t.Errorf("kept = %+v, want none", res.Kept)
	}
}

func TestFilterSymptomNucleus(t *testing.T) {
	text := "quadro de mal estar e coisa estranha"
	entities := []ner.EntitySpan{
		ent(text, 10, 19, "SYMPTOM"), // "mal estar" has nucleus tokens
		ent(text, 22, 36, "SYMPTOM"), // "coisa estranha" has none
	}

	res := Filter(entities, text, DefaultConfig())
	if len(res.Kept) != 1 || res.Kept[0].Span != "mal estar" {
		t.Fatalf("kept = %+v, want only mal estar", res.Kept)
	}
}

func TestFilterNucleusMatchesAccentedVariant(t *testing.T) {
	text := "paciente com vômito frequente"
	entities := []ner.EntitySpan{ent(text, 13, 19, "SYMPTOM")}

	res := Filter(entities, text, DefaultConfig())
	if len(res.Kept) != 1 {
		t.Fatalf("kept = %+v, want vômito", res.Kept)
	}
}

func TestFilterTrimsPunctuation(t *testing.T) {
	text := "nega (febre) atual"
	entities := []ner.EntitySpan{ent(text, 5, 12, "SYMPTOM")} // "(febre)"

	res := Filter(entities, text, DefaultConfig())
	if len(res.Kept) != 1 {
		t.Fatalf("kept = %+v, want one", res.Kept)
	}
	got := res.Kept[0]
	if got.Span != "febre" || got.Start != 6 || got.End != 11 {
		t.Errorf("trimmed to %q (%d,%d), want febre (6,11)", got.Span, got.Start, got.End)
	}
}

func TestFilterLeavesOtherTypesAlone(t *testing.T) {
	text := "PA 120 x 80 aferida"
	// numbers only would fail the letter rule, include the unit prefix
	entities := []ner.EntitySpan{ent(text, 0, 11, "TEST")}

	res := Filter(entities, text, DefaultConfig())
	if len(res.Kept) != 1 {
		t.Fatalf("kept = %+v, want the TEST span untouched", res.Kept)
	}
}

func TestFilterInvalidOffsets(t *testing.T) {
	text := "curto"
	entities := []ner.EntitySpan{
		{Span: "x", Start: -1, End: 3, Type: "SYMPTOM"},
		{Span: "y", Start: 2, End: 99, Type: "SYMPTOM"},
		{Span: "z", Start: 3, End: 3, Type: "SYMPTOM"},
	}

	res := Filter(entities, text, DefaultConfig())
	if len(res.Kept) != 0 {
		t.Errorf("kept = %+v, want none", res.Kept)
	}
	if len(res.Removed) != 3 {
		t.Errorf("removed = %d, want 3", len(res.Removed))
	}
}
