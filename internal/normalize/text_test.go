package normalize

import (
	"reflect"
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"vômito", "vomito"},
		{"cefaleia", "cefaleia"},
		{"disúria", "disuria"},
		{"pressão", "pressao"},
		{"çÇ", "cC"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestForMatch(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and fold", "Dor Epigástrica", "dor epigastrica"},
		{"strip punctuation keep hyphen", "pós-operatório, imediato.", "pos-operatorio imediato"},
		{"collapse whitespace", "febre   \t alta", "febre alta"},
		{"trim", "  cefaleia  ", "cefaleia"},
	}

	for _, tt := range tests {
		if got := ForMatch(tt.in); got != tt.want {
			t.Errorf("%s: ForMatch(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("dor  abdominal difusa")
	want := []string{"dor", "abdominal", "difusa"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestClinicalText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"newline unification", "linha1\r\nlinha2\rlinha3", "linha1\nlinha2\nlinha3"},
		{"blood pressure spacing", "PA 120x70 estável", "PA 120 x 70 estável"},
		{"blood pressure slash", "PA 130/85", "PA 130 x 85"},
		{"punctuation spacing", "febre ,vômitos", "febre, vômitos"},
		{"space before period", "sem queixas .", "sem queixas."},
		{"newline squeeze", "a\n\n\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		if got := ClinicalText(tt.in); got != tt.want {
			t.Errorf("%s: ClinicalText(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}
