package assertion

import (
	"strings"
	"testing"
)

// classifySpan locates span inside sentence and classifies it, mirroring
// how the pipeline passes sentence-relative offsets.
func classifySpan(t *testing.T, sentence, span, entType string) string {
	t.Helper()
	start := strings.Index(strings.ToLower(sentence), strings.ToLower(span))
	if start == -1 {
		t.Fatalf("span %q not in sentence %q", span, sentence)
	}
	runeStart := len([]rune(sentence[:start]))
	return Classify(sentence, runeStart, runeStart+len([]rune(span)), entType)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		sentence string
		span     string
		entType  string
		want     string
	}{
		// contrastive connective resets the negation scope
		{"sem perda de consciência, porém refere cefaleia intensa", "cefaleia", "SYMPTOM", Present},
		{"sem perda de consciência, porém refere cefaleia intensa", "perda de consciência", "SYMPTOM", Negated},

		{"tórax indolor à palpação; sem crepitações", "crepitações", "SYMPTOM", Negated},
		{"tórax indolor à palpação; sem crepitações", "tórax", "ANATOMY", Present},

		{"nega vômitos", "vômitos", "SYMPTOM", Negated},
		{"não apresenta febre", "febre", "SYMPTOM", Negated},
		{"ausência de dor torácica, nega dispneia", "dispneia", "SYMPTOM", Negated},

		{"suspeita de pneumonia", "pneumonia", "PROBLEM", Possible},
		{"quadro compatível com apendicite aguda", "apendicite", "PROBLEM", Possible},

		{"relata hpp de diabetes mellitus tipo 2", "diabetes", "PROBLEM", Historical},
		{"história de hipertensão arterial", "hipertensão", "PROBLEM", Historical},
		{"antecedentes pessoais de asma na infância", "asma", "PROBLEM", Historical},

		// the colon is a scope breaker, so section headers like "HPP:" do
		// not reach entities to their right
		{"HPP: diabetes mellitus tipo 2", "diabetes", "PROBLEM", Present},

		{"paciente refere cefaleia há 3 dias", "cefaleia", "SYMPTOM", Present},

		// negation beats a possible trigger in the same window
		{"sem suspeita de fratura", "fratura", "PROBLEM", Negated},
	}

	for _, tt := range tests {
		t.Run(tt.span+"/"+tt.want, func(t *testing.T) {
			got := classifySpan(t, tt.sentence, tt.span, tt.entType)
			if got != tt.want {
				t.Errorf("Classify(%q, %q, %s) = %s, want %s",
					tt.sentence, tt.span, tt.entType, got, tt.want)
			}
		})
	}
}

func TestClassifyBreakerCutsHistoricalScope(t *testing.T) {
	// the colon after HPP breaks scope for entities further right only when
	// another breaker intervenes
	got := classifySpan(t, "HPP: diabetes. Hoje com dor abdominal", "dor abdominal", "SYMPTOM")
	if got != Present {
		t.Errorf("got %s, want PRESENT after sentence break", got)
	}
}

func TestClassifyEmptySentence(t *testing.T) {
	if got := Classify("", 0, 0, "SYMPTOM"); got != Present {
		t.Errorf("got %s, want PRESENT", got)
	}
}

func TestClassifyClampsOffsets(t *testing.T) {
	if got := Classify("nega febre", 99, 120, "SYMPTOM"); got != Negated {
		t.Errorf("got %s, want NEGATED for clamped offsets", got)
	}
}
