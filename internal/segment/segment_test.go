package segment

import "testing"

func TestRegexSegmenterOffsets(t *testing.T) {
	text := "Paciente com febre. Nega vômitos.\nAlta hoje"
	sents := NewRegexSegmenter().Split(text)

	if len(sents) != 3 {
		t.Fatalf("got %d sentences, want 3: %v", len(sents), sents)
	}

	runes := []rune(text)
	for _, s := range sents {
		if s.Start < 0 || s.End > len(runes) || s.Start >= s.End {
			t.Fatalf("sentence %q has invalid offsets [%d,%d)", s.Text, s.Start, s.End)
		}
		if got := string(runes[s.Start:s.End]); got != s.Text {
			t.Errorf("offsets do not round-trip: text[%d:%d] = %q, want %q", s.Start, s.End, got, s.Text)
		}
	}

	if sents[0].Text != "Paciente com febre." {
		t.Errorf("first sentence = %q", sents[0].Text)
	}
	if sents[2].Text != "Alta hoje" {
		t.Errorf("trailing sentence without punctuation = %q", sents[2].Text)
	}
}

func TestRegexSegmenterEmpty(t *testing.T) {
	if got := NewRegexSegmenter().Split(""); len(got) != 0 {
		t.Errorf("Split(\"\") = %v, want none", got)
	}
	if got := NewRegexSegmenter().Split("   \n  "); len(got) != 0 {
		t.Errorf("Split(whitespace) = %v, want none", got)
	}
}

func TestLoadFallsBack(t *testing.T) {
	seg := Load("/nonexistent/training.json")
	if _, ok := seg.(*RegexSegmenter); !ok {
		t.Errorf("Load without training data = %T, want *RegexSegmenter", seg)
	}
}
