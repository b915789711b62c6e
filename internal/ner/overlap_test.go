package ner

import "testing"

func span(start, end int, typ string, score float64) EntitySpan {
	return EntitySpan{Start: start, End: end, Type: typ, Score: score}
}

func TestResolveKeepsLightOverlap(t *testing.T) {
	// overlap of 2 runes against a shorter span of 6 is under half
	spans := []EntitySpan{
		span(0, 10, "SYMPTOM", 0.95),
		span(8, 14, "SYMPTOM", 0.95),
	}

	got := LongestSpanResolver{}.Resolve(spans)
	if len(got) != 2 {
		t.Fatalf("got %d spans, want 2: %+v", len(got), got)
	}
}

func TestResolveLongerSpanWins(t *testing.T) {
	// "dor" inside "dor abdominal": heavy overlap, long span kept
	spans := []EntitySpan{
		span(0, 3, "SYMPTOM", 0.99),
		span(0, 13, "SYMPTOM", 0.95),
	}

	got := LongestSpanResolver{}.Resolve(spans)
	if len(got) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(got), got)
	}
	if got[0].End != 13 {
		t.Errorf("kept span (%d,%d), want the longer one", got[0].Start, got[0].End)
	}
}

func TestResolveScoreBreaksComparableLengths(t *testing.T) {
	// lengths within 20% of each other, higher score wins the conflict
	spans := []EntitySpan{
		span(0, 10, "SYMPTOM", 0.95),
		span(0, 9, "PROBLEM", 0.99),
	}

	got := LongestSpanResolver{}.Resolve(spans)
	if len(got) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(got), got)
	}
	if got[0].Score != 0.99 {
		t.Errorf("kept score %v, want 0.99", got[0].Score)
	}
}

func TestResolveOutputOrder(t *testing.T) {
	spans := []EntitySpan{
		span(20, 28, "TEST", 0.97),
		span(0, 5, "SYMPTOM", 0.95),
		span(0, 5, "PROBLEM", 0.99),
	}

	got := LongestSpanResolver{}.Resolve(spans)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.Start < prev.Start {
			t.Fatalf("output not sorted by start: %+v", got)
		}
		if cur.Start == prev.Start && cur.Score > prev.Score {
			t.Fatalf("ties not sorted by score: %+v", got)
		}
	}
}

func TestResolveNoOverlapInvariant(t *testing.T) {
	spans := []EntitySpan{
		span(0, 8, "SYMPTOM", 0.95),
		span(2, 8, "SYMPTOM", 0.99),
		span(6, 14, "PROBLEM", 0.95),
		span(7, 9, "SYMPTOM", 0.99),
	}

	got := LongestSpanResolver{}.Resolve(spans)
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			a, b := got[i], got[j]
			overlap := min(a.End, b.End) - max(a.Start, b.Start)
			if overlap <= 0 {
				continue
			}
			if float64(overlap) > 0.5*float64(min(a.End-a.Start, b.End-b.Start)) {
				t.Fatalf("conflicting pair survived: %+v and %+v", a, b)
			}
		}
	}
}

func TestResolveEmpty(t *testing.T) {
	if got := (LongestSpanResolver{}).Resolve(nil); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}
