package eval

import (
	"math"
	"testing"
)

func gold(start, end int, typ string) GoldEntity {
	return GoldEntity{Start: start, End: end, HasOffsets: true, Type: typ}
}

func pred(start, end int, typ string) PredEntity {
	return PredEntity{Start: start, End: end, HasOffsets: true, Type: typ}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"DIAGNOSIS", "PROBLEM"},
		{"disease", "PROBLEM"},
		{" sign ", "SYMPTOM"},
		{"EXAM", "TEST"},
		{"medication", "DRUG"},
		{"BODY_PART", "ANATOMY"},
		{"PROBLEM", "PROBLEM"},
		{"WEIRD_LABEL", "WEIRD_LABEL"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLabel(tt.in); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComputeSpanMetrics(t *testing.T) {
	// spans [0,10) and [5,15): intersection 5, union 15
	m := ComputeSpanMetrics(0, 10, 5, 15)
	if math.Abs(m.IOU-5.0/15.0) > 1e-9 {
		t.Errorf("IOU = %v", m.IOU)
	}
	if math.Abs(m.MinCov-0.5) > 1e-9 {
		t.Errorf("MinCov = %v", m.MinCov)
	}
	if m.Intersection != 5 || m.Containment {
		t.Errorf("intersection/containment = %d/%v", m.Intersection, m.Containment)
	}

	// nested spans are containment
	m = ComputeSpanMetrics(2, 6, 0, 10)
	if !m.Containment {
		t.Error("nested span not flagged as containment")
	}

	// disjoint spans never count as containment
	m = ComputeSpanMetrics(0, 5, 5, 10)
	if m.Intersection != 0 || m.Containment || m.IOU != 0 {
		t.Errorf("disjoint spans = %+v", m)
	}
}

func TestStrictMatch(t *testing.T) {
	g := gold(3, 9, "SYMPTOM")
	if !StrictMatch(g, pred(3, 9, "SYMPTOM")) {
		t.Error("identical spans should match")
	}
	if StrictMatch(g, pred(3, 10, "SYMPTOM")) {
		t.Error("different end should not match")
	}
	if StrictMatch(g, pred(3, 9, "PROBLEM")) {
		t.Error("different type should not match")
	}
}

func TestRelaxedMatchModes(t *testing.T) {
	// pred nested inside gold: iou 0.4, min_cov 1.0, containment true
	g := gold(0, 10, "PROBLEM")
	p := pred(2, 6, "PROBLEM")

	tests := []struct {
		mode       MatchMode
		wantMatch  bool
		wantReason string
	}{
		{ModeIOU, false, ""},
		{ModeIOUOrMinCov, true, "min_cov"},
		{ModeIOUOrContainment, true, "containment"},
		{ModeIOUOrMinCovOrContainment, true, "min_cov"},
	}
	for _, tt := range tests {
		ok, reason := RelaxedMatch(g, p, 0.5, tt.mode)
		if ok != tt.wantMatch || reason != tt.wantReason {
			t.Errorf("mode %s: got (%v,%q), want (%v,%q)",
				tt.mode, ok, reason, tt.wantMatch, tt.wantReason)
		}
	}

	// high overlap reports iou in every mode
	for _, mode := range []MatchMode{ModeIOU, ModeIOUOrMinCov, ModeIOUOrContainment, ModeIOUOrMinCovOrContainment} {
		ok, reason := RelaxedMatch(gold(0, 10, "PROBLEM"), pred(0, 9, "PROBLEM"), 0.5, mode)
		if !ok || reason != "iou" {
			t.Errorf("mode %s: got (%v,%q), want (true,iou)", mode, ok, reason)
		}
	}

	// type mismatch is never a match
	if ok, _ := RelaxedMatch(gold(0, 10, "PROBLEM"), pred(0, 10, "SYMPTOM"), 0.5, ModeIOU); ok {
		t.Error("type mismatch matched")
	}
}

func TestMatchEntitiesTieBreak(t *testing.T) {
	g := []GoldEntity{gold(0, 10, "SYMPTOM")}
	p := []PredEntity{
		pred(0, 5, "SYMPTOM"),  // iou 0.5
		pred(0, 10, "SYMPTOM"), // iou 1.0, wins
	}

	matched, _, unmatchedPred := MatchEntities(g, p, true, 0.5, ModeIOU)
	if len(matched) != 1 {
		t.Fatalf("matched = %d, want 1", len(matched))
	}
	if matched[0].Pred.End != 10 {
		t.Errorf("picked pred ending at %d, want the exact span", matched[0].Pred.End)
	}
	if len(unmatchedPred) != 1 || unmatchedPred[0].End != 5 {
		t.Errorf("unmatched pred = %+v", unmatchedPred)
	}
}

func TestMatchEntitiesOneToOne(t *testing.T) {
	// two gold entities competing for a single prediction
	g := []GoldEntity{gold(0, 10, "SYMPTOM"), gold(0, 10, "SYMPTOM")}
	p := []PredEntity{pred(0, 10, "SYMPTOM")}

	matched, unmatchedGold, _ := MatchEntities(g, p, false, 0.5, "")
	if len(matched) != 1 || len(unmatchedGold) != 1 {
		t.Errorf("matched=%d unmatchedGold=%d, want 1/1", len(matched), len(unmatchedGold))
	}
}

func TestStrictEquivalentToRelaxedIOUOne(t *testing.T) {
	g := []GoldEntity{gold(0, 5, "SYMPTOM"), gold(8, 14, "PROBLEM"), gold(20, 26, "DRUG")}
	p := []PredEntity{pred(0, 5, "SYMPTOM"), pred(8, 14, "PROBLEM"), pred(21, 26, "DRUG")}

	strictMatched, _, _ := MatchEntities(g, p, false, 0.5, "")
	relaxedMatched, _, _ := MatchEntities(g, p, true, 1.0, ModeIOU)

	if len(strictMatched) != len(relaxedMatched) {
		t.Errorf("strict matched %d, relaxed-at-1.0 matched %d",
			len(strictMatched), len(relaxedMatched))
	}
	// the shifted DRUG span matches in neither
	if len(strictMatched) != 2 {
		t.Errorf("strict matched %d, want 2", len(strictMatched))
	}
}

func TestComputeNERMetrics(t *testing.T) {
	matched := make([]Match, 3)
	fps := make([]PredEntity, 1)
	fns := make([]GoldEntity, 2)

	m := ComputeNERMetrics(matched, fns, fps)
	if m.TP != 3 || m.FP != 1 || m.FN != 2 {
		t.Fatalf("counts = %d/%d/%d", m.TP, m.FP, m.FN)
	}
	if math.Abs(m.Precision-0.75) > 1e-9 {
		t.Errorf("precision = %v, want 0.75", m.Precision)
	}
	if math.Abs(m.Recall-0.6) > 1e-9 {
		t.Errorf("recall = %v, want 0.6", m.Recall)
	}
	if math.Abs(m.F1-2.0/3.0) > 1e-9 {
		t.Errorf("f1 = %v, want 0.667", m.F1)
	}
}

func TestComputeAssertionMetrics(t *testing.T) {
	matched := []Match{
		{Gold: GoldEntity{Assertion: "NEGATED"}, Pred: PredEntity{Assertion: "NEGATED"}},
		{Gold: GoldEntity{Assertion: "NEGATED"}, Pred: PredEntity{Assertion: "PRESENT"}},
		{Gold: GoldEntity{}, Pred: PredEntity{}},                   // both default PRESENT
		{Gold: GoldEntity{Assertion: "BOGUS"}, Pred: PredEntity{}}, // unknown folds to PRESENT
	}

	m := ComputeAssertionMetrics(matched)
	if m.TotalMatched != 4 {
		t.Fatalf("total = %d, want 4", m.TotalMatched)
	}
	if math.Abs(m.Accuracy-0.75) > 1e-9 {
		t.Errorf("accuracy = %v, want 0.75", m.Accuracy)
	}
	if m.ConfusionMatrix["NEGATED"]["PRESENT"] != 1 {
		t.Errorf("confusion NEGATED->PRESENT = %d, want 1", m.ConfusionMatrix["NEGATED"]["PRESENT"])
	}
	if m.ConfusionMatrix["PRESENT"]["PRESENT"] != 2 {
		t.Errorf("confusion PRESENT->PRESENT = %d, want 2", m.ConfusionMatrix["PRESENT"]["PRESENT"])
	}
	// the full 4x4 matrix exists even for unseen labels
	if _, ok := m.ConfusionMatrix["HISTORICAL"]; !ok {
		t.Error("missing HISTORICAL row")
	}
}
