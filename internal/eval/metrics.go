package eval

import (
	"sort"
	"strings"
)

// assertionLabels is the closed label set for the confusion matrix.
// Anything else collapses to PRESENT.
var assertionLabels = []string{"PRESENT", "NEGATED", "POSSIBLE", "HISTORICAL"}

// NERMetrics is precision/recall/F1 with raw counts.
type NERMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
}

// AssertionMetrics summarizes assertion agreement on matched pairs.
type AssertionMetrics struct {
	Accuracy        float64                   `json:"accuracy"`
	ConfusionMatrix map[string]map[string]int `json:"confusion_matrix"`
	TotalMatched    int                       `json:"total_matched"`
}

// TextCount is one entry of the top entity text ranking.
type TextCount struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// CoverageMetrics describes how much of the corpus produced entities.
type CoverageMetrics struct {
	TotalCases             int            `json:"total_cases"`
	CasesWithEntities      int            `json:"cases_with_entities"`
	CasesWithoutEntities   int            `json:"cases_without_entities"`
	PctCasesWithEntities   float64        `json:"pct_cases_with_entities"`
	AvgEntitiesPerCase     float64        `json:"avg_entities_per_case"`
	EntityTypeDistribution map[string]int `json:"entity_type_distribution"`
	TopEntityTexts         []TextCount    `json:"top_entity_texts"`
}

// ErrorExample is one diagnostic error entry in the report.
type ErrorExample struct {
	CaseID        string  `json:"case_id"`
	Text          string  `json:"text"`
	Type          string  `json:"type"`
	Start         int     `json:"start,omitempty"`
	End           int     `json:"end,omitempty"`
	Score         float64 `json:"score,omitempty"`
	Evidence      string  `json:"evidence,omitempty"`
	Context       string  `json:"context,omitempty"`
	GoldAssertion string  `json:"gold_assertion,omitempty"`
	PredAssertion string  `json:"pred_assertion,omitempty"`
}

// ErrorExamples groups the capped error listings.
type ErrorExamples struct {
	FalsePositives      []ErrorExample `json:"false_positives"`
	FalseNegatives      []ErrorExample `json:"false_negatives"`
	AssertionMismatches []ErrorExample `json:"assertion_mismatches"`
}

func prf(tp, fp, fn int) NERMetrics {
	m := NERMetrics{TP: tp, FP: fp, FN: fn}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// ComputeNERMetrics computes overall precision/recall/F1 from the
// matching outcome.
func ComputeNERMetrics(matched []Match, unmatchedGold []GoldEntity, unmatchedPred []PredEntity) NERMetrics {
	return prf(len(matched), len(unmatchedPred), len(unmatchedGold))
}

// ComputePerTypeMetrics breaks the NER metrics down by entity type.
func ComputePerTypeMetrics(matched []Match, unmatchedGold []GoldEntity, unmatchedPred []PredEntity) map[string]NERMetrics {
	tp := map[string]int{}
	fp := map[string]int{}
	fn := map[string]int{}

	for _, m := range matched {
		tp[m.Gold.Type]++
	}
	for _, p := range unmatchedPred {
		fp[p.Type]++
	}
	for _, g := range unmatchedGold {
		fn[g.Type]++
	}

	types := map[string]struct{}{}
	for t := range tp {
		types[t] = struct{}{}
	}
	for t := range fp {
		types[t] = struct{}{}
	}
	for t := range fn {
		types[t] = struct{}{}
	}

	out := make(map[string]NERMetrics, len(types))
	for t := range types {
		out[t] = prf(tp[t], fp[t], fn[t])
	}
	return out
}

func canonicalAssertion(a string) string {
	a = strings.ToUpper(strings.TrimSpace(a))
	if a == "" {
		return "PRESENT"
	}
	for _, label := range assertionLabels {
		if a == label {
			return a
		}
	}
	return "PRESENT"
}

// ComputeAssertionMetrics scores assertion agreement over matched pairs
// and fills the full 4x4 confusion matrix.
func ComputeAssertionMetrics(matched []Match) AssertionMetrics {
	cm := make(map[string]map[string]int, len(assertionLabels))
	for _, gold := range assertionLabels {
		row := make(map[string]int, len(assertionLabels))
		for _, pred := range assertionLabels {
			row[pred] = 0
		}
		cm[gold] = row
	}

	correct, total := 0, 0
	for _, m := range matched {
		gold := canonicalAssertion(m.Gold.Assertion)
		pred := canonicalAssertion(m.Pred.Assertion)
		cm[gold][pred]++
		if gold == pred {
			correct++
		}
		total++
	}

	metrics := AssertionMetrics{ConfusionMatrix: cm, TotalMatched: total}
	if total > 0 {
		metrics.Accuracy = float64(correct) / float64(total)
	}
	return metrics
}

// ComputeCoverageMetrics summarizes prediction density over all cases,
// including the 20 most frequent entity surface forms.
func ComputeCoverageMetrics(predCases []PredCase) CoverageMetrics {
	m := CoverageMetrics{
		TotalCases:             len(predCases),
		EntityTypeDistribution: map[string]int{},
	}

	totalEntities := 0
	textCounts := map[string]int{}
	for _, c := range predCases {
		if len(c.Entities) > 0 {
			m.CasesWithEntities++
		}
		totalEntities += len(c.Entities)
		for _, e := range c.Entities {
			m.EntityTypeDistribution[e.Type]++
			textCounts[strings.TrimSpace(e.Span)]++
		}
	}
	m.CasesWithoutEntities = m.TotalCases - m.CasesWithEntities
	if m.TotalCases > 0 {
		m.PctCasesWithEntities = float64(m.CasesWithEntities) / float64(m.TotalCases) * 100
		m.AvgEntitiesPerCase = float64(totalEntities) / float64(m.TotalCases)
	}

	ranked := make([]TextCount, 0, len(textCounts))
	for text, count := range textCounts {
		ranked = append(ranked, TextCount{Text: text, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Text < ranked[j].Text
	})
	if len(ranked) > 20 {
		ranked = ranked[:20]
	}
	m.TopEntityTexts = ranked
	return m
}

type entityKey struct {
	start, end int
	entityType string
}

// CollectErrorExamples gathers up to maxExamples diagnostic samples per
// error class, with surrounding text context where the case is known.
func CollectErrorExamples(matched []Match, unmatchedGold []GoldEntity, unmatchedPred []PredEntity,
	goldCases []GoldCase, predCases []PredCase, maxExamples int) ErrorExamples {

	goldCaseByID := make(map[string]GoldCase, len(goldCases))
	for _, c := range goldCases {
		goldCaseByID[c.CaseID] = c
	}
	predCaseByID := make(map[string]PredCase, len(predCases))
	for _, c := range predCases {
		predCaseByID[c.CaseID] = c
	}

	predEntityCase := map[entityKey]string{}
	for _, c := range predCases {
		for _, e := range c.Entities {
			predEntityCase[entityKey{e.Start, e.End, e.Type}] = c.CaseID
		}
	}
	goldEntityCase := map[entityKey]string{}
	for _, c := range goldCases {
		for _, e := range c.Entities {
			goldEntityCase[entityKey{e.Start, e.End, e.Type}] = c.CaseID
		}
	}

	out := ErrorExamples{
		FalsePositives:      []ErrorExample{},
		FalseNegatives:      []ErrorExample{},
		AssertionMismatches: []ErrorExample{},
	}

	for _, pred := range unmatchedPred {
		if len(out.FalsePositives) >= maxExamples {
			break
		}
		caseID, ok := predEntityCase[entityKey{pred.Start, pred.End, pred.Type}]
		if !ok {
			continue
		}
		evidence := pred.Evidence
		if evidence == "" {
			evidence = contextAround(predCaseByID[caseID].EvaluationText(), pred.Start, pred.End, 50)
		}
		out.FalsePositives = append(out.FalsePositives, ErrorExample{
			CaseID:   caseID,
			Text:     pred.Span,
			Type:     pred.Type,
			Start:    pred.Start,
			End:      pred.End,
			Score:    pred.Score,
			Evidence: evidence,
		})
	}

	for _, gold := range unmatchedGold {
		if len(out.FalseNegatives) >= maxExamples {
			break
		}
		caseID, ok := goldEntityCase[entityKey{gold.Start, gold.End, gold.Type}]
		if !ok {
			continue
		}
		out.FalseNegatives = append(out.FalseNegatives, ErrorExample{
			CaseID:  caseID,
			Text:    gold.Text,
			Type:    gold.Type,
			Start:   gold.Start,
			End:     gold.End,
			Context: contextAround(goldCaseByID[caseID].RawText, gold.Start, gold.End, 50),
		})
	}

	for _, m := range matched {
		if len(out.AssertionMismatches) >= maxExamples {
			break
		}
		goldAssertion := m.Gold.Assertion
		if goldAssertion == "" {
			goldAssertion = "PRESENT"
		}
		predAssertion := m.Pred.Assertion
		if predAssertion == "" {
			predAssertion = "PRESENT"
		}
		if strings.EqualFold(goldAssertion, predAssertion) {
			continue
		}

		caseID, ok := predEntityCase[entityKey{m.Pred.Start, m.Pred.End, m.Pred.Type}]
		if !ok {
			caseID, ok = goldEntityCase[entityKey{m.Gold.Start, m.Gold.End, m.Gold.Type}]
			if !ok {
				caseID = "unknown"
			}
		}
		out.AssertionMismatches = append(out.AssertionMismatches, ErrorExample{
			CaseID:        caseID,
			Text:          m.Gold.Text,
			Type:          m.Gold.Type,
			GoldAssertion: goldAssertion,
			PredAssertion: predAssertion,
			Evidence:      m.Pred.Evidence,
		})
	}

	return out
}

// contextAround extracts a window of rune context around a span, falling
// back to the start of the text when offsets make no sense.
func contextAround(text string, start, end, window int) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)

	head := func() string {
		n := len(runes)
		if n > 120 {
			n = 120
		}
		return string(runes[:n])
	}

	ctxStart := start - window
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := end + window
	if ctxEnd > len(runes) {
		ctxEnd = len(runes)
	}
	if ctxStart >= ctxEnd {
		return head()
	}
	return string(runes[ctxStart:ctxEnd])
}
