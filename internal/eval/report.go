package eval

import (
	"fmt"
	"io"
	"sort"
)

const rule = "======================================================================"

// RenderSummary writes a readable evaluation summary to w.
func RenderSummary(w io.Writer, r *Report) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "EVALUATION REPORT")
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nConfiguration:")
	matching := "Strict"
	if r.Config.RelaxedMatching {
		matching = "Relaxed"
	}
	fmt.Fprintf(w, "  Matching: %s\n", matching)
	if r.Config.RelaxedMatching {
		fmt.Fprintf(w, "  Overlap threshold: %g\n", r.Config.OverlapThreshold)
		if r.Config.MatchMode != nil {
			fmt.Fprintf(w, "  Match mode: %s\n", *r.Config.MatchMode)
		}
	}
	fmt.Fprintf(w, "  Total cases evaluated: %d\n", r.Config.TotalCases)

	renderNER(w, r)
	renderAssertion(w, r)
	renderCoverage(w, r)
	renderErrors(w, r)

	fmt.Fprintln(w, "\n"+rule)
}

func renderNER(w io.Writer, r *Report) {
	overall := r.NER.Overall

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "NER EVALUATION SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "\nOverall Metrics:")
	fmt.Fprintf(w, "  Precision: %.3f\n", overall.Precision)
	fmt.Fprintf(w, "  Recall:    %.3f\n", overall.Recall)
	fmt.Fprintf(w, "  F1 Score:  %.3f\n", overall.F1)
	fmt.Fprintln(w, "\nCounts:")
	fmt.Fprintf(w, "  True Positives:  %d\n", overall.TP)
	fmt.Fprintf(w, "  False Positives: %d\n", overall.FP)
	fmt.Fprintf(w, "  False Negatives: %d\n", overall.FN)

	if len(r.NER.PerType) == 0 {
		return
	}

	type typed struct {
		name string
		m    NERMetrics
	}
	rows := make([]typed, 0, len(r.NER.PerType))
	for name, m := range r.NER.PerType {
		rows = append(rows, typed{name, m})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].m.F1 != rows[j].m.F1 {
			return rows[i].m.F1 > rows[j].m.F1
		}
		return rows[i].name < rows[j].name
	})

	fmt.Fprintln(w, "\nPer-Type Metrics:")
	fmt.Fprintf(w, "  %-15s %-12s %-12s %-12s %-6s %-6s %-6s\n",
		"Type", "Precision", "Recall", "F1", "TP", "FP", "FN")
	for _, row := range rows {
		fmt.Fprintf(w, "  %-15s %11.3f %11.3f %11.3f %5d %5d %5d\n",
			row.name, row.m.Precision, row.m.Recall, row.m.F1,
			row.m.TP, row.m.FP, row.m.FN)
	}
}

func renderAssertion(w io.Writer, r *Report) {
	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "ASSERTION CLASSIFICATION SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "\nAccuracy: %.3f\n", r.Assertion.Accuracy)
	fmt.Fprintf(w, "Total Matched Entities: %d\n", r.Assertion.TotalMatched)

	if len(r.Assertion.ConfusionMatrix) == 0 {
		return
	}

	labels := make([]string, 0, len(r.Assertion.ConfusionMatrix))
	for label := range r.Assertion.ConfusionMatrix {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	fmt.Fprintln(w, "\nConfusion Matrix:")
	fmt.Fprintf(w, "  %-15s", "Gold\\Pred")
	for _, label := range labels {
		fmt.Fprintf(w, " %-12s", label)
	}
	fmt.Fprintln(w)
	for _, gold := range labels {
		fmt.Fprintf(w, "  %-15s", gold)
		for _, pred := range labels {
			fmt.Fprintf(w, " %11d ", r.Assertion.ConfusionMatrix[gold][pred])
		}
		fmt.Fprintln(w)
	}
}

func renderCoverage(w io.Writer, r *Report) {
	c := r.Coverage

	fmt.Fprintln(w, "\n"+rule)
	fmt.Fprintln(w, "COVERAGE SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "\nCases:")
	fmt.Fprintf(w, "  Total: %d\n", c.TotalCases)
	fmt.Fprintf(w, "  With entities: %d (%.1f%%)\n", c.CasesWithEntities, c.PctCasesWithEntities)
	fmt.Fprintf(w, "  Without entities: %d\n", c.CasesWithoutEntities)
	fmt.Fprintf(w, "\nAverage entities per case: %.2f\n", c.AvgEntitiesPerCase)

	if len(c.EntityTypeDistribution) > 0 {
		type dist struct {
			name  string
			count int
		}
		rows := make([]dist, 0, len(c.EntityTypeDistribution))
		for name, count := range c.EntityTypeDistribution {
			rows = append(rows, dist{name, count})
		}
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].count != rows[j].count {
				return rows[i].count > rows[j].count
			}
			return rows[i].name < rows[j].name
		})
		fmt.Fprintln(w, "\nEntity Type Distribution:")
		for _, row := range rows {
			fmt.Fprintf(w, "  %-15s %5d\n", row.name, row.count)
		}
	}

	if len(c.TopEntityTexts) > 0 {
		fmt.Fprintln(w, "\nTop Entity Texts (top 10):")
		for i, item := range c.TopEntityTexts {
			if i == 10 {
				break
			}
			fmt.Fprintf(w, "  %-43s %5d\n", clip(item.Text, 40), item.Count)
		}
	}
}

func renderErrors(w io.Writer, r *Report) {
	if len(r.Errors.FalsePositives) > 0 {
		fmt.Fprintln(w, "\n"+rule)
		fmt.Fprintln(w, "FALSE POSITIVES (Top Examples)")
		fmt.Fprintln(w, rule)
		for i, fp := range r.Errors.FalsePositives {
			if i == 5 {
				break
			}
			fmt.Fprintf(w, "\n%d. Case: %s\n", i+1, fp.CaseID)
			fmt.Fprintf(w, "   Text: '%s'\n", fp.Text)
			fmt.Fprintf(w, "   Type: %s\n", fp.Type)
			fmt.Fprintf(w, "   Score: %.3f\n", fp.Score)
			if fp.Evidence != "" {
				fmt.Fprintf(w, "   Evidence: %s\n", clip(fp.Evidence, 100))
			}
		}
	}

	if len(r.Errors.FalseNegatives) > 0 {
		fmt.Fprintln(w, "\n"+rule)
		fmt.Fprintln(w, "FALSE NEGATIVES (Top Examples)")
		fmt.Fprintln(w, rule)
		for i, fn := range r.Errors.FalseNegatives {
			if i == 5 {
				break
			}
			fmt.Fprintf(w, "\n%d. Case: %s\n", i+1, fn.CaseID)
			fmt.Fprintf(w, "   Text: '%s'\n", fn.Text)
			fmt.Fprintf(w, "   Type: %s\n", fn.Type)
			if fn.Context != "" {
				fmt.Fprintf(w, "   Context: %s\n", clip(fn.Context, 100))
			}
		}
	}

	if len(r.Errors.AssertionMismatches) > 0 {
		fmt.Fprintln(w, "\n"+rule)
		fmt.Fprintln(w, "ASSERTION MISMATCHES (Top Examples)")
		fmt.Fprintln(w, rule)
		for i, err := range r.Errors.AssertionMismatches {
			if i == 5 {
				break
			}
			fmt.Fprintf(w, "\n%d. Case: %s\n", i+1, err.CaseID)
			fmt.Fprintf(w, "   Entity: '%s' (%s)\n", err.Text, err.Type)
			fmt.Fprintf(w, "   Gold: %s | Predicted: %s\n", err.GoldAssertion, err.PredAssertion)
			if err.Evidence != "" {
				fmt.Fprintf(w, "   Evidence: %s\n", clip(err.Evidence, 100))
			}
		}
	}
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
