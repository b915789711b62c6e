package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ricardo-wurzmann/healthtech/internal/eval"
)

func main() {
	var (
		predPath  string
		goldPath  string
		outPath   string
		relaxed   bool
		overlap   float64
		noIOU     bool
		matchMode string
		summary   bool
	)

	rootCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate pipeline predictions against gold annotations",
		Long:  `Compares predicted entities against gold annotations and reports NER precision/recall/F1, assertion accuracy, coverage and error examples`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Loading gold annotations from %s...\n", goldPath)
			goldCases, err := eval.LoadGoldCases(goldPath)
			if err != nil {
				log.Fatalf("Failed to load gold annotations: %v", err)
			}
			fmt.Printf("  Loaded %d gold cases\n", len(goldCases))

			fmt.Printf("Loading predictions from %s...\n", predPath)
			predCases, err := eval.LoadPredCases(predPath)
			if err != nil {
				log.Fatalf("Failed to load predictions: %v", err)
			}
			fmt.Printf("  Loaded %d predicted cases\n", len(predCases))

			// Explicit mode wins. Otherwise relaxed runs default to the
			// combined mode, or min_cov when IoU is turned off.
			var mode eval.MatchMode
			if matchMode != "" {
				m, ok := eval.ParseMatchMode(matchMode)
				if !ok {
					log.Fatalf("Invalid match mode %q", matchMode)
				}
				mode = m
			} else if relaxed {
				if noIOU {
					mode = eval.ModeIOUOrMinCov
				} else {
					mode = eval.ModeIOUOrMinCovOrContainment
				}
			}

			fmt.Printf("\nRunning evaluation (relaxed=%v, overlap=%g, match_mode=%s)...\n",
				relaxed, overlap, modeLabel(mode))

			report, err := eval.Evaluate(goldCases, predCases, eval.Options{
				Relaxed:          relaxed,
				OverlapThreshold: overlap,
				UseIOU:           !noIOU,
				Mode:             mode,
			})
			if err != nil {
				log.Fatalf("Evaluation failed: %v", err)
			}

			if err := writeReport(outPath, report); err != nil {
				log.Fatalf("Failed to write report: %v", err)
			}

			fmt.Printf("\nEvaluation complete!\n")
			fmt.Printf("  Overall F1: %.3f\n", report.NER.Overall.F1)
			fmt.Printf("  Precision: %.3f\n", report.NER.Overall.Precision)
			fmt.Printf("  Recall: %.3f\n", report.NER.Overall.Recall)
			fmt.Printf("  Assertion Accuracy: %.3f\n", report.Assertion.Accuracy)
			fmt.Printf("\nReport saved to %s\n", outPath)

			if summary {
				fmt.Println()
				eval.RenderSummary(os.Stdout, report)
			}
		},
	}

	rootCmd.Flags().StringVar(&predPath, "pred", "", "Predictions JSON file (required)")
	rootCmd.Flags().StringVar(&goldPath, "gold", "", "Gold annotations JSONL file (required)")
	rootCmd.Flags().StringVar(&outPath, "out", "data/eval/report.json", "Output report JSON path")
	rootCmd.Flags().BoolVar(&relaxed, "relaxed", false, "Use relaxed overlap-based matching instead of strict")
	rootCmd.Flags().Float64Var(&overlap, "overlap", 0.5, "Overlap threshold for relaxed matching")
	rootCmd.Flags().BoolVar(&noIOU, "no-iou", false, "Use overlap/min_length ratio instead of IoU for relaxed matching")
	rootCmd.Flags().StringVar(&matchMode, "match-mode", "", "Matching mode: iou, iou_or_min_cov, iou_or_containment, iou_or_min_cov_or_containment")
	rootCmd.Flags().BoolVar(&summary, "summary", false, "Print the full human-readable summary after the report")

	if err := rootCmd.MarkFlagRequired("pred"); err != nil {
		log.Fatal(err)
	}
	if err := rootCmd.MarkFlagRequired("gold"); err != nil {
		log.Fatal(err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func modeLabel(m eval.MatchMode) string {
	if m == "" {
		return "None"
	}
	return string(m)
}

func writeReport(path string, report *eval.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
