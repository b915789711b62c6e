package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ricardo-wurzmann/healthtech/internal/canonical"
	"github.com/ricardo-wurzmann/healthtech/internal/config"
	"github.com/ricardo-wurzmann/healthtech/internal/lexicon"
	"github.com/ricardo-wurzmann/healthtech/internal/ner"
	"github.com/ricardo-wurzmann/healthtech/internal/pipeline"
	"github.com/ricardo-wurzmann/healthtech/internal/postprocess"
	"github.com/ricardo-wurzmann/healthtech/internal/segment"
)

func main() {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Clinical note NER pipeline",
		Long:  `Extracts clinical entities from Portuguese emergency-room notes: segmentation, lexicon and pattern matching, assertion classification and span filtering`,
	}

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createCanonicalCmd())
	rootCmd.AddCommand(createDebugCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// pipelineFlags are shared by every subcommand. Environment variables
// supply the defaults so deployments can omit the flags.
type pipelineFlags struct {
	lexiconDir      string
	vocabDir        string
	segmentTraining string
	minFuzzy        int
	noFuzzy         bool
	workers         int
}

func registerFlags(cmd *cobra.Command, f *pipelineFlags) {
	cmd.Flags().StringVar(&f.lexiconDir, "lexicon-dir", config.GetEnv("LEXICON_DIR", "data/lexicons"), "Directory with lexicon term files")
	cmd.Flags().StringVar(&f.vocabDir, "vocab-dir", config.GetEnv("VOCAB_DIR", "data/vocab"), "Directory with canonical vocabulary CSVs")
	cmd.Flags().StringVar(&f.segmentTraining, "segment-training", config.GetEnv("SEGMENT_TRAINING", ""), "Punkt training data JSON (regex fallback when empty)")
	cmd.Flags().IntVar(&f.minFuzzy, "fuzzy-min", config.GetEnvInt("FUZZY_MIN", ner.DefaultMinFuzzy), "Minimum fuzzy similarity 0-100")
	cmd.Flags().BoolVar(&f.noFuzzy, "no-fuzzy", config.GetEnvBool("NO_FUZZY", false), "Disable the fuzzy fallback layer")
	cmd.Flags().IntVar(&f.workers, "workers", config.GetEnvInt("PIPELINE_WORKERS", 4), "Parallel document workers")
}

func buildBaseline(f *pipelineFlags) (*pipeline.Pipeline, error) {
	terms, err := lexicon.LoadAll(f.lexiconDir, nil)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d lexicon terms from %s", len(terms), f.lexiconDir)

	cfg := ner.Config{MinFuzzy: f.minFuzzy, EnableFuzzy: !f.noFuzzy}
	m := ner.NewMatcher(lexicon.NewIndex(terms), ner.DefaultPatterns, cfg)
	return pipeline.New(segment.Load(f.segmentTraining), m, postprocess.DefaultConfig()), nil
}

func buildCanonical(f *pipelineFlags) (*pipeline.Pipeline, error) {
	vocab, err := canonical.Load(f.vocabDir)
	if err != nil {
		return nil, err
	}
	stats := vocab.Stats()
	log.Printf("Loaded vocabulary: %d concepts, %d entries from %s",
		stats.TotalConcepts, stats.TotalEntries, f.vocabDir)

	return pipeline.NewCanonical(segment.Load(f.segmentTraining), vocab, postprocess.DefaultConfig()), nil
}

func createRunCmd() *cobra.Command {
	var flags pipelineFlags
	var input, outDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a JSON file of cases with the baseline matcher",
		Run: func(cmd *cobra.Command, args []string) {
			p, err := buildBaseline(&flags)
			if err != nil {
				log.Fatalf("Failed to build pipeline: %v", err)
			}
			stats, err := p.RunBatch(input, outDir, flags.workers)
			if err != nil {
				log.Fatalf("Batch run failed: %v", err)
			}
			if stats.Failed > 0 {
				os.Exit(1)
			}
		},
	}

	registerFlags(cmd, &flags)
	cmd.Flags().StringVar(&input, "input", config.GetEnv("PIPELINE_INPUT", "data/raw/pepv1.json"), "Input JSON file with cases")
	cmd.Flags().StringVar(&outDir, "out-dir", config.GetEnv("PIPELINE_OUT_DIR", "data/processed/cases"), "Output directory for per-case JSON files")

	return cmd
}

func createCanonicalCmd() *cobra.Command {
	var flags pipelineFlags
	var input, outDir string

	cmd := &cobra.Command{
		Use:   "canonical",
		Short: "Process a JSON file of cases with the canonical vocabulary",
		Long:  `Extraction backed by the concept vocabulary (CID-10 and TUSS entries) instead of the flat lexicons`,
		Run: func(cmd *cobra.Command, args []string) {
			p, err := buildCanonical(&flags)
			if err != nil {
				log.Fatalf("Failed to build pipeline: %v", err)
			}
			stats, err := p.RunBatch(input, outDir, flags.workers)
			if err != nil {
				log.Fatalf("Batch run failed: %v", err)
			}
			if stats.Failed > 0 {
				os.Exit(1)
			}
		},
	}

	registerFlags(cmd, &flags)
	cmd.Flags().StringVar(&input, "input", config.GetEnv("PIPELINE_INPUT", "data/raw/pepv1.json"), "Input JSON file with cases")
	cmd.Flags().StringVar(&outDir, "out-dir", config.GetEnv("PIPELINE_OUT_DIR", "data/processed/cases"), "Output directory for per-case JSON files")

	return cmd
}

func createDebugCmd() *cobra.Command {
	var flags pipelineFlags
	var useCanonical bool

	cmd := &cobra.Command{
		Use:   "debug [text]",
		Short: "Run one text through every stage and print the trace",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var (
				p   *pipeline.Pipeline
				err error
			)
			if useCanonical {
				p, err = buildCanonical(&flags)
			} else {
				p, err = buildBaseline(&flags)
			}
			if err != nil {
				log.Fatalf("Failed to build pipeline: %v", err)
			}

			result := p.DebugRun(strings.TrimSpace(args[0]))
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			if err := enc.Encode(result); err != nil {
				log.Fatalf("Failed to encode result: %v", err)
			}
		},
	}

	registerFlags(cmd, &flags)
	cmd.Flags().BoolVar(&useCanonical, "canonical", false, "Use the canonical vocabulary instead of the lexicons")

	return cmd
}
