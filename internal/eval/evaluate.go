package eval

import (
	"errors"
	"log"
)

// Options configures an evaluation run.
type Options struct {
	Relaxed          bool
	OverlapThreshold float64
	UseIOU           bool
	Mode             MatchMode // empty means ModeIOU when relaxed
}

// DefaultOptions is strict matching.
func DefaultOptions() Options {
	return Options{OverlapThreshold: 0.5, UseIOU: true}
}

// ReportConfig echoes the run parameters and load diagnostics.
type ReportConfig struct {
	RelaxedMatching                 bool    `json:"relaxed_matching"`
	OverlapThreshold                float64 `json:"overlap_threshold"`
	UseIOU                          bool    `json:"use_iou"`
	MatchMode                       *string `json:"match_mode"`
	TotalCases                      int     `json:"total_cases"`
	TotalGoldEntitiesLoaded         int     `json:"total_gold_entities_loaded"`
	TotalPredEntitiesLoaded         int     `json:"total_pred_entities_loaded"`
	TotalGoldEntitiesMissingOffsets int     `json:"total_gold_entities_with_missing_offsets"`
	TotalMatchesFound               int     `json:"total_matches_found"`
	MatchedByIOU                    int     `json:"matched_by_iou"`
	MatchedByMinCov                 int     `json:"matched_by_min_cov"`
	MatchedByContainment            int     `json:"matched_by_containment"`
}

// NERSection groups overall and per-type retrieval metrics.
type NERSection struct {
	Overall NERMetrics            `json:"overall"`
	PerType map[string]NERMetrics `json:"per_type"`
}

// Report is the full evaluation artifact, serialized to JSON.
type Report struct {
	Config    ReportConfig     `json:"config"`
	NER       NERSection       `json:"ner"`
	Assertion AssertionMetrics `json:"assertion"`
	Coverage  CoverageMetrics  `json:"coverage"`
	Errors    ErrorExamples    `json:"errors"`
}

// AlignedPair is a gold case and its prediction joined on case id.
type AlignedPair struct {
	Gold GoldCase
	Pred PredCase
}

// AlignCases joins gold and predicted cases by case id, in gold load
// order. Cases present on only one side are logged and skipped.
func AlignCases(goldCases []GoldCase, predCases []PredCase) []AlignedPair {
	predByID := make(map[string]PredCase, len(predCases))
	for _, c := range predCases {
		predByID[c.CaseID] = c
	}
	goldIDs := make(map[string]struct{}, len(goldCases))

	var aligned []AlignedPair
	var missingPred []string
	for _, gold := range goldCases {
		goldIDs[gold.CaseID] = struct{}{}
		if pred, ok := predByID[gold.CaseID]; ok {
			aligned = append(aligned, AlignedPair{Gold: gold, Pred: pred})
		} else {
			missingPred = append(missingPred, gold.CaseID)
		}
	}

	var missingGold []string
	for _, pred := range predCases {
		if _, ok := goldIDs[pred.CaseID]; !ok {
			missingGold = append(missingGold, pred.CaseID)
		}
	}

	if len(missingGold) > 0 {
		log.Printf("warning: %d predicted cases have no gold annotation: %v",
			len(missingGold), truncateIDs(missingGold, 5))
	}
	if len(missingPred) > 0 {
		log.Printf("warning: %d gold cases have no predictions: %v",
			len(missingPred), truncateIDs(missingPred, 5))
	}
	return aligned
}

func truncateIDs(ids []string, n int) []string {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}

// Evaluate aligns cases, matches entities per case and assembles the
// report. Entities without usable offsets never enter matching; gold ones
// are tallied in the config diagnostics, predicted ones silently ignored.
func Evaluate(goldCases []GoldCase, predCases []PredCase, opts Options) (*Report, error) {
	aligned := AlignCases(goldCases, predCases)
	if len(aligned) == 0 {
		return nil, errors.New("no cases could be aligned between gold and predictions")
	}

	mode := opts.Mode
	if opts.Relaxed && mode == "" {
		if opts.UseIOU {
			mode = ModeIOU
		} else {
			mode = ModeIOUOrMinCov
		}
	}

	var allMatched []Match
	var allUnmatchedGold []GoldEntity
	var allUnmatchedPred []PredEntity

	goldLoaded, predLoaded, goldMissingOffsets := 0, 0, 0

	for _, pair := range aligned {
		goldText := pair.Gold.RawText
		predText := pair.Pred.EvaluationText()
		if diff := len(goldText) - len(predText); diff > 10 || diff < -10 {
			log.Printf("warning: text length mismatch for case %s: gold=%d, pred=%d",
				pair.Gold.CaseID, len(goldText), len(predText))
		}

		goldLoaded += len(pair.Gold.Entities)
		predLoaded += len(pair.Pred.Entities)

		var validGold []GoldEntity
		for _, e := range pair.Gold.Entities {
			if e.HasOffsets {
				validGold = append(validGold, e)
			} else {
				goldMissingOffsets++
			}
		}
		var validPred []PredEntity
		for _, e := range pair.Pred.Entities {
			if e.HasOffsets {
				validPred = append(validPred, e)
			}
		}

		matched, unmatchedGold, unmatchedPred := MatchEntities(
			validGold, validPred, opts.Relaxed, opts.OverlapThreshold, mode)

		allMatched = append(allMatched, matched...)
		allUnmatchedGold = append(allUnmatchedGold, unmatchedGold...)
		allUnmatchedPred = append(allUnmatchedPred, unmatchedPred...)
	}

	byIOU, byMinCov, byContainment := 0, 0, 0
	for _, m := range allMatched {
		switch m.Reason {
		case "iou":
			byIOU++
		case "min_cov":
			byMinCov++
		case "containment":
			byContainment++
		}
	}

	var modeValue *string
	if opts.Relaxed {
		s := string(mode)
		modeValue = &s
	}

	report := &Report{
		Config: ReportConfig{
			RelaxedMatching:                 opts.Relaxed,
			OverlapThreshold:                opts.OverlapThreshold,
			UseIOU:                          opts.UseIOU,
			MatchMode:                       modeValue,
			TotalCases:                      len(aligned),
			TotalGoldEntitiesLoaded:         goldLoaded,
			TotalPredEntitiesLoaded:         predLoaded,
			TotalGoldEntitiesMissingOffsets: goldMissingOffsets,
			TotalMatchesFound:               len(allMatched),
			MatchedByIOU:                    byIOU,
			MatchedByMinCov:                 byMinCov,
			MatchedByContainment:            byContainment,
		},
		NER: NERSection{
			Overall: ComputeNERMetrics(allMatched, allUnmatchedGold, allUnmatchedPred),
			PerType: ComputePerTypeMetrics(allMatched, allUnmatchedGold, allUnmatchedPred),
		},
		Assertion: ComputeAssertionMetrics(allMatched),
		Coverage:  ComputeCoverageMetrics(predCases),
		Errors: CollectErrorExamples(allMatched, allUnmatchedGold, allUnmatchedPred,
			goldCases, predCases, 10),
	}
	return report, nil
}
