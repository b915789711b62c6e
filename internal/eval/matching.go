package eval

// MatchMode selects which overlap criteria relaxed matching accepts.
type MatchMode string

const (
	ModeIOU                      MatchMode = "iou"
	ModeIOUOrMinCov              MatchMode = "iou_or_min_cov"
	ModeIOUOrContainment         MatchMode = "iou_or_containment"
	ModeIOUOrMinCovOrContainment MatchMode = "iou_or_min_cov_or_containment"
)

// ParseMatchMode validates a mode string.
func ParseMatchMode(s string) (MatchMode, bool) {
	switch MatchMode(s) {
	case ModeIOU, ModeIOUOrMinCov, ModeIOUOrContainment, ModeIOUOrMinCovOrContainment:
		return MatchMode(s), true
	}
	return "", false
}

// Match pairs a gold entity with the prediction it matched.
type Match struct {
	Gold      GoldEntity
	Pred      PredEntity
	MatchType string // "strict" or "relaxed"
	Reason    string // "iou", "min_cov", "containment", or "" for strict
}

// SpanMetrics carries every overlap statistic the matcher needs.
type SpanMetrics struct {
	IOU          float64
	MinCov       float64
	Intersection int
	Containment  bool
}

// ComputeSpanMetrics measures overlap between two half-open spans.
// Containment requires a non-empty intersection.
func ComputeSpanMetrics(start1, end1, start2, end2 int) SpanMetrics {
	interStart := max(start1, start2)
	interEnd := min(end1, end2)
	intersection := interEnd - interStart
	if intersection < 0 {
		intersection = 0
	}

	len1 := end1 - start1
	len2 := end2 - start2

	var m SpanMetrics
	m.Intersection = intersection

	if union := len1 + len2 - intersection; union > 0 {
		m.IOU = float64(intersection) / float64(union)
	}
	if minLen := min(len1, len2); minLen > 0 {
		m.MinCov = float64(intersection) / float64(minLen)
	}
	if intersection > 0 {
		if (start1 >= start2 && end1 <= end2) || (start2 >= start1 && end2 <= end1) {
			m.Containment = true
		}
	}
	return m
}

// StrictMatch requires identical offsets and type.
func StrictMatch(gold GoldEntity, pred PredEntity) bool {
	return gold.Start == pred.Start && gold.End == pred.End && gold.Type == pred.Type
}

// RelaxedMatch tests a gold/pred pair under the given mode and threshold,
// returning the criterion that fired.
func RelaxedMatch(gold GoldEntity, pred PredEntity, threshold float64, mode MatchMode) (bool, string) {
	if gold.Type != pred.Type {
		return false, ""
	}

	m := ComputeSpanMetrics(pred.Start, pred.End, gold.Start, gold.End)

	if m.IOU >= threshold {
		return true, "iou"
	}
	switch mode {
	case ModeIOUOrMinCov:
		if m.MinCov >= threshold {
			return true, "min_cov"
		}
	case ModeIOUOrContainment:
		if m.Containment {
			return true, "containment"
		}
	case ModeIOUOrMinCovOrContainment:
		if m.MinCov >= threshold {
			return true, "min_cov"
		}
		if m.Containment {
			return true, "containment"
		}
	}
	return false, ""
}

// matchScore is the tie-break tuple for competing predictions. Higher
// primary score wins, then larger intersection, then smaller start
// distance.
type matchScore struct {
	primary      float64
	intersection int
	startDist    int
}

func scoreFor(gold GoldEntity, pred PredEntity) matchScore {
	m := ComputeSpanMetrics(pred.Start, pred.End, gold.Start, gold.End)
	primary := m.IOU
	if m.MinCov > primary {
		primary = m.MinCov
	}
	dist := pred.Start - gold.Start
	if dist < 0 {
		dist = -dist
	}
	return matchScore{primary: primary, intersection: m.Intersection, startDist: dist}
}

func (s matchScore) betterThan(o matchScore) bool {
	if s.primary != o.primary {
		return s.primary > o.primary
	}
	if s.intersection != o.intersection {
		return s.intersection > o.intersection
	}
	return s.startDist < o.startDist
}

// MatchEntities pairs gold and predicted entities one-to-one, greedily in
// gold order. The greediness is deliberate: iteration order determines the
// outcome, matching the evaluation contract rather than a globally optimal
// assignment. Returns matched pairs plus the unmatched leftovers (false
// negatives and false positives respectively).
func MatchEntities(golds []GoldEntity, preds []PredEntity, relaxed bool, threshold float64, mode MatchMode) ([]Match, []GoldEntity, []PredEntity) {
	if mode == "" {
		mode = ModeIOU
	}

	taken := make([]bool, len(preds))
	var matched []Match
	var unmatchedGold []GoldEntity

	for _, gold := range golds {
		bestIdx := -1
		bestReason := ""
		var bestScore matchScore

		for idx, pred := range preds {
			if taken[idx] {
				continue
			}
			if relaxed {
				ok, reason := RelaxedMatch(gold, pred, threshold, mode)
				if !ok {
					continue
				}
				score := scoreFor(gold, pred)
				if bestIdx == -1 || score.betterThan(bestScore) {
					bestIdx = idx
					bestReason = reason
					bestScore = score
				}
			} else if StrictMatch(gold, pred) {
				bestIdx = idx
				break
			}
		}

		if bestIdx == -1 {
			unmatchedGold = append(unmatchedGold, gold)
			continue
		}

		taken[bestIdx] = true
		matchType := "strict"
		if relaxed {
			matchType = "relaxed"
		}
		matched = append(matched, Match{
			Gold:      gold,
			Pred:      preds[bestIdx],
			MatchType: matchType,
			Reason:    bestReason,
		})
	}

	var unmatchedPred []PredEntity
	for idx, pred := range preds {
		if !taken[idx] {
			unmatchedPred = append(unmatchedPred, pred)
		}
	}
	return matched, unmatchedGold, unmatchedPred
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
