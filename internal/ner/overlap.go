package ner

import "sort"

// OverlapStrategy reduces a candidate span set to the pipeline's final,
// non-overlapping opinion. The canonical vocabulary matcher carries its own
// independent strategy (confidence-first sweep); the two are intentionally
// not unified because they produce different tie-break outcomes.
type OverlapStrategy interface {
	Resolve(spans []EntitySpan) []EntitySpan
}

// LongestSpanResolver prefers longer spans over heavily overlapped shorter
// ones and falls back to score when lengths are comparable.
type LongestSpanResolver struct{}

// Resolve walks candidates in (start asc, length desc, score desc) order.
// Two spans conflict when their overlap exceeds half the shorter span's
// length. On conflict the candidate replaces the accepted span if it is at
// least 1.2x longer; it is rejected if the accepted span is at least 1.2x
// longer; otherwise the higher score wins. The output is sorted by
// (start asc, score desc) and never contains a conflicting pair.
func (LongestSpanResolver) Resolve(spans []EntitySpan) []EntitySpan {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]EntitySpan, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		li, lj := sorted[i].End-sorted[i].Start, sorted[j].End-sorted[j].Start
		if li != lj {
			return li > lj
		}
		return sorted[i].Score > sorted[j].Score
	})

	var resolved []EntitySpan
	for _, span := range sorted {
		conflict := false

		for i, existing := range resolved {
			overlapStart := max(span.Start, existing.Start)
			overlapEnd := min(span.End, existing.End)
			if overlapStart >= overlapEnd {
				continue
			}

			spanLen := span.End - span.Start
			existingLen := existing.End - existing.Start
			overlapLen := overlapEnd - overlapStart

			minLen := min(spanLen, existingLen)
			if float64(overlapLen) <= 0.5*float64(minLen) {
				continue
			}

			switch {
			case float64(spanLen) > float64(existingLen)*1.2:
				// candidate is clearly longer: replace
				resolved = append(resolved[:i], resolved[i+1:]...)
				resolved = append(resolved, span)
			case float64(spanLen) < float64(existingLen)*0.8:
				// accepted span is clearly longer: reject candidate
			case span.Score > existing.Score:
				resolved = append(resolved[:i], resolved[i+1:]...)
				resolved = append(resolved, span)
			default:
				// comparable length, existing score wins
			}
			conflict = true
			break
		}

		if !conflict {
			resolved = append(resolved, span)
		}
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		if resolved[i].Start != resolved[j].Start {
			return resolved[i].Start < resolved[j].Start
		}
		return resolved[i].Score > resolved[j].Score
	})

	return resolved
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
