// Package eval aligns predicted entities with gold annotations and
// computes NER, assertion and coverage metrics.
package eval

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// labelMap folds annotation label variants into the canonical type set.
var labelMap = map[string]string{
	"DIAGNOSIS":   "PROBLEM",
	"DISEASE":     "PROBLEM",
	"CONDITION":   "PROBLEM",
	"SIGN":        "SYMPTOM",
	"SYMPTOM":     "SYMPTOM",
	"TEST":        "TEST",
	"EXAM":        "TEST",
	"EXAMINATION": "TEST",
	"DRUG":        "DRUG",
	"MEDICATION":  "DRUG",
	"MEDICINE":    "DRUG",
	"PROCEDURE":   "PROCEDURE",
	"ANATOMY":     "ANATOMY",
	"BODY_PART":   "ANATOMY",
}

// NormalizeLabel maps a label variant to its canonical uppercase form.
// Unknown labels pass through uppercased.
func NormalizeLabel(label string) string {
	if label == "" {
		return ""
	}
	upper := strings.ToUpper(strings.TrimSpace(label))
	if canonical, ok := labelMap[upper]; ok {
		return canonical
	}
	return upper
}

// GoldEntity is one gold annotation. HasOffsets is false when the
// annotation carries no usable start/end; such entities are excluded from
// matching and tallied separately.
type GoldEntity struct {
	Start      int
	End        int
	HasOffsets bool
	Text       string
	Type       string
	Assertion  string
	Notes      string
}

// PredEntity is one predicted entity from a pipeline output file.
type PredEntity struct {
	Start      int
	End        int
	HasOffsets bool
	Span       string
	Type       string
	Score      float64
	Assertion  string
	Evidence   string
}

// GoldCase is one annotated document.
type GoldCase struct {
	CaseID   string
	Group    string
	RawText  string
	Entities []GoldEntity
}

// PredCase is one predicted document.
type PredCase struct {
	CaseID   string
	DocID    string
	Text     string
	RawText  string
	Group    string
	Entities []PredEntity
}

// EvaluationText returns the text whose offsets the predictions refer to.
func (c PredCase) EvaluationText() string {
	if c.Text != "" {
		return c.Text
	}
	return c.RawText
}

// flexID accepts string or numeric case identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		trimmed = ""
	}
	*f = flexID(trimmed)
	return nil
}

// raw decode shapes; offsets use pointers so missing/null survive decoding.

type rawGoldEntity struct {
	Start     *int   `json:"start"`
	End       *int   `json:"end"`
	Text      string `json:"text"`
	Type      string `json:"type"`
	Assertion string `json:"assertion"`
	Notes     string `json:"notes"`
}

type rawGoldCase struct {
	CaseID       flexID          `json:"case_id"`
	Group        string          `json:"group"`
	RawText      string          `json:"raw_text"`
	GoldEntities []rawGoldEntity `json:"gold_entities"`
}

type rawPredEntity struct {
	Start     *int    `json:"start"`
	End       *int    `json:"end"`
	Span      string  `json:"span"`
	Text      string  `json:"text"`
	Type      string  `json:"type"`
	Score     float64 `json:"score"`
	Assertion string  `json:"assertion"`
	Evidence  string  `json:"evidence"`
}

type rawPredCase struct {
	CaseID         flexID          `json:"case_id"`
	DocID          string          `json:"doc_id"`
	Text           string          `json:"text"`
	RawText        string          `json:"raw_text"`
	NormalizedText string          `json:"normalized_text"`
	Group          string          `json:"group"`
	Entities       []rawPredEntity `json:"entities"`
}

func (r rawGoldEntity) toEntity() GoldEntity {
	e := GoldEntity{
		Text:      r.Text,
		Type:      NormalizeLabel(r.Type),
		Assertion: strings.ToUpper(strings.TrimSpace(r.Assertion)),
		Notes:     r.Notes,
	}
	if r.Start != nil && r.End != nil {
		e.Start, e.End, e.HasOffsets = *r.Start, *r.End, true
	}
	return e
}

func (r rawPredEntity) toEntity() PredEntity {
	span := r.Span
	if span == "" {
		span = r.Text
	}
	e := PredEntity{
		Span:      span,
		Type:      NormalizeLabel(r.Type),
		Score:     r.Score,
		Assertion: strings.ToUpper(strings.TrimSpace(r.Assertion)),
		Evidence:  r.Evidence,
	}
	if r.Start != nil && r.End != nil {
		e.Start, e.End, e.HasOffsets = *r.Start, *r.End, true
	}
	return e
}

func (r rawGoldCase) toCase() GoldCase {
	c := GoldCase{
		CaseID:  string(r.CaseID),
		Group:   r.Group,
		RawText: r.RawText,
	}
	for _, e := range r.GoldEntities {
		c.Entities = append(c.Entities, e.toEntity())
	}
	return c
}

func (r rawPredCase) toCase() PredCase {
	text := r.Text
	if text == "" {
		text = r.RawText
	}
	if text == "" {
		text = r.NormalizedText
	}
	rawText := r.RawText
	if rawText == "" {
		rawText = text
	}
	caseID := string(r.CaseID)
	if caseID == "" {
		caseID = r.DocID
	}
	c := PredCase{
		CaseID:  caseID,
		DocID:   r.DocID,
		Text:    text,
		RawText: rawText,
		Group:   r.Group,
	}
	for _, e := range r.Entities {
		c.Entities = append(c.Entities, e.toEntity())
	}
	return c
}

// LoadGoldCases reads gold annotations from a JSONL file, one case per
// line. Blank lines are skipped.
func LoadGoldCases(path string) ([]GoldCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cases []GoldCase
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var raw rawGoldCase
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, fmt.Errorf("gold line %d: %w", lineNo, err)
		}
		cases = append(cases, raw.toCase())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cases, nil
}

// LoadPredCases reads predictions from a JSON file holding either an
// array of cases, a single case object, or a map of case_id to case.
func LoadPredCases(path string) ([]PredCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []rawPredCase
	if err := json.Unmarshal(data, &list); err == nil {
		cases := make([]PredCase, 0, len(list))
		for _, raw := range list {
			cases = append(cases, raw.toCase())
		}
		return cases, nil
	}

	var single rawPredCase
	if err := json.Unmarshal(data, &single); err == nil &&
		(string(single.CaseID) != "" || single.DocID != "") {
		return []PredCase{single.toCase()}, nil
	}

	var byID map[string]rawPredCase
	if err := json.Unmarshal(data, &byID); err == nil {
		cases := make([]PredCase, 0, len(byID))
		for _, raw := range byID {
			cases = append(cases, raw.toCase())
		}
		return cases, nil
	}

	return nil, fmt.Errorf("unexpected predictions format in %s", path)
}
