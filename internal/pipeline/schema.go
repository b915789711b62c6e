package pipeline

// LinkCandidate is a terminology link proposal for an extracted entity.
// Linking is not populated by the baseline pipeline yet; the field keeps
// the output schema stable for downstream consumers.
type LinkCandidate struct {
	System string  `json:"system"`
	Code   string  `json:"code"`
	Label  string  `json:"label"`
	Score  float64 `json:"score"`
}

// EntityOut is the serialized form of one extracted entity.
type EntityOut struct {
	Span      string                   `json:"span"`
	Start     int                      `json:"start"`
	End       int                      `json:"end"`
	Type      string                   `json:"type"`
	Score     float64                  `json:"score"`
	Assertion string                   `json:"assertion"`
	Evidence  string                   `json:"evidence"`
	Links     []LinkCandidate          `json:"links"`
	ICD10     []map[string]interface{} `json:"icd10"`
}

// DocOut is the serialized result for one processed document.
type DocOut struct {
	DocID    string      `json:"doc_id"`
	Source   string      `json:"source"`
	Text     string      `json:"text"`
	Entities []EntityOut `json:"entities"`
	CaseID   int         `json:"case_id"`
	Group    string      `json:"group"`
}
