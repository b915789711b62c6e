// Package pipeline runs the full clinical note flow: ingest, normalize,
// segment, extract, classify assertions, filter and emit per-document JSON.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is one clinical note ready for processing.
type Document struct {
	DocID      string
	Text       string
	SourcePath string
	CaseID     int
	Group      string
}

type rawCase struct {
	CaseID  *int   `json:"case_id"`
	Group   string `json:"group"`
	RawText string `json:"raw_text"`
	QD      string `json:"qd"`
	HPMA    string `json:"hpma"`
	ISDA    string `json:"isda"`
	AP      string `json:"ap"`
	AF      string `json:"af"`
}

// reconstructText rebuilds note text from the structured record sections
// when raw_text is absent.
func reconstructText(c rawCase) string {
	var parts []string
	sections := []struct {
		label string
		value string
	}{
		{"QD", c.QD},
		{"HPMA", c.HPMA},
		{"ISDA", c.ISDA},
		{"AP", c.AP},
		{"AF", c.AF},
	}
	for _, s := range sections {
		if s.value != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", s.label, s.value))
		}
	}
	return strings.Join(parts, " ")
}

// LoadJSONCases reads a JSON array of cases. Every case must carry a
// case_id and either raw_text or at least one structured section. The
// document id is derived from the file stem and the case id.
func LoadJSONCases(jsonPath string) ([]Document, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("reading cases file: %w", err)
	}

	var cases []rawCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parsing cases file %s: expected JSON array: %w", jsonPath, err)
	}

	stem := strings.TrimSuffix(filepath.Base(jsonPath), filepath.Ext(jsonPath))

	docs := make([]Document, 0, len(cases))
	for i, c := range cases {
		if c.CaseID == nil {
			return nil, fmt.Errorf("case %d: missing case_id", i)
		}
		group := c.Group
		if group == "" {
			group = "unknown"
		}
		text := c.RawText
		if text == "" {
			text = reconstructText(c)
		}
		if text == "" {
			return nil, fmt.Errorf("case %d: no text available (missing raw_text and structured fields)", *c.CaseID)
		}
		docs = append(docs, Document{
			DocID:      fmt.Sprintf("%s_case_%04d", stem, *c.CaseID),
			Text:       text,
			SourcePath: jsonPath,
			CaseID:     *c.CaseID,
			Group:      group,
		})
	}
	return docs, nil
}
