package canonical

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File names expected inside a canonical vocabulary directory.
const (
	conceptsFile  = "concepts.csv"
	entriesFile   = "entries.csv"
	blockedFile   = "blocked_terms.csv"
	ambiguityFile = "ambiguity.csv"
)

// Vocabulary holds the loaded canonical tables plus the indexes the
// matcher needs. Build it once with Load; it is read-only afterwards and
// safe to share across workers.
type Vocabulary struct {
	concepts map[string]Concept

	// uppercase entry text -> entries sharing that surface form,
	// entryTexts preserves deterministic iteration order
	entryIndex map[string][]Entry
	entryTexts []string

	blockedTerms   map[string]struct{}
	ambiguousTerms map[string]struct{}

	// normalized drug name -> concept ids, drugNames ordered
	drugIndex map[string][]string
	drugNames []string

	totalConcepts int
	totalEntries  int
}

// Stats summarizes a loaded vocabulary for logging.
type Stats struct {
	TotalConcepts  int
	TotalEntries   int
	IndexedEntries int
	BlockedTerms   int
	AmbiguousTerms int
	DrugNames      int
}

// Load reads the four canonical CSVs from dir and builds the match
// indexes. A missing directory is an error; missing or malformed
// individual files degrade the vocabulary with a logged warning, matching
// the best-effort policy of the lexicon loader. Entries pointing at an
// unknown concept are dropped with a warning.
func Load(dir string) (*Vocabulary, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("canonical vocabulary directory: %w", err)
	}

	v := &Vocabulary{
		concepts:       make(map[string]Concept),
		entryIndex:     make(map[string][]Entry),
		blockedTerms:   make(map[string]struct{}),
		ambiguousTerms: make(map[string]struct{}),
		drugIndex:      make(map[string][]string),
	}

	concepts, err := readCSV(filepath.Join(dir, conceptsFile))
	if err != nil {
		log.Printf("warning: %s: %v", conceptsFile, err)
	}
	for _, row := range concepts {
		c := Concept{
			ConceptID:   row["concept_id"],
			ConceptName: row["concept_name"],
			EntityType:  row["entity_type"],
			Domain:      row["domain"],
			Vocabulary:  row["vocabulary"],
			SourceFile:  row["source_file"],
			Version:     row["version"],
			Language:    row["language"],
			Status:      row["status"],
		}
		if c.ConceptID == "" {
			continue
		}
		v.concepts[c.ConceptID] = c
		v.totalConcepts++
	}

	entries, err := readCSV(filepath.Join(dir, entriesFile))
	if err != nil {
		log.Printf("warning: %s: %v", entriesFile, err)
	}
	orphans := 0
	for _, row := range entries {
		e := Entry{
			EntryText:   row["entry_text"],
			ConceptID:   row["concept_id"],
			EntryType:   row["entry_type"],
			MatchPolicy: row["match_policy"],
			SourceFile:  row["source_file"],
			Language:    row["language"],
		}
		if e.EntryText == "" || e.MatchPolicy == PolicyBlocked {
			continue
		}
		if _, ok := v.concepts[e.ConceptID]; !ok {
			orphans++
			continue
		}
		v.addEntry(e)
		v.totalEntries++
	}
	if orphans > 0 {
		log.Printf("warning: dropped %d entries referencing unknown concepts", orphans)
	}

	blocked, err := readCSV(filepath.Join(dir, blockedFile))
	if err != nil {
		log.Printf("warning: %s: %v", blockedFile, err)
	}
	for _, row := range blocked {
		if term := row["term"]; term != "" {
			v.blockedTerms[strings.ToUpper(term)] = struct{}{}
		}
	}

	ambiguity, err := readCSV(filepath.Join(dir, ambiguityFile))
	if err != nil {
		log.Printf("warning: %s: %v", ambiguityFile, err)
	}
	for _, row := range ambiguity {
		if text := row["entry_text"]; text != "" {
			v.ambiguousTerms[strings.ToUpper(text)] = struct{}{}
		}
	}

	v.buildDrugIndex()

	return v, nil
}

func (v *Vocabulary) addEntry(e Entry) {
	key := strings.ToUpper(e.EntryText)
	if _, seen := v.entryIndex[key]; !seen {
		v.entryTexts = append(v.entryTexts, key)
	}
	v.entryIndex[key] = append(v.entryIndex[key], e)
}

// buildDrugIndex derives the flexible drug index from DRUG concepts. The
// concept name is reduced to its active ingredient; the matcher tolerates
// an optional trailing dosage when scanning for it.
func (v *Vocabulary) buildDrugIndex() {
	ids := make([]string, 0, len(v.concepts))
	for id := range v.concepts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c := v.concepts[id]
		if c.EntityType != "DRUG" {
			continue
		}
		name := NormalizeDrugName(c.ConceptName)
		if name == "" {
			continue
		}
		if _, seen := v.drugIndex[name]; !seen {
			v.drugNames = append(v.drugNames, name)
		}
		v.drugIndex[name] = append(v.drugIndex[name], id)
	}
}

// Concept returns a concept by id.
func (v *Vocabulary) Concept(id string) (Concept, bool) {
	c, ok := v.concepts[id]
	return c, ok
}

// Stats reports what was loaded.
func (v *Vocabulary) Stats() Stats {
	return Stats{
		TotalConcepts:  v.totalConcepts,
		TotalEntries:   v.totalEntries,
		IndexedEntries: len(v.entryIndex),
		BlockedTerms:   len(v.blockedTerms),
		AmbiguousTerms: len(v.ambiguousTerms),
		DrugNames:      len(v.drugNames),
	}
}

// readCSV reads a headed CSV into row maps keyed by column name. Rows
// shorter than the header are padded with empty strings.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
