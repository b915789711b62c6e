// Package lexicon loads flat clinical term lists and builds the normalized
// token index used for candidate generation.
package lexicon

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ricardo-wurzmann/healthtech/internal/normalize"
)

// Canonical entity type labels.
const (
	TypeSymptom   = "SYMPTOM"
	TypeAnatomy   = "ANATOMY"
	TypeProcedure = "PROCEDURE"
	TypeTest      = "TEST"
	TypeDrug      = "DRUG"
	TypeProblem   = "PROBLEM"
	TypeAbbrev    = "ABBREV"
)

// Term is one raw (term, entity type) pair as read from a lexicon file.
type Term struct {
	Text       string
	EntityType string
}

// FileSpec maps a lexicon file to an entity type with a load priority.
// Lower priority numbers load first; on normalized-term collisions the
// earlier entry wins.
type FileSpec struct {
	Filename   string
	EntityType string
	Priority   int
}

// DefaultFiles is the standard PT-BR lexicon layout. Core symptom terms
// outrank the expanded symptom list.
var DefaultFiles = []FileSpec{
	{Filename: "symptoms_core_ptbr.txt", EntityType: TypeSymptom, Priority: 1},
	{Filename: "symptoms_expanded_ptbr.txt", EntityType: TypeSymptom, Priority: 2},
	{Filename: "anatomy_ptbr.txt", EntityType: TypeAnatomy, Priority: 1},
	{Filename: "procedures_ptbr.txt", EntityType: TypeProcedure, Priority: 1},
	{Filename: "tests_exams_ptbr.txt", EntityType: TypeTest, Priority: 1},
	{Filename: "drugs_ptbr.txt", EntityType: TypeDrug, Priority: 1},
}

// LoadFile reads one lexicon file: one term per line, blank lines skipped.
func LoadFile(path string, entityType string) ([]Term, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon file not found: %w", err)
	}
	defer f.Close()

	var terms []Term
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term == "" {
			continue
		}
		terms = append(terms, Term{Text: term, EntityType: entityType})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return terms, nil
}

// LoadAll loads every lexicon file from dir in priority order and removes
// duplicates by normalized form, keeping the first (highest priority)
// occurrence. Missing files degrade the vocabulary with a warning; they do
// not abort the load.
func LoadAll(dir string, files []FileSpec) ([]Term, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("lexicon directory not found: %w", err)
	}
	if files == nil {
		files = DefaultFiles
	}

	sorted := make([]FileSpec, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	var all []Term
	seen := make(map[string]struct{})

	for _, spec := range sorted {
		path := filepath.Join(dir, spec.Filename)
		terms, err := LoadFile(path, spec.EntityType)
		if err != nil {
			log.Printf("Warning: lexicon file not found: %s", path)
			continue
		}

		for _, t := range terms {
			key := normalize.ForMatch(t.Text)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, t)
		}
	}

	return all, nil
}
