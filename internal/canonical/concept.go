// Package canonical implements retrieval over the curated canonical
// vocabulary (codes, official names, abbreviations and normalized drug
// names). It runs in parallel to the lexicon-based matcher and carries its
// own match policies and overlap resolution.
package canonical

// Entry types.
const (
	EntryOfficial       = "official"
	EntryCode           = "code"
	EntryAbbr           = "abbr"
	EntryDrugNormalized = "drug_normalized"
)

// Match policies.
const (
	PolicySafeExact       = "safe_exact"
	PolicyContextRequired = "context_required"
	PolicyBlocked         = "blocked"
)

// Concept is one row of the concepts table. Reference data, immutable
// after load.
type Concept struct {
	ConceptID   string
	ConceptName string
	EntityType  string
	Domain      string
	Vocabulary  string
	SourceFile  string
	Version     string
	Language    string
	Status      string
}

// Entry is one surface form pointing at a Concept. Several entries may
// share a concept (official name, code, abbreviations).
type Entry struct {
	EntryText   string
	ConceptID   string
	EntryType   string
	MatchPolicy string
	SourceFile  string
	Language    string
}

// Match is one vocabulary hit in a document. Start/End are half-open rune
// offsets into the original text.
type Match struct {
	Text        string
	ConceptID   string
	ConceptName string
	EntityType  string
	Vocabulary  string
	MatchType   string // "exact" or "normalized"
	MatchPolicy string
	EntryType   string
	Confidence  float64
	Start       int
	End         int
}
