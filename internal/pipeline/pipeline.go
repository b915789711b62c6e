package pipeline

import (
	"github.com/ricardo-wurzmann/healthtech/internal/assertion"
	"github.com/ricardo-wurzmann/healthtech/internal/canonical"
	"github.com/ricardo-wurzmann/healthtech/internal/debug"
	"github.com/ricardo-wurzmann/healthtech/internal/ner"
	"github.com/ricardo-wurzmann/healthtech/internal/normalize"
	"github.com/ricardo-wurzmann/healthtech/internal/postprocess"
	"github.com/ricardo-wurzmann/healthtech/internal/segment"
)

// Pipeline wires the processing stages together. Exactly one extraction
// layer is active: the lexicon matcher for the baseline pipeline, or the
// canonical vocabulary when built with NewCanonical.
type Pipeline struct {
	segmenter segment.Segmenter
	matcher   *ner.Matcher
	vocab     *canonical.Vocabulary
	filter    postprocess.Config
	debug     bool
}

// New builds the baseline pipeline around a lexicon matcher.
func New(seg segment.Segmenter, m *ner.Matcher, filterCfg postprocess.Config) *Pipeline {
	return &Pipeline{segmenter: seg, matcher: m, filter: filterCfg}
}

// NewCanonical builds the pipeline around a canonical vocabulary instead
// of the baseline matcher.
func NewCanonical(seg segment.Segmenter, v *canonical.Vocabulary, filterCfg postprocess.Config) *Pipeline {
	return &Pipeline{segmenter: seg, vocab: v, filter: filterCfg}
}

// SetDebug toggles stage tracing on the pipeline.
func (p *Pipeline) SetDebug(enabled bool) { p.debug = enabled }

func (p *Pipeline) extract(text string, sents []segment.Sentence) []ner.EntitySpan {
	if p.vocab != nil {
		return p.vocab.ExtractEntities(text, sents, nil)
	}
	return p.matcher.Extract(p.debug, text, sents)
}

// annotate classifies the assertion of each span against its sentence and
// converts it to the output shape. Offsets passed to the classifier are
// relative to the sentence start.
func annotate(text string, spans []ner.EntitySpan) []EntityOut {
	textRunes := []rune(text)
	n := len(textRunes)

	out := make([]EntityOut, 0, len(spans))
	for _, e := range spans {
		sentStart := clamp(e.SentenceStart, 0, n)
		sentEnd := clamp(e.SentenceEnd, sentStart, n)
		sentText := string(textRunes[sentStart:sentEnd])

		assert := assertion.Classify(sentText, e.Start-sentStart, e.End-sentStart, e.Type)

		out = append(out, EntityOut{
			Span:      e.Span,
			Start:     e.Start,
			End:       e.End,
			Type:      e.Type,
			Score:     e.Score,
			Assertion: assert,
			Evidence:  e.Evidence,
			Links:     []LinkCandidate{},
			ICD10:     []map[string]interface{}{},
		})
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ProcessDocument runs a single document through every stage and returns
// the serializable result. The emitted text is the normalized form the
// offsets refer to.
func (p *Pipeline) ProcessDocument(doc Document) DocOut {
	defer debug.Timing(p.debug, "process "+doc.DocID)()

	text := normalize.ClinicalText(doc.Text)
	sents := p.segmenter.Split(text)
	spans := p.extract(text, sents)
	res := postprocess.Filter(spans, text, p.filter)

	debug.Output(p.debug, "%s: %d sentences, %d spans, %d after filter",
		doc.DocID, len(sents), len(spans), len(res.Kept))

	return DocOut{
		DocID:    doc.DocID,
		Source:   doc.SourcePath,
		Text:     text,
		Entities: annotate(text, res.Kept),
		CaseID:   doc.CaseID,
		Group:    doc.Group,
	}
}

// FilterLog summarizes the filter decision for the debug endpoint.
type FilterLog struct {
	BeforeCount   int         `json:"before_count"`
	AfterCount    int         `json:"after_count"`
	FilteredCount int         `json:"filtered_count"`
	FilteredOut   []EntityOut `json:"filtered_out"`
}

// DebugResult exposes every intermediate stage of a single run.
type DebugResult struct {
	RawText              string             `json:"raw_text"`
	PreprocessedText     string             `json:"preprocessed_text"`
	Sentences            []segment.Sentence `json:"sentences"`
	EntitiesBeforeFilter []EntityOut        `json:"entities_before_filter"`
	EntitiesAfterFilter  []EntityOut        `json:"entities_after_filter"`
	FilterLog            FilterLog          `json:"filter_log"`
	FinalOutput          DocOut             `json:"final_output"`
}

// DebugRun processes inline text and keeps the output of every stage so
// callers can inspect what each step did.
func (p *Pipeline) DebugRun(text string) DebugResult {
	pre := normalize.ClinicalText(text)
	sents := p.segmenter.Split(pre)
	if sents == nil {
		sents = []segment.Sentence{}
	}

	spans := p.extract(pre, sents)
	before := annotate(pre, spans)
	res := postprocess.Filter(spans, pre, p.filter)
	after := annotate(pre, res.Kept)

	final := DocOut{
		DocID:    "debug_input",
		Source:   "inline",
		Text:     pre,
		Entities: after,
		CaseID:   0,
		Group:    "debug",
	}

	return DebugResult{
		RawText:              text,
		PreprocessedText:     pre,
		Sentences:            sents,
		EntitiesBeforeFilter: before,
		EntitiesAfterFilter:  after,
		FilterLog: FilterLog{
			BeforeCount:   len(before),
			AfterCount:    len(after),
			FilteredCount: len(before) - len(after),
			FilteredOut:   annotate(pre, res.Removed),
		},
		FinalOutput: final,
	}
}
