// Package segment provides the sentence segmentation boundary. The matching
// core treats segmentation as an external capability: any Segmenter that
// returns ordered, non-overlapping sentences with document offsets works.
package segment

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
)

// Sentence is one segmented sentence with rune offsets into the document.
type Sentence struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Segmenter splits normalized document text into sentences.
type Segmenter interface {
	Split(text string) []Sentence
}

// PunktSegmenter wraps the Punkt sentence tokenizer with language training
// data (Portuguese for clinical notes).
type PunktSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunktSegmenter loads Punkt training data from a JSON file.
func NewPunktSegmenter(trainingPath string) (*PunktSegmenter, error) {
	data, err := os.ReadFile(trainingPath)
	if err != nil {
		return nil, fmt.Errorf("loading sentence training data: %w", err)
	}
	training, err := sentences.LoadTraining(data)
	if err != nil {
		return nil, fmt.Errorf("parsing sentence training data: %w", err)
	}
	return &PunktSegmenter{tokenizer: sentences.NewSentenceTokenizer(training)}, nil
}

// Split tokenizes text into sentences and recovers rune offsets by scanning
// forward through the document.
func (p *PunktSegmenter) Split(text string) []Sentence {
	var out []Sentence
	byteCursor := 0

	for _, s := range p.tokenizer.Tokenize(text) {
		trimmed := strings.TrimSpace(s.Text)
		if trimmed == "" {
			continue
		}
		rel := strings.Index(text[byteCursor:], trimmed)
		if rel < 0 {
			continue
		}
		byteStart := byteCursor + rel
		byteEnd := byteStart + len(trimmed)

		out = append(out, Sentence{
			Text:  trimmed,
			Start: utf8.RuneCountInString(text[:byteStart]),
			End:   utf8.RuneCountInString(text[:byteEnd]),
		})
		byteCursor = byteEnd
	}

	return out
}

// RegexSegmenter is a dependency-free fallback used when no Punkt training
// data is available. It breaks on sentence punctuation and newlines.
type RegexSegmenter struct{}

// NewRegexSegmenter returns the fallback splitter.
func NewRegexSegmenter() *RegexSegmenter {
	return &RegexSegmenter{}
}

// Split scans the text rune by rune, closing a sentence after '.', '!',
// '?' or ';' (when followed by whitespace or end of text) and at newlines.
func (RegexSegmenter) Split(text string) []Sentence {
	runes := []rune(text)
	var out []Sentence

	flush := func(start, end int) {
		// trim to the non-space core, keeping document offsets
		for start < end && isSpace(runes[start]) {
			start++
		}
		for end > start && isSpace(runes[end-1]) {
			end--
		}
		if start < end {
			out = append(out, Sentence{
				Text:  string(runes[start:end]),
				Start: start,
				End:   end,
			})
		}
	}

	segStart := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			flush(segStart, i)
			segStart = i + 1
			continue
		}
		if r == '.' || r == '!' || r == '?' || r == ';' {
			atEnd := i+1 >= len(runes)
			if atEnd || isSpace(runes[i+1]) {
				flush(segStart, i+1)
				segStart = i + 1
			}
		}
	}
	flush(segStart, len(runes))

	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Load returns a Punkt segmenter when training data is configured and
// readable, otherwise the regex fallback. Degrading never fails the run.
func Load(trainingPath string) Segmenter {
	if trainingPath != "" {
		if seg, err := NewPunktSegmenter(trainingPath); err == nil {
			return seg
		}
	}
	return NewRegexSegmenter()
}
