package ner

import "regexp"

// Pattern is a high-precision regex rule applied to raw sentence text.
type Pattern struct {
	Re         *regexp.Regexp
	EntityType string
	Score      float64
}

// DefaultPatterns covers emergency-room vital signs, scores and the FAST
// exam. These run before lexicon retrieval and keep their own confidence.
var DefaultPatterns = []Pattern{
	// Glasgow Coma Scale (GCS 14, Glasgow: 15)
	{
		Re:         regexp.MustCompile(`(?i)\b(?:GCS|Glasgow|ECG)\s*(?:=|:)?\s*(?:[3-9]|1[0-5])\b`),
		EntityType: "TEST",
		Score:      0.98,
	},
	// Blood pressure (PA 120 x 70, 120/70)
	{
		Re:         regexp.MustCompile(`(?i)\b(?:PA\s*)?\d{2,3}\s*(?:x|/)\s*\d{2,3}\b`),
		EntityType: "TEST",
		Score:      0.97,
	},
	// Heart rate (FC 86, pulso 112 bpm)
	{
		Re:         regexp.MustCompile(`(?i)\b(?:FC|frequ[eê]ncia\s*card[ií]aca|pulso)\s*[:=]?\s*\d{2,3}\s*(?:bpm)?\b`),
		EntityType: "TEST",
		Score:      0.97,
	},
	// Respiratory rate (FR 16 irpm)
	{
		Re:         regexp.MustCompile(`(?i)\b(?:FR|frequ[eê]ncia\s*respirat[óo]ria)\s*[:=]?\s*\d{1,3}\s*(?:irpm|rpm|ipm)?\b`),
		EntityType: "TEST",
		Score:      0.97,
	},
	// Oxygen saturation (sat 98%, SpO2 97)
	{
		Re:         regexp.MustCompile(`(?i)\b(?:sat|saturação|saturacao|SpO2)\s*[:=]?\s*\d{2,3}\s*%?\b`),
		EntityType: "TEST",
		Score:      0.97,
	},
	// FAST trauma exam
	{
		Re:         regexp.MustCompile(`(?i)\bFAST\b`),
		EntityType: "PROCEDURE",
		Score:      0.95,
	},
}
